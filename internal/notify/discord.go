package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/hamed0406/staffup/internal/domain"
)

const DefaultAPIBase = "https://discord.com/api/v10"

// Discord posts channel messages through the bot REST API.
type Discord struct {
	Token   string
	BaseURL string
	Client  *http.Client
}

func NewDiscord(token string) *Discord {
	if token == "" {
		return nil
	}
	return &Discord{
		Token:   token,
		BaseURL: DefaultAPIBase,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type discordMessage struct {
	Content         string          `json:"content"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

type discordError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (d *Discord) Send(ctx context.Context, channelID uint64, text string) error {
	if d == nil || d.Token == "" {
		return errors.New("discord disabled")
	}
	body, err := json.Marshal(discordMessage{Content: text, AllowedMentions: allowedMentions{Parse: []string{}}})
	if err != nil {
		return err
	}
	url := d.BaseURL + "/channels/" + strconv.FormatUint(channelID, 10) + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &domain.TransportError{Op: "send", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+d.Token)
	req.Header.Set("User-Agent", "DiscordBot (https://github.com/hamed0406/staffup, 1.0)")

	resp, err := d.Client.Do(req)
	if err != nil {
		return &domain.TransportError{Op: "send", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var de discordError
		if json.Unmarshal(raw, &de) == nil && de.Message != "" {
			return &domain.TransportError{Op: "send", Err: fmt.Errorf("discord %s: %s (code %d)", resp.Status, de.Message, de.Code)}
		}
		return &domain.TransportError{Op: "send", Err: fmt.Errorf("discord %s", resp.Status)}
	}
	return nil
}
