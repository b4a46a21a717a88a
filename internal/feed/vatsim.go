package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/hamed0406/staffup/internal/domain"
)

// DefaultStatusURL lists the current data feed endpoints.
const DefaultStatusURL = "https://status.vatsim.net/status.json"

type VATSIM struct {
	StatusURL string
	Client    *http.Client

	dataURL string
}

func NewVATSIM(timeout time.Duration) *VATSIM {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VATSIM{
		StatusURL: DefaultStatusURL,
		Client:    &http.Client{Timeout: timeout},
	}
}

type statusDoc struct {
	Data struct {
		V3 []string `json:"v3"`
	} `json:"data"`
}

type v3Doc struct {
	General struct {
		UpdateTimestamp time.Time `json:"update_timestamp"`
	} `json:"general"`
	Pilots      []domain.Pilot      `json:"pilots"`
	Controllers []domain.Controller `json:"controllers"`
}

// Connect resolves the v3 data URL from the status document.
func (v *VATSIM) Connect(ctx context.Context) error {
	var st statusDoc
	if err := v.getJSON(ctx, v.StatusURL, &st); err != nil {
		return &domain.TransportError{Op: "connect", Err: err}
	}
	if len(st.Data.V3) == 0 || st.Data.V3[0] == "" {
		return &domain.TransportError{Op: "connect", Err: errors.New("status document lists no v3 endpoint")}
	}
	v.dataURL = st.Data.V3[0]
	return nil
}

// Fetch downloads one snapshot, connecting first if needed. A failed fetch
// forgets the data URL so the next call re-resolves it.
func (v *VATSIM) Fetch(ctx context.Context) (domain.Snapshot, error) {
	if v.dataURL == "" {
		if err := v.Connect(ctx); err != nil {
			return domain.Snapshot{}, err
		}
	}
	var doc v3Doc
	if err := v.getJSON(ctx, v.dataURL, &doc); err != nil {
		v.dataURL = ""
		return domain.Snapshot{}, &domain.TransportError{Op: "fetch", Err: err}
	}
	return domain.Snapshot{
		Pilots:      doc.Pilots,
		Controllers: doc.Controllers,
		UpdatedAt:   doc.General.UpdateTimestamp,
	}, nil
}

func (v *VATSIM) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := v.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
