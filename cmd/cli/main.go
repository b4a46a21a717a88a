package main

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/hamed0406/staffup/internal/domain"
	"github.com/hamed0406/staffup/internal/scheduler"
)

func main() {
	api := os.Getenv("STAFFUP_API")
	if api == "" {
		api = "http://localhost:8080"
	}
	api = strings.TrimRight(api, "/")
	key := os.Getenv("STAFFUP_API_KEY")
	client := &http.Client{Timeout: 10 * time.Second}

	var st scheduler.Status
	if err := getJSON(client, api+"/api/status", key, &st); err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
	fmt.Printf("Cycles: %d  last: %s\n", st.Cycles, st.LastCycle.Local().Format(time.RFC3339))
	fmt.Printf("Pilots: %d  Controllers: %d  Rules: %d\n", st.Pilots, st.Controllers, st.Rules)
	if st.LastError != "" {
		fmt.Println("Last error:", st.LastError)
	}

	if len(st.Cooldowns) == 0 {
		fmt.Println("No active cooldowns.")
	} else {
		fmt.Println("Cooldowns:")
		airports := make([]string, 0, len(st.Cooldowns))
		for ap := range st.Cooldowns {
			airports = append(airports, ap)
		}
		sort.Strings(airports)
		for _, ap := range airports {
			left := time.Until(st.Cooldowns[ap]).Round(time.Second)
			fmt.Printf("  %-6s until %s (%s left)\n", ap, st.Cooldowns[ap].Local().Format("15:04:05"), left)
		}
	}

	var events []domain.AlertEvent
	if err := getJSON(client, api+"/api/alerts?limit=10", key, &events); err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
	fmt.Println("Recent alerts:")
	if len(events) == 0 {
		fmt.Println("  none")
	}
	for _, ev := range events {
		state := "sent"
		if !ev.Delivered {
			state = "failed: " + ev.Error
		}
		fmt.Printf("  %s %-6s %d/%d %s\n", ev.SentAt.Local().Format("15:04:05"), ev.Airport, ev.Count, ev.Threshold, state)
	}
}

func getJSON(c *http.Client, url, key string, out any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API returned status: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
