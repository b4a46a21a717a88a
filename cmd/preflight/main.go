// cmd/preflight/main.go
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/hamed0406/staffup/internal/alert"
	"github.com/hamed0406/staffup/internal/config"
	"github.com/hamed0406/staffup/internal/geo"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	_ = godotenv.Load()

	path := config.Path()
	cfg, err := config.Load(path)
	if err != nil {
		fail(err.Error())
	}
	ok("config " + path + " is valid")
	ok("channel " + strconv.FormatUint(cfg.Channel, 10))

	airports, err := geo.NewTable(cfg.Airports)
	if err != nil {
		fail(err.Error())
	}
	ok(fmt.Sprintf("%d airports known", airports.Len()))

	rules, err := alert.CompileRules(cfg.Alerts)
	if err != nil {
		fail(err.Error())
	}
	if err := alert.ValidateRules(airports, rules); err != nil {
		for _, e := range multierr.Errors(errors.Unwrap(err)) {
			var uae *alert.UnknownAirportError
			if errors.As(e, &uae) {
				fmt.Fprintln(os.Stderr, "✖", uae.Airport+": no coordinates; add it under \"airports\"")
				continue
			}
			fmt.Fprintln(os.Stderr, "✖", e)
		}
		os.Exit(1)
	}
	for _, r := range rules {
		c, _ := airports.Lookup(r.Airport)
		ok(fmt.Sprintf("%s at %.4f,%.4f threshold %d", r.Airport, c.Lat, c.Lon, r.TrafficThreshold))
	}

	if cfg.StatusAddr == "" {
		warn("statusAddr empty; status API disabled.")
	} else {
		ok("statusAddr=" + cfg.StatusAddr)
		if len(cfg.StatusKeys) == 0 {
			warn("statusKeys empty; status API is open to anyone who can reach it.")
		}
	}
	if len(cfg.Kafka.Brokers) > 0 {
		ok("kafka topic " + cfg.Kafka.Topic)
	}

	ok("preflight passed")
}
