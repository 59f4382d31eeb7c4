// Command orioncheck fetches one Enhanced XML document from a MicroServer and
// prints the decoded measurement groups as JSON. It is a field diagnostic for
// wiring and unit problems, independent of the collector loop.
//
// Usage:
//
//	go run ./cmd/orioncheck -host 192.168.0.50
//	go run ./cmd/orioncheck -url http://weather.example.net/tmp/latestsampledata_u.xml
//	go run ./cmd/orioncheck -test-parse sample.xml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"orion-collector/internal/adapter/station"
	"orion-collector/internal/domain"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "orioncheck: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	showVersion := flag.Bool("version", false, "print version and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	stationURL := flag.String("url", "", "full station URL (overrides -host and -port)")
	host := flag.String("host", "192.168.0.50", "station host")
	port := flag.Int("port", 80, "station port")
	timeout := flag.Duration("timeout", 4*time.Second, "request timeout")
	testParse := flag.String("test-parse", "", "parse a local XML file instead of polling the station")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return nil
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var (
		data []byte
		err  error
	)
	if *testParse != "" {
		data, err = os.ReadFile(*testParse)
		if err != nil {
			return fmt.Errorf("read %s: %w", *testParse, err)
		}
	} else {
		url := *stationURL
		if url == "" {
			url = fmt.Sprintf("http://%s:%d/tmp/latestsampledata_u.xml", *host, *port)
		}

		client := station.NewClient(url, *timeout, logger)
		ctx, cancel := context.WithTimeout(context.Background(), *timeout+time.Second)
		defer cancel()

		data, err = client.Fetch(ctx)
		if err != nil {
			return err
		}
	}

	doc, err := domain.ParseDocument(data)
	if err != nil {
		return err
	}
	if doc.Repaired {
		logger.Warn("repaired truncated station data", "tail", doc.Tail)
	}

	return printGroups(doc)
}

// groupReport is the JSON shape printed per measurement group.
type groupReport struct {
	Group      string             `json:"group"`
	BaseUnits  string             `json:"base_units,omitempty"`
	UnitSystem string             `json:"unit_system"`
	Values     map[string]float64 `json:"values,omitempty"`
	Times      map[string]string  `json:"times,omitempty"`
}

func printGroups(doc *domain.Document) error {
	order := []domain.GroupClass{
		domain.ClassWind,
		domain.ClassTemp,
		domain.ClassRain,
		domain.ClassPressure,
		domain.ClassGeneric,
	}

	reports := make([]groupReport, 0, len(doc.Groups))
	for _, class := range order {
		g, ok := doc.Groups[class]
		if !ok {
			continue
		}

		r := groupReport{
			Group:     string(class),
			BaseUnits: g.BaseUnits,
			Values:    g.Values,
			Times:     g.Times,
		}
		if res := domain.ResolveUnits(class, g.BaseUnits); res.Known {
			r.UnitSystem = res.System.String()
		} else {
			r.UnitSystem = "unknown"
		}
		reports = append(reports, r)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}
