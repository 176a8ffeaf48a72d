// Command genmock writes the mock river fixture served by the mock provider
// (MOCK_FIXTURE) and by riverapi test backends. Levels can be overridden to
// produce scenario fixtures; every override goes through the classifier so
// the fixture stays consistent.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/rivers.json \
//	  -at 2024-03-03T12:00:00Z \
//	  -levels 1=5.4,2=4.1
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/rio-alert-service/internal/adapter/mock"
	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

var defaultAt = time.Date(2024, time.March, 3, 12, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the river fixture JSON")
	at := flag.String("at", defaultAt.Format(time.RFC3339), "generation time (RFC3339), used as every record's lastUpdate")
	levels := flag.String("levels", "", "comma-separated id=level overrides, e.g. 1=5.4,2=4.1")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	now, err := time.Parse(time.RFC3339, *at)
	if err != nil {
		return fmt.Errorf("parse -at: %w", err)
	}
	overrides, err := parseLevels(*levels)
	if err != nil {
		return err
	}

	// Set a fixed clock for reproducible lastUpdate timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)

	fixture, err := build(domain.Now(), overrides)
	if err != nil {
		return err
	}

	if err := writeJSON(*out, fixture); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(fixture)
	return nil
}

// parseLevels reads "id=level" pairs.
func parseLevels(s string) (map[string]float64, error) {
	out := map[string]float64{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		id, raw, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid -levels entry %q: want id=level", pair)
		}
		level, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid level for river %s: %w", id, err)
		}
		if err := domain.ValidateLevel(level); err != nil {
			return nil, fmt.Errorf("river %s: %w", id, err)
		}
		out[id] = level
	}
	return out, nil
}

// build seeds the fixture at now and applies the level overrides.
func build(now time.Time, overrides map[string]float64) (mock.Fixture, error) {
	fixture := mock.Seed(now)
	applied := 0
	for i, r := range fixture.Rivers {
		if level, ok := overrides[r.ID]; ok {
			fixture.Rivers[i] = r.ApplyLevel(level, now)
			applied++
		}
	}
	if applied != len(overrides) {
		return mock.Fixture{}, fmt.Errorf("%d level overrides name unknown rivers", len(overrides)-applied)
	}
	return fixture, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func printStats(f mock.Fixture) {
	counts := map[domain.AlertLevel]int{}
	shelters := 0
	for _, r := range f.Rivers {
		counts[r.AlertLevel]++
		shelters += len(r.Shelters)
	}

	fmt.Println()
	fmt.Printf("Rivers: %d (shelters: %d, forecasts: %d)\n", len(f.Rivers), shelters, len(f.Forecasts))
	for _, l := range domain.AlertLevels {
		fmt.Printf("  %-8s %d\n", l, counts[l])
	}
	fmt.Println()
	for _, r := range f.Rivers {
		fmt.Printf("  %-3s %-20s %5.2fm  %s\n", r.ID, r.Name, r.CurrentLevel, r.AlertLevel)
	}
}
