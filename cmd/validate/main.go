// Command validate performs data integrity checks on a mock river fixture:
// record structure, alert-level consistency with the classifier, forecast
// coverage, and that every record renders the variant its level calls for.
// It also reports the rivers the older client-side thresholds would show at
// a different level, as warnings.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/mock/rivers.json
//
// Without -fixture the built-in seed data is checked.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/rio-alert-service/internal/adapter/mock"
	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/couchcryptid/rio-alert-service/internal/view"
	"github.com/jonboulle/clockwork"
)

var seedAt = time.Date(2024, time.March, 3, 12, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixturePath := flag.String("fixture", "", "path to a river fixture JSON written by genmock (default: built-in seed)")
	flag.Parse()

	if code := run(*fixturePath, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(fixturePath string, out io.Writer) int {
	// Set a fixed clock matching genmock for reproducible seed timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(seedAt))
	defer domain.SetClock(nil)

	fmt.Fprintln(out, "=== River Data Integrity Validation ===")
	fmt.Fprintln(out)

	fixture := mock.Seed(domain.Now())
	source := "built-in seed"
	if fixturePath != "" {
		var err error
		fixture, err = mock.LoadFixture(fixturePath)
		if err != nil {
			fmt.Fprintf(out, "FATAL: %v\n", err)
			return 1
		}
		source = fixturePath
	}

	phases := []*phase{
		validateStructure(fixture),
		validateConsistency(fixture),
		validateForecasts(fixture),
		validateVariants(fixture),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Source: %s\n", source)
	fmt.Fprintf(out, "Records: %d rivers, %d shelters, %d forecasts\n",
		len(fixture.Rivers), countShelters(fixture), len(fixture.Forecasts))

	printPolicyDrift(out, fixture)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func countShelters(f mock.Fixture) int {
	n := 0
	for _, r := range f.Rivers {
		n += len(r.Shelters)
	}
	return n
}

// ── Phase 1: Structure ──

func validateStructure(f mock.Fixture) *phase {
	p := &phase{name: "Phase 1: Record Structure"}

	if len(f.Rivers) == 0 {
		p.errorf("fixture has no rivers")
	}

	seen := map[string]bool{}
	for i, r := range f.Rivers {
		label := fmt.Sprintf("river[%d] %q", i, r.ID)
		if strings.TrimSpace(r.ID) == "" {
			p.errorf("river[%d]: empty id", i)
		} else if seen[r.ID] {
			p.errorf("%s: duplicate id", label)
		}
		seen[r.ID] = true

		if strings.TrimSpace(r.Name) == "" {
			p.errorf("%s: empty name", label)
		}
		if err := domain.ValidateLevel(r.CurrentLevel); err != nil {
			p.errorf("%s: %v", label, err)
		}
		if r.LastUpdate.IsZero() {
			p.errorf("%s: missing lastUpdate", label)
		}
		if r.Location.IsZero() {
			p.errorf("%s: missing location", label)
		}
		checkShelters(p, label, r.Shelters)
		checkHistory(p, label, r.HistoricalData)
	}
	return p
}

func checkShelters(p *phase, label string, shelters []domain.Shelter) {
	for j, s := range shelters {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Address) == "" {
			p.errorf("%s shelter[%d]: name and address are required", label, j)
		}
		if s.Capacity <= 0 {
			p.errorf("%s shelter[%d] %q: capacity %d must be positive", label, j, s.Name, s.Capacity)
		}
		if s.Distance < 0 || math.IsNaN(s.Distance) {
			p.errorf("%s shelter[%d] %q: invalid distance %v", label, j, s.Name, s.Distance)
		}
		if s.Latitude < -90 || s.Latitude > 90 || s.Longitude < -180 || s.Longitude > 180 {
			p.errorf("%s shelter[%d] %q: coordinates out of range", label, j, s.Name)
		}
	}
}

func checkHistory(p *phase, label string, history []domain.LevelSample) {
	var prev time.Time
	for j, h := range history {
		d, err := time.Parse(time.DateOnly, h.Date)
		if err != nil {
			p.errorf("%s history[%d]: date %q is not YYYY-MM-DD", label, j, h.Date)
			continue
		}
		if !prev.IsZero() && !d.After(prev) {
			p.errorf("%s history[%d]: date %s is not after %s", label, j, h.Date, prev.Format(time.DateOnly))
		}
		prev = d
		if err := domain.ValidateLevel(h.Level); err != nil {
			p.errorf("%s history[%d]: %v", label, j, err)
		}
	}
}

// ── Phase 2: Alert Level Consistency ──

func validateConsistency(f mock.Fixture) *phase {
	p := &phase{name: "Phase 2: Alert Level Consistency"}

	for _, r := range f.Rivers {
		if !r.AlertLevel.Valid() {
			p.errorf("river %s: unknown alert level %q", r.ID, r.AlertLevel)
			continue
		}
		if want := domain.Classify(r.CurrentLevel); r.AlertLevel != want {
			p.errorf("river %s (%s): level %.2fm is %s, record says %s",
				r.ID, r.Name, r.CurrentLevel, want, r.AlertLevel)
		}
		alert := domain.AlertFor(r)
		if alert.Message == "" {
			p.errorf("river %s: no alert message for level %s", r.ID, r.AlertLevel)
		}
	}
	return p
}

// ── Phase 3: Forecasts ──

func validateForecasts(f mock.Fixture) *phase {
	p := &phase{name: "Phase 3: Forecast Coverage"}

	for city, text := range f.Forecasts {
		if strings.TrimSpace(city) == "" {
			p.errorf("forecast with empty city")
		}
		if strings.TrimSpace(text) == "" {
			p.errorf("forecast for %q is empty", city)
		}
	}
	for _, r := range f.Rivers {
		if r.WeatherForecast != nil && strings.TrimSpace(*r.WeatherForecast) == "" {
			p.errorf("river %s: weatherForecast is set but empty", r.ID)
		}
	}
	return p
}

// ── Phase 4: Variants ──

func validateVariants(f mock.Fixture) *phase {
	p := &phase{name: "Phase 4: Variant Rendering"}
	renderer := view.NewRenderer(view.DefaultEmergencyPhone)

	for _, r := range f.Rivers {
		v := renderer.SelectVariant(r)
		if v.Level != r.AlertLevel {
			p.errorf("river %s: %s record rendered as %s", r.ID, r.AlertLevel, v.Level)
		}
		if r.AlertLevel != domain.AlertRed && v.Forecast == "" {
			p.errorf("river %s: variant has no forecast text", r.ID)
		}
		switch r.AlertLevel {
		case domain.AlertRed:
			if v.Emergency == nil {
				p.errorf("river %s: red variant without emergency block", r.ID)
				continue
			}
			if len(v.Emergency.Shelters) == 0 {
				p.errorf("river %s: red river has no shelters to send people to", r.ID)
			}
		case domain.AlertYellow:
			if len(v.Checklist) == 0 {
				p.errorf("river %s: yellow variant without checklist", r.ID)
			}
		}
	}
	return p
}

// printPolicyDrift lists rivers the legacy thresholds would show differently.
// These are warnings and never fail the run.
func printPolicyDrift(out io.Writer, f mock.Fixture) {
	var lines []string
	for _, r := range f.Rivers {
		canonical := domain.Classify(r.CurrentLevel)
		legacy := domain.ClassifyLegacy(r.CurrentLevel)
		if canonical != legacy {
			lines = append(lines, fmt.Sprintf("  WARN river %s (%s) at %.2fm: %s, legacy thresholds say %s",
				r.ID, r.Name, r.CurrentLevel, canonical, legacy))
		}
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(out, "\nThreshold drift: %d of %d rivers\n", len(lines), len(f.Rivers))
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
}
