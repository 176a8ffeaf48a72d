// Package gate decides which top-level screen a launch of the app shows.
//
// Four flags, all false on a cold start except OnboardingDone (which comes
// from the first-access store), walk the launch through
//
//	Splash → Onboarding → Auth → LocationSetup → Main
//
// The stage is a pure function of the flags: the first flag still unset
// names the stage. Each stage has exactly one completion event and the gate
// rejects every other event, so no stage can be skipped. Logout is the only
// event that clears flags; it drops the launch back to Auth and forces
// location setup again.
package gate

import (
	"errors"
	"fmt"
	"sync"
)

// Stage is the top-level screen a launch is on.
type Stage string

const (
	StageSplash        Stage = "splash"
	StageOnboarding    Stage = "onboarding"
	StageAuth          Stage = "auth"
	StageLocationSetup Stage = "location_setup"
	StageMain          Stage = "main"
)

// Event is a stage completion reported by the client.
type Event string

const (
	EventSplashFinished      Event = "splash_finished"
	EventOnboardingCompleted Event = "onboarding_completed"
	EventAuthenticated       Event = "authenticated"
	EventLocationCompleted   Event = "location_completed"
	EventLoggedOut           Event = "logged_out"
)

// ErrInvalidTransition is returned when an event does not belong to the
// current stage.
var ErrInvalidTransition = errors.New("invalid transition")

// stageEvent maps each stage to the only event it accepts.
var stageEvent = map[Stage]Event{
	StageSplash:        EventSplashFinished,
	StageOnboarding:    EventOnboardingCompleted,
	StageAuth:          EventAuthenticated,
	StageLocationSetup: EventLocationCompleted,
	StageMain:          EventLoggedOut,
}

// State holds the four session flags of one launch.
type State struct {
	SplashDone     bool `json:"splashDone"`
	OnboardingDone bool `json:"onboardingDone"`
	Authenticated  bool `json:"authenticated"`
	LocationSet    bool `json:"locationSet"`
}

// Resolve returns the stage for a set of flags. Main requires all four.
func Resolve(s State) Stage {
	switch {
	case !s.SplashDone:
		return StageSplash
	case !s.OnboardingDone:
		return StageOnboarding
	case !s.Authenticated:
		return StageAuth
	case !s.LocationSet:
		return StageLocationSetup
	default:
		return StageMain
	}
}

// Next applies an event to a state without side effects.
func Next(s State, ev Event) (State, error) {
	stage := Resolve(s)
	if stageEvent[stage] != ev {
		return s, fmt.Errorf("%s on stage %s: %w", ev, stage, ErrInvalidTransition)
	}

	switch ev {
	case EventSplashFinished:
		s.SplashDone = true
	case EventOnboardingCompleted:
		s.OnboardingDone = true
	case EventAuthenticated:
		s.Authenticated = true
	case EventLocationCompleted:
		s.LocationSet = true
	case EventLoggedOut:
		s.Authenticated = false
		s.LocationSet = false
	}
	return s, nil
}

// Gate is the mutable, concurrency-safe holder of one launch's state.
type Gate struct {
	mu    sync.Mutex
	state State
}

// New returns a gate at Splash. onboardingDone comes from the first-access
// store; authentication and location always start unset.
func New(onboardingDone bool) *Gate {
	return &Gate{state: State{OnboardingDone: onboardingDone}}
}

// State returns a snapshot of the flags.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Stage returns the current stage.
func (g *Gate) Stage() Stage {
	return Resolve(g.State())
}

// Apply moves the gate forward. On error the state is unchanged.
func (g *Gate) Apply(ev Event) (Stage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next, err := Next(g.state, ev)
	if err != nil {
		return Resolve(g.state), err
	}
	g.state = next
	return Resolve(next), nil
}

// Require returns ErrInvalidTransition unless the gate is on stage want.
// Flows call it before doing work that only makes sense on one stage.
func (g *Gate) Require(want Stage) error {
	if got := g.Stage(); got != want {
		return fmt.Errorf("launch is on stage %s, not %s: %w", got, want, ErrInvalidTransition)
	}
	return nil
}
