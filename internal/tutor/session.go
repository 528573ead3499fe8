// Package tutor holds the per-user tutoring session: the input/result state
// machine, step-by-step reveal, and the boundary to the model client.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/llm"
	"github.com/abhisek/mathstep/internal/media"
	"github.com/abhisek/mathstep/internal/solution"
)

var (
	// ErrEmptyInput is returned by Submit when there is neither text nor
	// an image. The model is not called and the session is unchanged.
	ErrEmptyInput = errors.New("empty input")

	// ErrModelInvocation wraps any failure of the model call itself.
	ErrModelInvocation = errors.New("model invocation failed")

	// ErrBusy is returned when a submit is already in flight.
	ErrBusy = errors.New("a problem is already being analyzed")

	// ErrShowingResult is returned when a submit arrives while a solution
	// is shown. Reset first.
	ErrShowingResult = errors.New("a solution is shown; start a new problem first")

	// ErrStale is returned by CompleteSubmit for a ticket issued before
	// the latest reset. The outcome is discarded.
	ErrStale = errors.New("response arrived after the session was reset")
)

// Mode is derived from whether a solution is present.
type Mode int

const (
	ModeInput Mode = iota
	ModeResult
)

func (m Mode) String() string {
	if m == ModeResult {
		return "result"
	}
	return "input"
}

// Phase refines Mode by reveal progress.
type Phase int

const (
	PhaseInput Phase = iota
	PhaseRevealing
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseRevealing:
		return "revealing"
	case PhaseComplete:
		return "complete"
	default:
		return "input"
	}
}

// Session is one user's tutoring context. It is safe for concurrent use;
// the model call happens outside the lock between BeginSubmit and
// CompleteSubmit. At most one ticket is outstanding: loading stays set
// until that ticket is completed, even across a reset.
type Session struct {
	mu sync.Mutex

	id               string
	language         i18n.Language
	apiKeyConfigured bool

	problemText  string
	image        *media.Image
	solution     *solution.Solution
	visibleSteps int

	loading    bool
	generation uint64
}

// New returns a session in Input mode.
func New(lang i18n.Language, apiKeyConfigured bool) *Session {
	if !lang.Valid() {
		lang = i18n.Default
	}
	return &Session{
		id:               uuid.NewString(),
		language:         lang,
		apiKeyConfigured: apiKeyConfigured,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Language() i18n.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

func (s *Session) APIKeyConfigured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKeyConfigured
}

// SetAPIKeyConfigured records whether a usable key is available. Clearing
// it routes front ends back to key entry.
func (s *Session) SetAPIKeyConfigured(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKeyConfigured = ok
}

func (s *Session) ProblemText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.problemText
}

func (s *Session) Image() *media.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// Solution returns the active solution, or nil in Input mode.
func (s *Session) Solution() *solution.Solution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.solution
}

func (s *Session) VisibleSteps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleSteps
}

// Loading reports whether a model call is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode()
}

func (s *Session) mode() Mode {
	if s.solution == nil {
		return ModeInput
	}
	return ModeResult
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.solution == nil:
		return PhaseInput
	case s.visibleSteps < s.solution.TotalSteps():
		return PhaseRevealing
	default:
		return PhaseComplete
	}
}

// Ticket identifies one dispatched submit. It carries the prompt to send.
type Ticket struct {
	Prompt     Prompt
	SessionID  string
	text       string
	generation uint64
}

// Dispatch sends the ticket's prompt through client, tagging the context
// with the session ID for request logging.
func (t Ticket) Dispatch(ctx context.Context, client ModelClient) (string, error) {
	return client.Generate(llm.WithSession(ctx, t.SessionID), t.Prompt)
}

// BeginSubmit validates input, marks the session loading and returns the
// ticket to dispatch. Submits are only taken in Input mode. text and img
// are kept as typed so a failed attempt can be retried without re-entry.
func (s *Session) BeginSubmit(text string, img *media.Image) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(text) == "" && img == nil {
		return Ticket{}, ErrEmptyInput
	}
	if s.loading {
		return Ticket{}, ErrBusy
	}
	if s.solution != nil {
		return Ticket{}, ErrShowingResult
	}

	s.loading = true
	s.problemText = text
	s.image = img

	return Ticket{
		Prompt:     BuildPrompt(s.language, text, img),
		SessionID:  s.id,
		text:       text,
		generation: s.generation,
	}, nil
}

// CompleteSubmit applies the outcome of a dispatched ticket. On success the
// session enters Result with no steps visible. On failure the session keeps
// its previous solution (none, from Input) and the typed input.
func (s *Session) CompleteSubmit(t Ticket, raw string, callErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if t.generation != s.generation {
		return ErrStale
	}

	if callErr != nil {
		return fmt.Errorf("%w: %w", ErrModelInvocation, callErr)
	}
	sol, err := solution.Parse(raw)
	if err != nil {
		return err
	}

	s.solution = sol
	s.visibleSteps = 0
	s.image = nil
	if strings.TrimSpace(t.text) != "" {
		s.problemText = t.text
	} else {
		s.problemText = i18n.Lookup(s.language, "image_fallback")
	}
	return nil
}

// Submit runs a whole submit synchronously.
func (s *Session) Submit(ctx context.Context, client ModelClient, text string, img *media.Image) error {
	t, err := s.BeginSubmit(text, img)
	if err != nil {
		return err
	}
	raw, callErr := t.Dispatch(ctx, client)
	return s.CompleteSubmit(t, raw, callErr)
}

// RevealNext discloses one more step. It returns false, changing nothing,
// in Input mode or once every step is visible.
func (s *Session) RevealNext() bool {
	_, ok := s.RevealNextStep()
	return ok
}

// Revealed is the step disclosed by one RevealNextStep call.
type Revealed struct {
	Step solution.Step
	// Number is one-based; Number == Total on the last step.
	Number int
	Total  int
}

// Final reports whether this was the last step.
func (r Revealed) Final() bool { return r.Number == r.Total }

// RevealNextStep is RevealNext returning what it disclosed, read under the
// same lock so concurrent callers never see the same step twice.
func (s *Session) RevealNextStep() (Revealed, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.solution == nil || s.visibleSteps >= s.solution.TotalSteps() {
		return Revealed{}, false
	}
	s.visibleSteps++
	return Revealed{
		Step:   s.solution.Steps[s.visibleSteps-1],
		Number: s.visibleSteps,
		Total:  s.solution.TotalSteps(),
	}, true
}

// Reset returns to an empty Input mode. An in-flight ticket still holds
// the session busy, but its outcome is discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// NewProblem is the "new problem" action on the result view.
func (s *Session) NewProblem() { s.Reset() }

// StartNew is the "start again" action once all steps are shown.
func (s *Session) StartNew() { s.Reset() }

func (s *Session) reset() {
	s.solution = nil
	s.visibleSteps = 0
	s.problemText = ""
	s.image = nil
	s.generation++
}

// ToggleLanguage switches to the other language. A shown solution is in
// the old language, so it is discarded with a full reset. In Input mode
// only the language changes; a pending submit still lands.
func (s *Session) ToggleLanguage() i18n.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggleLanguage()
	return s.language
}

// SetLanguage switches to lang if it differs from the current language.
// It reports whether a switch happened.
func (s *Session) SetLanguage(lang i18n.Language) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !lang.Valid() || lang == s.language {
		return false
	}
	s.toggleLanguage()
	return true
}

func (s *Session) toggleLanguage() {
	s.language = s.language.Other()
	if s.solution != nil {
		s.reset()
	}
}
