package tutor

import (
	"github.com/abhisek/mathstep/internal/solution"
)

// Progress returns the visible and total step counts. Both are zero in
// Input mode.
func (s *Session) Progress() (visible, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.solution == nil {
		return 0, 0
	}
	return s.visibleSteps, s.solution.TotalSteps()
}

// VisibleStepList returns a copy of the disclosed steps in order.
func (s *Session) VisibleStepList() []solution.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.solution == nil || s.visibleSteps == 0 {
		return nil
	}
	out := make([]solution.Step, s.visibleSteps)
	copy(out, s.solution.Steps[:s.visibleSteps])
	return out
}

// IsFinal reports whether step i (zero-based) is the last step and every
// step has been revealed, so it can be styled as the answer.
func (s *Session) IsFinal(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.solution == nil {
		return false
	}
	total := s.solution.TotalSteps()
	return total > 0 && i == total-1 && s.visibleSteps == total
}

// ProblemPreview returns the problem text cut to limit runes, with "..."
// appended when it was cut.
func (s *Session) ProblemPreview(limit int) string {
	return Preview(s.ProblemText(), limit)
}

// Preview truncates text to limit runes plus "...".
func Preview(text string, limit int) string {
	r := []rune(text)
	if limit <= 0 || len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "..."
}
