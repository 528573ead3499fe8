package solution

import "strings"

// Solution is the structured analysis of one math problem.
type Solution struct {
	Topic    string   `json:"topic" yaml:"topic"`
	Analysis Analysis `json:"analysis" yaml:"analysis"`
	Equation string   `json:"equation,omitempty" yaml:"equation,omitempty"`
	Steps    []Step   `json:"steps" yaml:"steps"`
}

// Analysis breaks the problem statement down before any steps are shown.
type Analysis struct {
	Given    string `json:"given" yaml:"given"`
	Find     string `json:"find" yaml:"find"`
	Keywords string `json:"keywords" yaml:"keywords"`
	Logic    string `json:"logic" yaml:"logic"`
}

// Step is one disclosed unit of the worked solution. Explanation may
// contain inline <span> color markup.
type Step struct {
	Title       string `json:"title" yaml:"title"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// HasEquation reports whether the equation is worth displaying.
// Models often answer "-" when there is none.
func (s *Solution) HasEquation() bool {
	eq := strings.TrimSpace(s.Equation)
	return eq != "" && eq != "-"
}

// TotalSteps returns len(Steps), or 0 for a nil solution.
func (s *Solution) TotalSteps() int {
	if s == nil {
		return 0
	}
	return len(s.Steps)
}

// Field returns v, or "-" when v is blank.
func Field(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
