// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of solving one scenario's savings target.
type Summary struct {
	Scenario   string   `json:"scenario"`
	Field      string   `json:"field"`
	Original   float64  `json:"original"`
	Value      float64  `json:"value"`
	Target     float64  `json:"target"`
	Achieved   float64  `json:"achieved"`
	Iterations int      `json:"iterations"`
	Converged  bool     `json:"converged"`
	Notes      []string `json:"notes,omitempty"`
}

// Shortfall is how far the achieved value stays below the target.
func (s Summary) Shortfall() float64 {
	if s.Achieved >= s.Target {
		return 0
	}
	return s.Target - s.Achieved
}
