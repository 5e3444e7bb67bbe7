package domain

// Prediction is the provider's answer for one input. Bounds are
// optional; when both are present the provider contract guarantees
// lowerBound <= upperBound.
type Prediction struct {
	Demand     float64  `json:"demand"`
	LowerBound *float64 `json:"lowerBound,omitempty"`
	UpperBound *float64 `json:"upperBound,omitempty"`
}
