// Package classify wraps a locally hosted text-classification model behind a
// small Classifier interface. The default implementation runs a CryptoBERT
// style ONNX model through hugot; tests substitute the interface with fakes.
package classify

import (
	"context"
	"fmt"
	"strings"
)

// NeutralLabel is returned for queries the classifier refuses to score, such
// as empty input.
const NeutralLabel = "Neutral"

// Classification is the ephemeral result of scoring one query.
// Score is always within [0, 1].
type Classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier scores a raw query string. Implementations must be deterministic
// for identical input and model state, must not fail on empty input, and must
// be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, query string) (Classification, error)
}

// InferenceError indicates the underlying model failed to produce a result.
// It is fatal for the query: callers must not substitute a generic label,
// since that risks misrouting the answer.
type InferenceError struct {
	Model string
	Cause error
}

// Error implements the error interface.
func (e *InferenceError) Error() string {
	return fmt.Sprintf("model inference failed for %q: %v", e.Model, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *InferenceError) Unwrap() error { return e.Cause }

// Neutral returns the lowest-confidence classification used for input the
// model is never invoked on.
func Neutral() Classification {
	return Classification{Label: NeutralLabel, Score: 0}
}

// isBlank reports whether the query contains no scoreable content.
func isBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}
