package analysis

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrInsufficientData matches any InsufficientDataError via errors.Is.
var ErrInsufficientData = errors.New("insufficient data")

// InsufficientDataError is returned when the series is shorter than the baseline.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: have %d data points, need at least %d", e.Have, e.Need)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// Attrs exposes the error fields for structured logging.
func (e *InsufficientDataError) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("have", e.Have),
		slog.Int("need", e.Need),
	}
}
