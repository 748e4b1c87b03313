package funnel

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Funnel errors.
var (
	ErrFunnelComplete      = errors.New("funnel is already complete")
	ErrNotAtFinalStep      = errors.New("action is only available on the final step")
	ErrMalformedToken      = errors.New("malformed continuation token")
	ErrInvalidConsentType  = errors.New("consent type must not be empty")
	ErrUnknownStep         = errors.New("unknown step")
	ErrMalformedConsentLog = errors.New("stored consent log is not a JSON array")
)

// ValidationError reports the fields that blocked advancement from a step,
// keyed by field name with a user-facing message.
type ValidationError struct {
	Step   int
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("step %d: %s", e.Step, strings.Join(parts, "; "))
}
