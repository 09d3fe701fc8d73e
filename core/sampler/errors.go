package sampler

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInfeasible is returned when no feasible allocation was found within
	// the attempt cap, the wall-clock cap or the LP precheck.
	ErrInfeasible = errors.New("no feasible allocation found")
	// ErrUnsupportedTopology is returned when the registry does not hold
	// exactly two sources and two consumers.
	ErrUnsupportedTopology = errors.New("sampler requires exactly two sources and two consumers")
	// ErrInvalidCount is returned by GenerateMany for negative counts.
	ErrInvalidCount = errors.New("invalid sample count")
)

// Rejection reasons reported to logs and metrics.
const (
	ReasonEmptyInterval    = "empty_interval"
	ReasonNegativeEntry    = "negative_entry"
	ReasonDemandNotMet     = "demand_not_met"
	ReasonCapacityExceeded = "capacity_exceeded"
	ReasonIntegrity        = "integrity"
)

// InfeasibleError reports why the sampler gave up.
type InfeasibleError struct {
	Attempts int
	Reasons  map[string]int
	// Cause is the context error when the wall-clock cap or the caller
	// cancelled, or the precheck error. It is nil when the attempt cap was hit.
	Cause error
}

func (e *InfeasibleError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v after %d attempts", ErrInfeasible, e.Attempts)
	if len(e.Reasons) > 0 {
		keys := make([]string, 0, len(e.Reasons))
		for k := range e.Reasons {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%d", k, e.Reasons[k])
		}
		fmt.Fprintf(&sb, " (rejections: %s)", strings.Join(parts, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

// Unwrap exposes ErrInfeasible and the cause to errors.Is and errors.As.
func (e *InfeasibleError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInfeasible}
	}
	return []error{ErrInfeasible, e.Cause}
}
