package rotation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPattern is matched by every *InvalidPatternError via errors.Is
var ErrInvalidPattern = errors.New("invalid rotation pattern")

// InvalidPatternError reports a malformed "<on>/<off>" pattern string
type InvalidPatternError struct {
	Pattern string
	Reason  string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid rotation pattern %q: %s", e.Pattern, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidPattern) work for wrapped pattern errors
func (e *InvalidPatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}

// CyclePattern is a repeating block of OnDays on duty followed by OffDays off
type CyclePattern struct {
	OnDays  int
	OffDays int
}

// NewCyclePattern validates both lengths
func NewCyclePattern(onDays, offDays int) (CyclePattern, error) {
	p := CyclePattern{OnDays: onDays, OffDays: offDays}
	if onDays < 1 {
		return CyclePattern{}, &InvalidPatternError{Pattern: p.String(), Reason: "on days must be at least 1"}
	}
	if offDays < 1 {
		return CyclePattern{}, &InvalidPatternError{Pattern: p.String(), Reason: "off days must be at least 1"}
	}
	return p, nil
}

// ParsePattern parses "<onDays>/<offDays>", e.g. "14/14" or "3/2"
func ParsePattern(s string) (CyclePattern, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return CyclePattern{}, &InvalidPatternError{Pattern: s, Reason: "expected <on>/<off>"}
	}

	values := make([]int, 2)
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return CyclePattern{}, &InvalidPatternError{Pattern: s, Reason: "missing component"}
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return CyclePattern{}, &InvalidPatternError{Pattern: s, Reason: fmt.Sprintf("%q is not an integer", part)}
		}
		if n < 1 {
			return CyclePattern{}, &InvalidPatternError{Pattern: s, Reason: fmt.Sprintf("%d is not positive", n)}
		}
		values[i] = n
	}

	return CyclePattern{OnDays: values[0], OffDays: values[1]}, nil
}

// CycleLength returns OnDays + OffDays
func (p CyclePattern) CycleLength() int {
	return p.OnDays + p.OffDays
}

// String renders the external "<on>/<off>" form
func (p CyclePattern) String() string {
	return fmt.Sprintf("%d/%d", p.OnDays, p.OffDays)
}
