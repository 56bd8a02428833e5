package enum

import "fmt"

// PeriodStatus represents the lifecycle state of a ranking period.
type PeriodStatus int

const (
	PeriodStatusActive PeriodStatus = iota
	PeriodStatusCompleted
)

// periodStatusNames maps period statuses to their storage labels.
var periodStatusNames = map[PeriodStatus]string{
	PeriodStatusActive:    "active",
	PeriodStatusCompleted: "completed",
}

// String returns the storage label for the period status.
func (p PeriodStatus) String() string {
	if name, ok := periodStatusNames[p]; ok {
		return name
	}

	return fmt.Sprintf("PeriodStatus(%d)", int(p))
}

// PeriodStatusString parses a storage label back into a PeriodStatus.
func PeriodStatusString(s string) (PeriodStatus, error) {
	for p, name := range periodStatusNames {
		if name == s {
			return p, nil
		}
	}

	return 0, fmt.Errorf("%w: PeriodStatus %q", ErrUnknownEnum, s)
}
