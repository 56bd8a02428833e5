package types

import "errors"

var (
	// ErrNoActivePeriod indicates a point-bearing write arrived while no
	// period is active. Callers must surface this rather than drop the
	// event; losing points silently is worse than a retryable error.
	ErrNoActivePeriod = errors.New("no active ranking period")

	// ErrPeriodNotFound indicates the requested period does not exist.
	ErrPeriodNotFound = errors.New("period not found")

	// ErrPeriodNotCompleted indicates a reward distribution was requested
	// for a period that is still active.
	ErrPeriodNotCompleted = errors.New("period is not completed")

	// ErrRankingOverflow indicates a ranking refresh produced more entries
	// than the top-K bound. This is a programming error and fails loudly.
	ErrRankingOverflow = errors.New("ranking refresh exceeded entry bound")

	// ErrUnknownEngagement indicates an (action, content) pair with no
	// point catalog entry.
	ErrUnknownEngagement = errors.New("unknown engagement combination")

	// ErrInvalidSign indicates an apply-event sign outside {+1, -1}.
	ErrInvalidSign = errors.New("sign must be +1 or -1")

	// ErrShareNotReversible indicates an attempt to reverse a share;
	// shares are one-shot in this model.
	ErrShareNotReversible = errors.New("share events cannot be reversed")
)
