package distributor

import "github.com/iov-one/tokendist/errors"

var (
	// ErrNotOwner is returned when an operation reserved to the owner of
	// a distributor is requested by anyone else.
	ErrNotOwner = errors.Register(100, "not the owner")

	// ErrNotExecutor is returned when an execution is requested by anyone
	// but the configured executor.
	ErrNotExecutor = errors.Register(101, "not the executor")

	// ErrInvalidAllocation is returned when a policy split is not valid.
	ErrInvalidAllocation = errors.Register(102, "invalid allocation")

	// ErrPolicyMismatch is returned when the policy an execution request
	// was made for is not the stored one.
	ErrPolicyMismatch = errors.Register(103, "policy mismatch")

	// ErrThresholdNotReached is returned when the balance is below the
	// policy threshold.
	ErrThresholdNotReached = errors.Register(104, "threshold not reached")

	// ErrFeeExceedsBalance is returned when the executor fee is greater
	// than the balance it would be paid from.
	ErrFeeExceedsBalance = errors.Register(105, "fee exceeds balance")
)
