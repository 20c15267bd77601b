package utils

import (
	"context"
	"time"

	"github.com/DataWorkbench/paimonweb/qerror"
)

// PollOptions bounds a poll loop. A zero Timeout and a zero MaxAttempts
// keep polling until the condition holds or the context is done.
type PollOptions struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

// ConditionFunc reports whether polling can stop. A non-nil error ends
// the loop and is returned unchanged.
type ConditionFunc func(ctx context.Context) (done bool, err error)

// Poll runs condition immediately and then once per Interval until it is done.
// Exceeding Timeout or MaxAttempts yields qerror.PollTimeout.
func Poll(ctx context.Context, name string, opts PollOptions, condition ConditionFunc) error {
	var deadline <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	attempts := 0
	for {
		done, err := condition(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		attempts++
		if opts.MaxAttempts > 0 && attempts >= opts.MaxAttempts {
			return qerror.PollTimeout.Format(name, attempts)
		}

		wait := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return ctx.Err()
		case <-deadline:
			wait.Stop()
			return qerror.PollTimeout.Format(name, attempts)
		case <-wait.C:
		}
	}
}
