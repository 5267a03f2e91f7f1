package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/stepmill/stepmill/internal/jsonpath"
	"github.com/stepmill/stepmill/pkg/domain"
)

// execWait computes the state's delay and suspends the scope for it. The
// timer fires exactly once and has no early-cancellation path of its own;
// only cancelling the whole run's context interrupts it.
func (x *execution) execWait(ctx context.Context, name string, state *domain.State, event any) error {
	delay, err := x.computeDelay(name, state, event)
	if err != nil {
		return err
	}

	x.logger.Debug("waiting", "state", name, "delay", delay)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// computeDelay resolves exactly one of Seconds, SecondsPath, Timestamp and
// TimestampPath into a non-negative duration. Timestamps are RFC3339 and
// instants in the past clamp to zero.
func (x *execution) computeDelay(name string, state *domain.State, event any) (time.Duration, error) {
	switch {
	case state.Seconds != nil:
		return secondsToDelay(float64(*state.Seconds)), nil

	case state.SecondsPath != "":
		value, found, err := jsonpath.Get(event, state.SecondsPath)
		if err != nil {
			return 0, fmt.Errorf("wait state '%s': %w", name, err)
		}
		if !found {
			return 0, &domain.DefinitionError{
				StateName: name,
				Reason:    fmt.Sprintf("SecondsPath '%s' not found in event", state.SecondsPath),
			}
		}
		seconds, ok := toFloat(value)
		if !ok {
			return 0, &domain.DefinitionError{
				StateName: name,
				Reason:    fmt.Sprintf("SecondsPath '%s' resolved to a non-numeric value", state.SecondsPath),
			}
		}
		return secondsToDelay(seconds), nil

	case state.Timestamp != "":
		return timestampToDelay(name, state.Timestamp)

	case state.TimestampPath != "":
		value, found, err := jsonpath.Get(event, state.TimestampPath)
		if err != nil {
			return 0, fmt.Errorf("wait state '%s': %w", name, err)
		}
		if !found {
			return 0, &domain.DefinitionError{
				StateName: name,
				Reason:    fmt.Sprintf("TimestampPath '%s' not found in event", state.TimestampPath),
			}
		}
		ts, ok := value.(string)
		if !ok {
			return 0, &domain.DefinitionError{
				StateName: name,
				Reason:    fmt.Sprintf("TimestampPath '%s' resolved to a non-string value", state.TimestampPath),
			}
		}
		return timestampToDelay(name, ts)

	default:
		return 0, &domain.DefinitionError{
			StateName: name,
			Reason:    "Wait requires one of Seconds, SecondsPath, Timestamp, TimestampPath",
		}
	}
}

func secondsToDelay(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func timestampToDelay(name, timestamp string) (time.Duration, error) {
	at, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return 0, &domain.DefinitionError{
			StateName: name,
			Reason:    fmt.Sprintf("invalid RFC3339 timestamp '%s'", timestamp),
		}
	}
	delay := time.Until(at)
	if delay < 0 {
		return 0, nil
	}
	return delay, nil
}
