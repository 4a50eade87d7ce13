package metrics

import (
	"maps"
	"time"

	"github.com/tophhie/pds-welcomer/internal/domain/model"
	obserrors "github.com/tophhie/pds-welcomer/internal/observability/errors"
	"github.com/tophhie/pds-welcomer/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// RunMetric captures the outcome of a single dispatch run.
type RunMetric struct {
	Summary *model.RunSummary
	Err     error
}

// EmitDispatchRun emits standardised run-level metrics: one run counter tagged by result,
// the run duration, the last successful completion time, and a gauge per account outcome.
func EmitDispatchRun(sink statsd.Sink, in RunMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": runResult(in)}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("dispatch.run", 1, tags)

	if in.Summary == nil {
		return
	}
	if in.Err == nil {
		finished := in.Summary.StartedAt.Add(in.Summary.Duration)
		sink.Gauge("dispatch.last_success_epoch", float64(finished.Unix()), nil)
	}
	if in.Summary.Duration > 0 {
		sink.Timing("dispatch.run_duration", in.Summary.Duration, CloneTags(tags))
	}
	sink.Gauge("dispatch.run.listed", float64(in.Summary.Listed), nil)
	for outcome, n := range in.Summary.Outcomes {
		sink.Gauge("dispatch.run.accounts", float64(n), map[string]string{"outcome": string(outcome)})
	}
}

// AccountMetric captures one account's terminal state within a run.
type AccountMetric struct {
	Outcome  model.AccountOutcome
	Duration time.Duration
	Err      error
}

// EmitAccountOutcome emits a counter per account outcome plus the send latency for
// accounts that reached the email provider.
func EmitAccountOutcome(sink statsd.Sink, in AccountMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"outcome": string(in.Outcome),
		"result":  outcomeResult(in.Outcome),
	}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("dispatch.account", 1, tags)

	if in.Duration > 0 {
		sink.Timing("dispatch.account.duration", in.Duration, CloneTags(tags))
	}
}

func runResult(in RunMetric) string {
	switch {
	case in.Err != nil:
		return ResultError
	case in.Summary == nil || in.Summary.Count(model.AccountOutcomeSent) == 0:
		return ResultNoop
	default:
		return ResultSuccess
	}
}

func outcomeResult(outcome model.AccountOutcome) string {
	switch outcome {
	case model.AccountOutcomeSent:
		return ResultSuccess
	case model.AccountOutcomeResolutionFailed, model.AccountOutcomeDeliveryFailed, model.AccountOutcomeStoreError:
		return ResultError
	default:
		return ResultNoop
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	maps.Copy(out, src)
	delete(out, "")
	return out
}
