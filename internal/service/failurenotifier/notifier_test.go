package failurenotifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tophhie/pds-welcomer/internal/observability/notify"
)

func TestServiceNotifyRunFailure(t *testing.T) {
	ctx := context.Background()

	var received []notify.RunFailurePayload
	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{
				Name: "capture",
				Sink: notify.SinkFunc(func(ctx context.Context, payload notify.RunFailurePayload) error {
					received = append(received, payload)
					return nil
				}),
			},
		},
	})

	svc.NotifyRunFailure(ctx, notify.RunFailurePayload{
		RunID: "123",
		Stage: "listing",
	})

	if len(received) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(received))
	}
	if received[0].Severity != notify.SeverityCritical {
		t.Fatalf("expected severity to default to critical, got %s", received[0].Severity)
	}
}

func TestServiceKeepsExplicitSeverity(t *testing.T) {
	var got string
	svc := NewService(Options{
		Sinks: []SinkRegistration{{
			Sink: notify.SinkFunc(func(ctx context.Context, payload notify.RunFailurePayload) error {
				got = payload.Severity
				return nil
			}),
		}},
	})

	svc.NotifyRunFailure(context.Background(), notify.RunFailurePayload{Severity: notify.SeverityWarning})

	if got != notify.SeverityWarning {
		t.Fatalf("expected warning severity, got %q", got)
	}
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(Options{})
	if svc.Enabled() {
		t.Fatal("expected Enabled() to be false when no sinks registered")
	}

	var nilSvc *Service
	if nilSvc.Enabled() {
		t.Fatal("expected nil service to be disabled")
	}
}

func TestServiceSkipsNilSinks(t *testing.T) {
	svc := NewService(Options{Sinks: []SinkRegistration{{Name: "empty"}}})
	if svc.Enabled() {
		t.Fatal("expected nil sink registration to be dropped")
	}
}

func TestServiceFansOutDespiteErrors(t *testing.T) {
	var mu sync.Mutex
	var delivered []string
	record := func(name string, err error) notify.Sink {
		return notify.SinkFunc(func(ctx context.Context, payload notify.RunFailurePayload) error {
			mu.Lock()
			defer mu.Unlock()
			delivered = append(delivered, name)
			return err
		})
	}

	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{Name: "fail", Sink: record("fail", errors.New("boom"))},
			{Name: "ok", Sink: record("ok", nil)},
		},
	})

	svc.NotifyRunFailure(context.Background(), notify.RunFailurePayload{RunID: "123"})

	if len(delivered) != 2 {
		t.Fatalf("expected both sinks to be called, got %v", delivered)
	}
}
