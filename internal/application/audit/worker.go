package audit

import (
	"context"

	"github.com/courtfunds/payhub-bridge/internal/domain/event"
	"github.com/courtfunds/payhub-bridge/internal/pkg/logging"
	"go.uber.org/zap"
)

// Worker subscribes to dispatch events and writes the operational audit
// trail. It is observational only; the dispatch report never depends on it.
type Worker struct {
	subscriber event.Subscriber
}

func New(subscriber event.Subscriber) *Worker {
	return &Worker{subscriber: subscriber}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(event.DispatchCompleted{}.EventName(), w.handleDispatchCompleted)
	w.subscriber.Subscribe(event.TransferFailed{}.EventName(), w.handleTransferFailed)
}

func (w *Worker) handleDispatchCompleted(ctx context.Context, e event.Event) error {
	logger := logging.FromContext(ctx).With(zap.String("component", "audit_worker"))

	evt, ok := e.(event.DispatchCompleted)
	if !ok {
		return nil
	}

	logger.Info("dispatch_completed",
		zap.Int("total", evt.Total),
		zap.Int("success", evt.Success),
		zap.Time("finished_at", evt.FinishedAt),
	)
	return nil
}

func (w *Worker) handleTransferFailed(ctx context.Context, e event.Event) error {
	logger := logging.FromContext(ctx).With(zap.String("component", "audit_worker"))

	evt, ok := e.(event.TransferFailed)
	if !ok {
		return nil
	}

	logger.Warn("transfer_failed",
		zap.Int("instruction_id", evt.InstructionID),
		zap.String("error", evt.ErrorText),
	)
	return nil
}
