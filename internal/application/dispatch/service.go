package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/courtfunds/payhub-bridge/internal/domain/event"
	"github.com/courtfunds/payhub-bridge/internal/domain/instruction"
	domPayhub "github.com/courtfunds/payhub-bridge/internal/domain/payhub"
	"github.com/courtfunds/payhub-bridge/internal/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ErrCredential marks a failed service-token mint, which aborts the whole
// dispatch before any instruction is touched.
var ErrCredential = errors.New("dispatch: service credential unavailable")

const tracerName = "github.com/courtfunds/payhub-bridge/internal/application/dispatch"

// Metrics carries the prometheus vectors the service observes. Any field may
// be nil, in which case that observation is skipped.
type Metrics struct {
	Dispatches *prometheus.CounterVec   // labels: outcome
	Transfers  *prometheus.CounterVec   // labels: outcome
	Duration   *prometheus.HistogramVec // no labels beyond the vec's own
}

// Service is the transfer dispatch engine: it fans eligible instructions out
// to PayHub one at a time and records each outcome durably before counting it.
type Service struct {
	store     InstructionStore
	tokens    TokenSource
	submitter Submitter
	publisher event.Publisher
	metrics   Metrics
}

func NewService(store InstructionStore, tokens TokenSource, submitter Submitter, publisher event.Publisher, metrics Metrics) *Service {
	return &Service{
		store:     store,
		tokens:    tokens,
		submitter: submitter,
		publisher: publisher,
		metrics:   metrics,
	}
}

// Dispatch forwards every eligible instruction to PayHub using the caller's
// bearer token, sequentially, and returns the aggregate counters. Errors are
// returned only for invocation-level failures (credential mint, selection);
// per-instruction failures are recorded on the instruction itself.
func (s *Service) Dispatch(ctx context.Context, userToken string) (report domPayhub.Report, err error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "dispatch_service"))

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Dispatch")
	start := time.Now()
	defer func() {
		span.SetAttributes(
			attribute.Int("dispatch.total", report.Total),
			attribute.Int("dispatch.success", report.Success),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "dispatch aborted")
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()

		if s.metrics.Duration != nil {
			s.metrics.Duration.WithLabelValues().Observe(time.Since(start).Seconds())
		}
	}()

	serviceToken, err := s.tokens.MintServiceToken(ctx)
	if err != nil {
		logger.Error("service_token_mint_failed", zap.Error(err))
		s.observeDispatch("aborted")
		return domPayhub.Report{}, fmt.Errorf("%w: %v", ErrCredential, err)
	}

	eligible, err := s.store.ListPayhubEligible(ctx)
	if err != nil {
		logger.Error("eligible_instructions_list_failed", zap.Error(err))
		s.observeDispatch("aborted")
		return domPayhub.Report{}, fmt.Errorf("list eligible instructions: %w", err)
	}
	report.Total = len(eligible)

	for i := range eligible {
		// The caller dropping the request stops the fan-out; instructions
		// not yet attempted stay eligible for the next dispatch.
		if ctx.Err() != nil {
			logger.Warn("dispatch_cancelled",
				zap.Int("attempted", i),
				zap.Int("total", report.Total),
			)
			break
		}

		outcome := s.transferOne(ctx, &eligible[i], userToken, serviceToken)

		if persistErr := s.store.MarkTransferOutcome(ctx, outcome.InstructionID, outcome.Success, outcome.ErrorText); persistErr != nil {
			// Not counted as success even when the HTTP call succeeded: the
			// report only reflects outcomes the store has committed.
			logger.Error("transfer_outcome_persist_failed",
				zap.Int("instruction_id", outcome.InstructionID),
				zap.Error(persistErr),
			)
			s.observeTransfer("persist_error")
			continue
		}

		if outcome.Success {
			report.Success++
			s.observeTransfer("success")
			continue
		}
		s.observeTransfer("failed")
		s.publish(ctx, event.TransferFailed{
			InstructionID: outcome.InstructionID,
			ErrorText:     outcome.ErrorText,
		})
	}

	s.observeDispatch("completed")
	s.publish(ctx, event.DispatchCompleted{
		Total:      report.Total,
		Success:    report.Success,
		FinishedAt: time.Now().UTC(),
	})
	return report, nil
}

// transferOne projects, submits and classifies a single instruction. It
// never returns an error: every failure mode collapses into the outcome's
// error text.
func (s *Service) transferOne(ctx context.Context, p *instruction.PaymentInstruction, userToken, serviceToken string) domPayhub.Outcome {
	logger := logging.FromContext(ctx).With(
		zap.String("component", "dispatch_service"),
		zap.Int("instruction_id", p.ID),
	)

	payload, err := domPayhub.Project(p)
	if err != nil {
		logger.Error("payload_projection_failed", zap.Error(err))
		return domPayhub.Outcome{
			InstructionID: p.ID,
			ErrorText:     msgPayloadParse + err.Error(),
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("payload_marshal_failed", zap.Error(err))
		return domPayhub.Outcome{
			InstructionID: p.ID,
			ErrorText:     msgPayloadParse + err.Error(),
		}
	}

	res, err := s.submitter.Submit(ctx, body, userToken, serviceToken)
	if err != nil {
		logger.Error("payhub_submit_failed", zap.Error(err))
		return domPayhub.Outcome{
			InstructionID: p.ID,
			ErrorText:     msgTransport + err.Error(),
		}
	}

	return classify(logger, payload.ID, res)
}

func (s *Service) publish(ctx context.Context, e event.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed",
			zap.String("event", e.EventName()),
			zap.Error(err),
		)
	}
}

func (s *Service) observeDispatch(outcome string) {
	if s.metrics.Dispatches != nil {
		s.metrics.Dispatches.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) observeTransfer(outcome string) {
	if s.metrics.Transfers != nil {
		s.metrics.Transfers.WithLabelValues(outcome).Inc()
	}
}
