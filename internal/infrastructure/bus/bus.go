package bus

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/courtfunds/payhub-bridge/internal/domain/event"
	"github.com/courtfunds/payhub-bridge/internal/pkg/logging"
	"go.uber.org/zap"
)

const handlerTimeout = 30 * time.Second

// Bus is an in-memory event bus for audit-style fanout within the process.
// It is not durable; the dispatch report never depends on its delivery.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string][]event.Handler
	queue     chan event.Event
	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	logger    *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.L()
	}
	return &Bus{
		subs:   make(map[string][]event.Handler),
		queue:  make(chan event.Event, 256),
		logger: logger.With(zap.String("component", "event_bus")),
	}
}

func (b *Bus) Subscribe(eventName string, h event.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		bg, cancel := context.WithCancel(ctx)
		b.cancel = cancel
		go b.deliverLoop(bg)
		b.logger.Info("event_bus_started")
	})
}

func (b *Bus) Stop(ctx context.Context) {
	_ = ctx
	b.stopOnce.Do(func() {
		if b.cancel != nil {
			b.cancel()
		}
		close(b.queue)
		b.logger.Info("event_bus_stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e event.Event) error {
	if e == nil {
		return nil
	}
	select {
	case b.queue <- e:
		return nil
	case <-ctx.Done():
		b.logger.Warn("event_enqueue_aborted",
			zap.String("event", e.EventName()),
			zap.Error(ctx.Err()),
		)
		return ctx.Err()
	}
}

func (b *Bus) deliverLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-b.queue:
			if !ok {
				return
			}
			b.fanout(ctx, e)
		}
	}
}

func (b *Bus) fanout(ctx context.Context, e event.Event) {
	name := e.EventName()

	b.mu.RLock()
	handlers := append([]event.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug("event_dropped_no_subscriber", zap.String("event", name))
		return
	}

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("event_handler_panic",
						zap.String("event", name),
						zap.Any("panic", r),
						zap.String("stack", string(debug.Stack())),
					)
				}
			}()

			hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handlerTimeout)
			defer cancel()
			hctx = logging.ContextWithLogger(hctx, b.logger)

			if err := h(hctx, e); err != nil {
				b.logger.Warn("event_handler_error",
					zap.String("event", name),
					zap.Error(err),
				)
			}
		}()
	}
}

var _ event.Publisher = (*Bus)(nil)
var _ event.Subscriber = (*Bus)(nil)
