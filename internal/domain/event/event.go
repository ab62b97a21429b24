package event

import (
	"context"
	"time"
)

// Event is any domain event with a name identifier.
type Event interface {
	EventName() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher publishes events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// DispatchCompleted is emitted once per dispatch invocation with the
// aggregate counters, after all outcomes have been recorded.
type DispatchCompleted struct {
	Total      int
	Success    int
	FinishedAt time.Time
}

func (DispatchCompleted) EventName() string { return "dispatch.completed" }

// TransferFailed is emitted for every instruction whose forwarding attempt
// was recorded as failed.
type TransferFailed struct {
	InstructionID int
	ErrorText     string
}

func (TransferFailed) EventName() string { return "dispatch.transfer_failed" }
