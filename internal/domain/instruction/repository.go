package instruction

import "context"

// Repository is the persistence port for payment instructions.
type Repository interface {
	Insert(ctx context.Context, p *PaymentInstruction) error
	Get(ctx context.Context, id int) (*PaymentInstruction, error)

	// ListPayhubEligible returns the instructions with status TTB that have
	// not yet been transferred. Ordering is an implementation detail.
	ListPayhubEligible(ctx context.Context) ([]PaymentInstruction, error)

	// MarkTransferOutcome records the result of one forwarding attempt:
	// transferred_to_payhub takes the transferred value and last_error the
	// given text. The write is conditional: a row that is already
	// transferred is left untouched and the call succeeds as a no-op, which
	// is what prevents two concurrent dispatches from double-recording.
	MarkTransferOutcome(ctx context.Context, id int, transferred bool, lastError string) error
}
