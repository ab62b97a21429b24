package dispatch

import (
	"context"

	"github.com/courtfunds/payhub-bridge/internal/domain/instruction"
)

// TokenSource mints the short-lived service-to-service credential used on
// outbound PayHub calls. One token is minted per dispatch invocation.
type TokenSource interface {
	MintServiceToken(ctx context.Context) (string, error)
}

// Result is the raw outcome of one delivered HTTP submission. A transport
// failure (connection refused, deadline expiry) is reported as an error by
// the Submitter instead.
type Result struct {
	StatusCode int
	Body       []byte
}

// Submitter posts one serialized payload to PayHub.
type Submitter interface {
	Submit(ctx context.Context, body []byte, userToken, serviceToken string) (*Result, error)
}

// InstructionStore is the slice of the instruction repository the dispatch
// path depends on.
type InstructionStore interface {
	ListPayhubEligible(ctx context.Context) ([]instruction.PaymentInstruction, error)
	MarkTransferOutcome(ctx context.Context, id int, transferred bool, lastError string) error
}
