package payhub

import (
	"fmt"

	"github.com/courtfunds/payhub-bridge/internal/domain/instruction"
)

// FeeLine is one fee entry on a PayHub payment record.
type FeeLine struct {
	Code             string `json:"code"`
	Version          string `json:"version,omitempty"`
	CalculatedAmount int64  `json:"calculated_amount"`
}

// Payload is the wire projection of a payment instruction onto PayHub's
// payment-record schema. It is immutable once projected; the ID travels
// along so the caller can key the state update after the response.
type Payload struct {
	ID            int       `json:"id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	PayerName     string    `json:"payer_name"`
	PaymentMethod string    `json:"payment_method"`
	Fees          []FeeLine `json:"fees"`

	ChequeNumber      string `json:"cheque_number,omitempty"`
	PostalOrderNumber string `json:"postal_order_number,omitempty"`
	AuthorizationCode string `json:"authorization_code,omitempty"`
	TransactionID     string `json:"transaction_id,omitempty"`
}

const feeCodeMiscellaneous = "MISC"

// Project maps a persisted instruction to its PayHub payload. It is a pure
// function, total over the known payment types; an unknown discriminator is
// the only failure.
func Project(p *instruction.PaymentInstruction) (*Payload, error) {
	out := &Payload{
		ID:            p.ID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PayerName:     p.PayerName,
		PaymentMethod: string(p.Type),
		Fees: []FeeLine{
			{Code: feeCodeMiscellaneous, Version: "1", CalculatedAmount: p.Amount},
		},
	}

	switch p.Type {
	case instruction.TypeCheque:
		out.ChequeNumber = p.ChequeNumber
	case instruction.TypePostalOrder:
		out.PostalOrderNumber = p.PostalOrderNumber
	case instruction.TypeCard:
		out.AuthorizationCode = p.AuthorizationCode
	case instruction.TypeAllPay:
		out.TransactionID = p.TransactionID
	case instruction.TypeCash:
		// no type-specific field
	default:
		return nil, fmt.Errorf("%w: %q", instruction.ErrUnknownPaymentType, p.Type)
	}
	return out, nil
}
