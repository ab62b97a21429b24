package instruction

import "errors"

var (
	ErrNotFound           = errors.New("instruction: not found")
	ErrConflict           = errors.New("instruction: already exists")
	ErrInvalidAmount      = errors.New("instruction: amount must be zero or greater")
	ErrUnknownStatus      = errors.New("instruction: unknown status")
	ErrUnknownPaymentType = errors.New("instruction: unknown payment type")
	ErrTypeFieldMismatch  = errors.New("instruction: type-specific field inconsistent with payment type")
)

// PaymentType discriminates the concrete kind of a payment instruction.
// The values double as the wire discriminators used by PayHub.
type PaymentType string

const (
	TypeCheque      PaymentType = "cheques"
	TypeCash        PaymentType = "cash"
	TypePostalOrder PaymentType = "postal-orders"
	TypeAllPay      PaymentType = "allpay"
	TypeCard        PaymentType = "cards"
)

// Known reports whether the payment type is one of the closed set.
func (t PaymentType) Known() bool {
	switch t {
	case TypeCheque, TypeCash, TypePostalOrder, TypeAllPay, TypeCard:
		return true
	}
	return false
}

// PaymentInstruction is a captured payment record staged for forwarding.
// The Type tag selects which of the type-specific fields is meaningful;
// exactly one of them is set, and only the one matching the tag.
type PaymentInstruction struct {
	ID                  int
	Status              Status
	TransferredToPayhub bool
	LastError           string
	PayerName           string
	Amount              int64 // minor units
	Currency            string
	Type                PaymentType

	ChequeNumber      string // cheques
	PostalOrderNumber string // postal-orders
	AuthorizationCode string // cards
	TransactionID     string // allpay
}

// Validate enforces the structural invariants of a persisted instruction.
func (p *PaymentInstruction) Validate() error {
	if p.Amount < 0 {
		return ErrInvalidAmount
	}
	if !p.Status.Known() {
		return ErrUnknownStatus
	}
	if !p.Type.Known() {
		return ErrUnknownPaymentType
	}

	set := map[PaymentType]string{
		TypeCheque:      p.ChequeNumber,
		TypePostalOrder: p.PostalOrderNumber,
		TypeCard:        p.AuthorizationCode,
		TypeAllPay:      p.TransactionID,
	}
	for typ, field := range set {
		if typ == p.Type {
			if field == "" {
				return ErrTypeFieldMismatch
			}
			continue
		}
		if field != "" {
			return ErrTypeFieldMismatch
		}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without aliasing store state.
func (p *PaymentInstruction) Clone() *PaymentInstruction {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
