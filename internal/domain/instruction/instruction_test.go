package instruction

import (
	"errors"
	"testing"
)

func validCheque() *PaymentInstruction {
	return &PaymentInstruction{
		ID:           1,
		Status:       StatusReadyToTransfer,
		PayerName:    "Jane Payer",
		Amount:       5500,
		Currency:     "GBP",
		Type:         TypeCheque,
		ChequeNumber: "123456",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PaymentInstruction)
		wantErr error
	}{
		{
			name:   "valid cheque",
			mutate: func(*PaymentInstruction) {},
		},
		{
			name: "valid cash has no type field",
			mutate: func(p *PaymentInstruction) {
				p.Type = TypeCash
				p.ChequeNumber = ""
			},
		},
		{
			name: "valid postal order",
			mutate: func(p *PaymentInstruction) {
				p.Type = TypePostalOrder
				p.ChequeNumber = ""
				p.PostalOrderNumber = "654321"
			},
		},
		{
			name: "valid card",
			mutate: func(p *PaymentInstruction) {
				p.Type = TypeCard
				p.ChequeNumber = ""
				p.AuthorizationCode = "AUTH99"
			},
		},
		{
			name: "valid allpay",
			mutate: func(p *PaymentInstruction) {
				p.Type = TypeAllPay
				p.ChequeNumber = ""
				p.TransactionID = "TX-1"
			},
		},
		{
			name:    "negative amount",
			mutate:  func(p *PaymentInstruction) { p.Amount = -1 },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown status",
			mutate:  func(p *PaymentInstruction) { p.Status = "XX" },
			wantErr: ErrUnknownStatus,
		},
		{
			name:    "unknown payment type",
			mutate:  func(p *PaymentInstruction) { p.Type = "giro" },
			wantErr: ErrUnknownPaymentType,
		},
		{
			name:    "cheque missing cheque number",
			mutate:  func(p *PaymentInstruction) { p.ChequeNumber = "" },
			wantErr: ErrTypeFieldMismatch,
		},
		{
			name: "cheque carrying card field",
			mutate: func(p *PaymentInstruction) {
				p.AuthorizationCode = "AUTH99"
			},
			wantErr: ErrTypeFieldMismatch,
		},
		{
			name: "cash carrying cheque field",
			mutate: func(p *PaymentInstruction) {
				p.Type = TypeCash
			},
			wantErr: ErrTypeFieldMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validCheque()
			tt.mutate(p)
			err := p.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusDisplayName(t *testing.T) {
	known := []Status{
		StatusDraft, StatusPending, StatusValidated,
		StatusReadyToTransfer, StatusCompleted, StatusRejected,
	}
	for _, s := range known {
		if !s.Known() {
			t.Errorf("status %q should be known", s)
		}
		if s.DisplayName() == "Unknown" {
			t.Errorf("status %q has no display name", s)
		}
	}
	if Status("nope").Known() {
		t.Error("unknown status reported as known")
	}
	if got := Status("nope").DisplayName(); got != "Unknown" {
		t.Errorf("DisplayName() = %q, want Unknown", got)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	p := validCheque()
	clone := p.Clone()
	clone.LastError = "changed"
	if p.LastError != "" {
		t.Error("mutating the clone changed the original")
	}
}
