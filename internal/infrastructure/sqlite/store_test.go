package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/courtfunds/payhub-bridge/internal/domain/instruction"
	"github.com/courtfunds/payhub-bridge/internal/domain/setting"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "bridge.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func cheque(status instruction.Status, transferred bool) instruction.PaymentInstruction {
	return instruction.PaymentInstruction{
		Status:              status,
		TransferredToPayhub: transferred,
		PayerName:           "Jane Payer",
		Amount:              5500,
		Currency:            "GBP",
		Type:                instruction.TypeCheque,
		ChequeNumber:        "123456",
	}
}

func TestInsertAndGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	p := cheque(instruction.StatusReadyToTransfer, false)
	if err := store.Insert(ctx, &p); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if p.ID == 0 {
		t.Fatal("Insert() did not assign an id")
	}

	got, err := store.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.PayerName != p.PayerName || got.Type != p.Type || got.ChequeNumber != p.ChequeNumber {
		t.Fatalf("row = %+v, want %+v", got, p)
	}
}

func TestGetUnknownID(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Get(context.Background(), 404); !errors.Is(err, instruction.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListPayhubEligiblePredicate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ttb := cheque(instruction.StatusReadyToTransfer, false)
	pending := cheque(instruction.StatusPending, false)
	done := cheque(instruction.StatusReadyToTransfer, true)
	for _, p := range []*instruction.PaymentInstruction{&ttb, &pending, &done} {
		if err := store.Insert(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.ListPayhubEligible(ctx)
	if err != nil {
		t.Fatalf("ListPayhubEligible() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != ttb.ID {
		t.Fatalf("eligible = %+v, want only instruction %d", got, ttb.ID)
	}
}

func TestMarkTransferOutcomeConditionalWrite(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	p := cheque(instruction.StatusReadyToTransfer, false)
	if err := store.Insert(ctx, &p); err != nil {
		t.Fatal(err)
	}

	if err := store.MarkTransferOutcome(ctx, p.ID, true, ""); err != nil {
		t.Fatalf("MarkTransferOutcome() error = %v", err)
	}
	got, _ := store.Get(ctx, p.ID)
	if !got.TransferredToPayhub || got.LastError != "" {
		t.Fatalf("row = %+v", got)
	}

	// stale failure from a concurrent dispatch is a success no-op
	if err := store.MarkTransferOutcome(ctx, p.ID, false, "Failed: late"); err != nil {
		t.Fatalf("MarkTransferOutcome() = %v, want no-op", err)
	}
	got, _ = store.Get(ctx, p.ID)
	if !got.TransferredToPayhub || got.LastError != "" {
		t.Fatalf("row downgraded by stale write: %+v", got)
	}
}

func TestMarkTransferOutcomeFailurePath(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	p := cheque(instruction.StatusReadyToTransfer, false)
	if err := store.Insert(ctx, &p); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkTransferOutcome(ctx, p.ID, false, "Failed: bad"); err != nil {
		t.Fatal(err)
	}
	got, _ := store.Get(ctx, p.ID)
	if got.TransferredToPayhub || got.LastError != "Failed: bad" {
		t.Fatalf("row = %+v", got)
	}

	// failed rows stay eligible for the next dispatch
	eligible, err := store.ListPayhubEligible(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(eligible) != 1 {
		t.Fatalf("eligible = %+v", eligible)
	}
}

func TestMarkTransferOutcomeUnknownID(t *testing.T) {
	store := openTestStore(t)
	err := store.MarkTransferOutcome(context.Background(), 404, true, "")
	if !errors.Is(err, instruction.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSendToPayhubFlag(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	enabled, err := store.Flag(ctx, setting.SendToPayhub)
	if err != nil || !enabled {
		t.Fatalf("Flag() = %v, %v; want seeded enabled", enabled, err)
	}

	if err := store.SetFlag(ctx, setting.SendToPayhub, false); err != nil {
		t.Fatal(err)
	}
	enabled, _ = store.Flag(ctx, setting.SendToPayhub)
	if enabled {
		t.Error("flag still enabled after SetFlag(false)")
	}

	unknown, err := store.Flag(ctx, "noSuchFlag")
	if err != nil || unknown {
		t.Errorf("unknown flag = %v, %v; want false, nil", unknown, err)
	}
}

func TestInsertExplicitIDConflict(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	p := cheque(instruction.StatusReadyToTransfer, false)
	p.ID = 7
	if err := store.Insert(ctx, &p); err != nil {
		t.Fatal(err)
	}
	dup := cheque(instruction.StatusReadyToTransfer, false)
	dup.ID = 7
	if err := store.Insert(ctx, &dup); !errors.Is(err, instruction.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}
