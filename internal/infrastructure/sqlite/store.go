package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/courtfunds/payhub-bridge/internal/domain/instruction"
	"github.com/courtfunds/payhub-bridge/internal/domain/setting"
)

// Store persists payment instructions and feature flags in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS payment_instruction (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			status TEXT NOT NULL,
			transferred_to_payhub INTEGER NOT NULL DEFAULT 0,
			last_error TEXT NOT NULL DEFAULT '',
			payer_name TEXT NOT NULL,
			amount INTEGER NOT NULL,
			currency TEXT NOT NULL,
			payment_type TEXT NOT NULL,
			cheque_number TEXT NOT NULL DEFAULT '',
			postal_order_number TEXT NOT NULL DEFAULT '',
			authorization_code TEXT NOT NULL DEFAULT '',
			transaction_id TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_instruction_eligible
			ON payment_instruction (status, transferred_to_payhub);

		CREATE TABLE IF NOT EXISTS app_setting (
			name TEXT PRIMARY KEY,
			enabled INTEGER NOT NULL
		);

		INSERT OR IGNORE INTO app_setting (name, enabled) VALUES ('sendToPayhub', 1);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const instructionColumns = `id, status, transferred_to_payhub, last_error, payer_name,
	amount, currency, payment_type, cheque_number, postal_order_number,
	authorization_code, transaction_id`

func (s *Store) Insert(ctx context.Context, p *instruction.PaymentInstruction) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.ID > 0 {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO payment_instruction (`+instructionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, string(p.Status), p.TransferredToPayhub, p.LastError, p.PayerName,
			p.Amount, p.Currency, string(p.Type), p.ChequeNumber, p.PostalOrderNumber,
			p.AuthorizationCode, p.TransactionID,
		)
		if err != nil {
			return wrapConflict(err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_instruction (status, transferred_to_payhub, last_error,
			payer_name, amount, currency, payment_type, cheque_number,
			postal_order_number, authorization_code, transaction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(p.Status), p.TransferredToPayhub, p.LastError, p.PayerName,
		p.Amount, p.Currency, string(p.Type), p.ChequeNumber, p.PostalOrderNumber,
		p.AuthorizationCode, p.TransactionID,
	)
	if err != nil {
		return wrapConflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = int(id)
	return nil
}

func (s *Store) Get(ctx context.Context, id int) (*instruction.PaymentInstruction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+instructionColumns+`
		FROM payment_instruction WHERE id = ?`, id)
	return scanInstruction(row)
}

func (s *Store) ListPayhubEligible(ctx context.Context) ([]instruction.PaymentInstruction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+instructionColumns+`
		FROM payment_instruction
		WHERE status = ? AND transferred_to_payhub = 0
		ORDER BY id`, string(instruction.StatusReadyToTransfer))
	if err != nil {
		return nil, fmt.Errorf("list eligible: %w", err)
	}
	defer rows.Close()

	var out []instruction.PaymentInstruction
	for rows.Next() {
		p, err := scanInstruction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// MarkTransferOutcome writes a transfer outcome conditionally: a row that has
// already been transferred is left untouched and the call is a success
// no-op, so a concurrent dispatch cannot downgrade or double-record a row.
func (s *Store) MarkTransferOutcome(ctx context.Context, id int, transferred bool, lastError string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE payment_instruction
		SET transferred_to_payhub = ?, last_error = ?
		WHERE id = ? AND transferred_to_payhub = 0`,
		transferred, lastError, id,
	)
	if err != nil {
		return fmt.Errorf("mark transfer outcome: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// No row updated: either the id is unknown or the row was already
	// transferred by another dispatch. Only the former is an error.
	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT 1 FROM payment_instruction WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return instruction.ErrNotFound
	}
	return err
}

func (s *Store) Flag(ctx context.Context, name string) (bool, error) {
	var enabled bool
	err := s.db.QueryRowContext(ctx,
		`SELECT enabled FROM app_setting WHERE name = ?`, name).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read flag %s: %w", name, err)
	}
	return enabled, nil
}

func (s *Store) SetFlag(ctx context.Context, name string, enabled bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_setting (name, enabled) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET enabled = excluded.enabled`,
		name, enabled,
	)
	if err != nil {
		return fmt.Errorf("set flag %s: %w", name, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstruction(row rowScanner) (*instruction.PaymentInstruction, error) {
	var p instruction.PaymentInstruction
	var status, paymentType string
	err := row.Scan(
		&p.ID, &status, &p.TransferredToPayhub, &p.LastError, &p.PayerName,
		&p.Amount, &p.Currency, &paymentType, &p.ChequeNumber,
		&p.PostalOrderNumber, &p.AuthorizationCode, &p.TransactionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, instruction.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Status = instruction.Status(status)
	p.Type = instruction.PaymentType(paymentType)
	return &p, nil
}

func wrapConflict(err error) error {
	// sqlite reports duplicate primary keys as a UNIQUE constraint failure.
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return instruction.ErrConflict
	}
	return err
}

var _ instruction.Repository = (*Store)(nil)
var _ setting.Store = (*Store)(nil)
