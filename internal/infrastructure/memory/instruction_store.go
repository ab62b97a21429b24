package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/courtfunds/payhub-bridge/internal/domain/instruction"
	"github.com/courtfunds/payhub-bridge/internal/domain/setting"
)

// InstructionStore keeps instructions and feature flags in memory. It mirrors
// the conditional-write semantics of the SQLite store so tests and local runs
// see the same behavior.
type InstructionStore struct {
	mu           sync.RWMutex
	instructions map[int]*instruction.PaymentInstruction
	flags        map[string]bool
	nextID       int
}

func NewInstructionStore() *InstructionStore {
	return &InstructionStore{
		instructions: make(map[int]*instruction.PaymentInstruction),
		flags:        map[string]bool{setting.SendToPayhub: true},
		nextID:       1,
	}
}

func (s *InstructionStore) Insert(ctx context.Context, p *instruction.PaymentInstruction) error {
	_ = ctx
	if p == nil {
		return fmt.Errorf("instruction store: instruction is required")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		p.ID = s.nextID
	}
	if _, exists := s.instructions[p.ID]; exists {
		return instruction.ErrConflict
	}
	if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	s.instructions[p.ID] = p.Clone()
	return nil
}

func (s *InstructionStore) Get(ctx context.Context, id int) (*instruction.PaymentInstruction, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.instructions[id]
	if !ok {
		return nil, instruction.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *InstructionStore) ListPayhubEligible(ctx context.Context) ([]instruction.PaymentInstruction, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []instruction.PaymentInstruction
	for _, p := range s.instructions {
		if p.Status == instruction.StatusReadyToTransfer && !p.TransferredToPayhub {
			out = append(out, *p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InstructionStore) MarkTransferOutcome(ctx context.Context, id int, transferred bool, lastError string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.instructions[id]
	if !ok {
		return instruction.ErrNotFound
	}
	if p.TransferredToPayhub {
		// already transferred by another dispatch; success no-op
		return nil
	}
	p.TransferredToPayhub = transferred
	p.LastError = lastError
	return nil
}

func (s *InstructionStore) Flag(ctx context.Context, name string) (bool, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[name], nil
}

func (s *InstructionStore) SetFlag(ctx context.Context, name string, enabled bool) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[name] = enabled
	return nil
}

var _ instruction.Repository = (*InstructionStore)(nil)
var _ setting.Store = (*InstructionStore)(nil)
