package ledger

import (
	"context"
	"sync"
)

type accountKey struct {
	owner string
	asset string
}

// MemoryLedger is an in-process Ledger for tests and single-node runs.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[accountKey]int64
	escrowed map[accountKey]int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[accountKey]int64),
		escrowed: make(map[accountKey]int64),
	}
}

// Deposit credits an owner's balance. Test/bootstrap helper, not part of the
// Ledger interface the engine sees.
func (l *MemoryLedger) Deposit(owner, asset string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[accountKey{owner, asset}] += amount
}

func (l *MemoryLedger) Balance(owner, asset string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[accountKey{owner, asset}]
}

func (l *MemoryLedger) Escrowed(owner, asset string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.escrowed[accountKey{owner, asset}]
}

func (l *MemoryLedger) Escrow(_ context.Context, owner, asset string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := accountKey{owner, asset}
	if l.balances[k] < amount {
		return ErrInsufficientFunds
	}
	l.balances[k] -= amount
	l.escrowed[k] += amount
	return nil
}

func (l *MemoryLedger) Transfer(_ context.Context, from, to, asset string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	fk := accountKey{from, asset}
	if l.escrowed[fk] < amount {
		return ErrInsufficientEscrow
	}
	l.escrowed[fk] -= amount
	l.balances[accountKey{to, asset}] += amount
	return nil
}

func (l *MemoryLedger) Refund(_ context.Context, owner, asset string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := accountKey{owner, asset}
	if l.escrowed[k] < amount {
		return ErrInsufficientEscrow
	}
	l.escrowed[k] -= amount
	l.balances[k] += amount
	return nil
}
