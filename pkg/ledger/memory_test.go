package ledger

import (
	"context"
	"errors"
	"testing"
)

func TestEscrowAndTransfer(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Deposit("alice", "USD", 1000)

	if err := l.Escrow(ctx, "alice", "USD", 400); err != nil {
		t.Fatal(err)
	}
	if got := l.Balance("alice", "USD"); got != 600 {
		t.Errorf("expected balance 600, got %d", got)
	}
	if got := l.Escrowed("alice", "USD"); got != 400 {
		t.Errorf("expected escrow 400, got %d", got)
	}

	if err := l.Transfer(ctx, "alice", "bob", "USD", 250); err != nil {
		t.Fatal(err)
	}
	if got := l.Balance("bob", "USD"); got != 250 {
		t.Errorf("expected bob to receive 250, got %d", got)
	}
	if got := l.Escrowed("alice", "USD"); got != 150 {
		t.Errorf("expected escrow down to 150, got %d", got)
	}
}

func TestEscrowInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Deposit("alice", "USD", 100)

	if err := l.Escrow(ctx, "alice", "USD", 101); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestTransferBeyondEscrow(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Deposit("alice", "USD", 100)
	if err := l.Escrow(ctx, "alice", "USD", 100); err != nil {
		t.Fatal(err)
	}

	if err := l.Transfer(ctx, "alice", "bob", "USD", 101); !errors.Is(err, ErrInsufficientEscrow) {
		t.Fatalf("expected ErrInsufficientEscrow, got %v", err)
	}
}

func TestRefund(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Deposit("alice", "USD", 100)
	if err := l.Escrow(ctx, "alice", "USD", 100); err != nil {
		t.Fatal(err)
	}
	if err := l.Refund(ctx, "alice", "USD", 100); err != nil {
		t.Fatal(err)
	}
	if got := l.Balance("alice", "USD"); got != 100 {
		t.Errorf("expected full balance back, got %d", got)
	}
	if err := l.Refund(ctx, "alice", "USD", 1); !errors.Is(err, ErrInsufficientEscrow) {
		t.Fatalf("expected ErrInsufficientEscrow on empty escrow, got %v", err)
	}
}
