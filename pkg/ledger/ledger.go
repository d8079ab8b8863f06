// Package ledger defines the custody collaborator the matching engine
// instructs but does not implement. The engine escrows funds at order
// submission and pays out of escrow on fill and cancel; it never touches
// balances directly.
package ledger

import (
	"context"
	"errors"
)

var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientEscrow = errors.New("insufficient escrow")
)

type Ledger interface {
	// Escrow moves amount of asset from owner's balance into escrow.
	Escrow(ctx context.Context, owner, asset string, amount int64) error

	// Transfer pays amount of asset out of from's escrow into to's balance.
	Transfer(ctx context.Context, from, to, asset string, amount int64) error

	// Refund returns amount of asset from owner's escrow to owner's balance.
	Refund(ctx context.Context, owner, asset string, amount int64) error
}
