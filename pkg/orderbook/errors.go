package orderbook

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrExpired               = errors.New("order already expired")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInvalidState          = errors.New("invalid order state")
	ErrNotOwner              = errors.New("not order owner")
	ErrNotFound              = errors.New("order not found")
	ErrInvalidValue          = errors.New("invalid value")
)
