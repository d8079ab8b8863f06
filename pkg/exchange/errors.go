package exchange

import "errors"

var (
	errDuplicateOrder     = errors.New("duplicate order")
	errOrderIDNotFound    = errors.New("orderID not found")
	errGatewayIDNotFound  = errors.New("gatewayID not found")
	errInvalidOrderStatus = errors.New("invalid order status")
	errUnknownSymbol      = errors.New("unknown symbol")
	errNotAuthorized      = errors.New("not authorized")
)
