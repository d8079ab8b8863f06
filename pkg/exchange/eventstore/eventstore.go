// Package eventstore keeps the execution history of each order and the
// mapping between client gateway ids and exchange order ids.
package eventstore

import "github.com/joripage/prorata-orderbook/pkg/exchange/model"

type EventStore interface {
	AddEvent(ev *model.OrderEvent)
	TrackGateway(gatewayID, orderID string)
	GetOrderID(gatewayID string) (string, bool)
	GetLatestGatewayID(orderID string) string
	EventsByOrder(orderID string) []*model.OrderEvent
	DeleteByOrderID(orderID string)
}
