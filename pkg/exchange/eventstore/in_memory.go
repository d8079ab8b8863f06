package eventstore

import (
	"sync"

	"github.com/joripage/prorata-orderbook/pkg/exchange/model"
)

type InMemoryEventStore struct {
	mu        sync.RWMutex
	events    map[string][]*model.OrderEvent
	byGateway map[string]string // gateway id -> order id
	latest    map[string]string // order id -> latest gateway id
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		events:    make(map[string][]*model.OrderEvent),
		byGateway: make(map[string]string),
		latest:    make(map[string]string),
	}
}

func (s *InMemoryEventStore) AddEvent(ev *model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[ev.OrderID] = append(s.events[ev.OrderID], ev)
	if ev.GatewayID != "" {
		s.byGateway[ev.GatewayID] = ev.OrderID
		s.latest[ev.OrderID] = ev.GatewayID
	}
}

func (s *InMemoryEventStore) TrackGateway(gatewayID, orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byGateway[gatewayID] = orderID
	s.latest[orderID] = gatewayID
}

func (s *InMemoryEventStore) GetOrderID(gatewayID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byGateway[gatewayID]
	return id, ok
}

func (s *InMemoryEventStore) GetLatestGatewayID(orderID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest[orderID]
}

func (s *InMemoryEventStore) EventsByOrder(orderID string) []*model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.events[orderID]
}

func (s *InMemoryEventStore) DeleteByOrderID(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// a cancel request adds a second gateway id to the chain; drop them all
	for gw, id := range s.byGateway {
		if id == orderID {
			delete(s.byGateway, gw)
		}
	}
	delete(s.latest, orderID)
	delete(s.events, orderID)
}
