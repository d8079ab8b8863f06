package fixgateway

import (
	"errors"

	"github.com/quickfixgo/quickfix"
)

var errClOrdIDNotFound = errors.New("clOrdID not found")

func (s *FixGateway) AddRequestToMap(clOrdID string, sessionID *quickfix.SessionID) {
	s.requestMapping.Store(clOrdID, sessionID)
}

func (s *FixGateway) GetRequestByClOrdID(clOrdID string) (*quickfix.SessionID, error) {
	var sessionID any
	var ok bool
	if sessionID, ok = s.requestMapping.Load(clOrdID); !ok {
		return nil, errClOrdIDNotFound
	}

	return sessionID.(*quickfix.SessionID), nil
}
