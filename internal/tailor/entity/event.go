package entity

import (
	"errors"
	"slices"
)

var (
	ErrUnknownEvent         = errors.New("tailor: unknown event kind")
	ErrEventAlreadyEnabled  = errors.New("tailor: event already enabled")
	ErrEventAlreadyDisabled = errors.New("tailor: event already disabled")
)

// EventKind is a domain event a channel can be notified about.
type EventKind string

const (
	EventFundingRequestNew       EventKind = "funding_request.new"
	EventFundingRequestPromising EventKind = "funding_request.promising"
	EventFundingRequestExpiring  EventKind = "funding_request.expiring"
	EventInvestmentSuccessful    EventKind = "investment.successful"
	EventInvestmentFailed        EventKind = "investment.failed"
	EventInvestmentPaid          EventKind = "investment.paid"
)

var eventKinds = []EventKind{
	EventFundingRequestNew,
	EventFundingRequestPromising,
	EventFundingRequestExpiring,
	EventInvestmentSuccessful,
	EventInvestmentFailed,
	EventInvestmentPaid,
}

// EventKinds returns every known kind in declaration order.
func EventKinds() []EventKind {
	return slices.Clone(eventKinds)
}

// ParseEventKind returns ErrUnknownEvent for anything outside EventKinds.
func ParseEventKind(s string) (EventKind, error) {
	k := EventKind(s)
	if !slices.Contains(eventKinds, k) {
		return "", ErrUnknownEvent
	}
	return k, nil
}
