package entity

import (
	"encoding/json"
	"errors"
	"slices"
)

const allEvents = "all"

// MaskMode is the state of an EventMask.
type MaskMode uint8

const (
	// MaskAll enables every kind except the ones listed.
	MaskAll MaskMode = iota
	// MaskNone enables nothing.
	MaskNone
	// MaskExplicit enables exactly the listed kinds.
	MaskExplicit
)

// EventMask selects the event kinds a channel fires for. It is a value
// type: Enable and Disable return a new mask and leave the receiver as is.
//
// The zero value is All with no exceptions.
type EventMask struct {
	mode MaskMode
	// events is the except set in MaskAll and the enabled set in
	// MaskExplicit, kept sorted.
	events []EventKind
}

// AllEvents enables every kind.
func AllEvents() EventMask { return EventMask{mode: MaskAll} }

// NoEvents disables every kind.
func NoEvents() EventMask { return EventMask{mode: MaskNone} }

// OnlyEvents enables exactly kinds. An empty list is NoEvents.
func OnlyEvents(kinds ...EventKind) EventMask {
	set := normalizeKinds(kinds)
	if len(set) == 0 {
		return NoEvents()
	}
	return EventMask{mode: MaskExplicit, events: set}
}

// AllEventsExcept enables every kind but except. Excepting every kind is
// NoEvents.
func AllEventsExcept(except ...EventKind) EventMask {
	set := normalizeKinds(except)
	if len(set) == len(eventKinds) {
		return NoEvents()
	}
	return EventMask{mode: MaskAll, events: set}
}

func normalizeKinds(kinds []EventKind) []EventKind {
	if len(kinds) == 0 {
		return nil
	}
	out := slices.Clone(kinds)
	slices.Sort(out)
	return slices.Compact(out)
}

func (m EventMask) Mode() MaskMode { return m.mode }

// Enabled reports whether the mask fires for kind.
func (m EventMask) Enabled(kind EventKind) bool {
	switch m.mode {
	case MaskAll:
		return !slices.Contains(m.events, kind)
	case MaskExplicit:
		return slices.Contains(m.events, kind)
	default:
		return false
	}
}

func (m EventMask) Equal(o EventMask) bool {
	return m.mode == o.mode && slices.Equal(m.events, o.events)
}

// Enable turns kind on.
//
//   - All: only an excepted kind can be enabled; it leaves the except set.
//   - Explicit: kind joins the set unless already there.
//   - None: becomes Explicit{kind}.
func (m EventMask) Enable(kind EventKind) (EventMask, error) {
	if _, err := ParseEventKind(string(kind)); err != nil {
		return m, err
	}

	switch m.mode {
	case MaskAll:
		if !slices.Contains(m.events, kind) {
			return m, ErrEventAlreadyEnabled
		}
		return AllEventsExcept(without(m.events, kind)...), nil
	case MaskExplicit:
		if slices.Contains(m.events, kind) {
			return m, ErrEventAlreadyEnabled
		}
		return OnlyEvents(append(slices.Clone(m.events), kind)...), nil
	default:
		return OnlyEvents(kind), nil
	}
}

// Disable turns kind off.
//
//   - All: kind joins the except set; excepting every kind collapses to None.
//   - Explicit: kind leaves the set; an empty set collapses to None.
//   - None: always already disabled.
func (m EventMask) Disable(kind EventKind) (EventMask, error) {
	if _, err := ParseEventKind(string(kind)); err != nil {
		return m, err
	}

	switch m.mode {
	case MaskAll:
		if slices.Contains(m.events, kind) {
			return m, ErrEventAlreadyDisabled
		}
		return AllEventsExcept(append(slices.Clone(m.events), kind)...), nil
	case MaskExplicit:
		if !slices.Contains(m.events, kind) {
			return m, ErrEventAlreadyDisabled
		}
		return OnlyEvents(without(m.events, kind)...), nil
	default:
		return m, ErrEventAlreadyDisabled
	}
}

func without(kinds []EventKind, kind EventKind) []EventKind {
	return slices.DeleteFunc(slices.Clone(kinds), func(k EventKind) bool { return k == kind })
}

// maskWire is how a mask sits inside a channel document:
// enabled_events is "all" or a list, disabled_events only accompanies "all".
type maskWire struct {
	EnabledEvents  json.RawMessage `json:"enabled_events,omitempty"`
	DisabledEvents []EventKind     `json:"disabled_events,omitempty"`
}

func (m EventMask) wire() maskWire {
	switch m.mode {
	case MaskAll:
		return maskWire{EnabledEvents: json.RawMessage(`"all"`), DisabledEvents: slices.Clone(m.events)}
	case MaskExplicit:
		raw, _ := json.Marshal(m.events) //nolint:errcheck // a []string always marshals
		return maskWire{EnabledEvents: raw}
	default:
		return maskWire{EnabledEvents: json.RawMessage(`[]`)}
	}
}

// maskFromWire rebuilds a mask. A missing enabled_events means All.
func maskFromWire(w maskWire) (EventMask, error) {
	if len(w.EnabledEvents) == 0 || string(w.EnabledEvents) == "null" {
		return checkedExcept(w.DisabledEvents)
	}

	var mode string
	if err := json.Unmarshal(w.EnabledEvents, &mode); err == nil {
		if mode != allEvents {
			return EventMask{}, errors.New(`enabled_events must be "all" or a list of events`)
		}
		return checkedExcept(w.DisabledEvents)
	}

	if len(w.DisabledEvents) > 0 {
		return EventMask{}, errors.New(`disabled_events is only allowed when enabled_events is "all"`)
	}

	var kinds []EventKind
	if err := json.Unmarshal(w.EnabledEvents, &kinds); err != nil {
		return EventMask{}, errors.New(`enabled_events must be "all" or a list of events`)
	}
	for _, k := range kinds {
		if _, err := ParseEventKind(string(k)); err != nil {
			return EventMask{}, err
		}
	}
	return OnlyEvents(kinds...), nil
}

func checkedExcept(kinds []EventKind) (EventMask, error) {
	for _, k := range kinds {
		if _, err := ParseEventKind(string(k)); err != nil {
			return EventMask{}, err
		}
	}
	return AllEventsExcept(kinds...), nil
}
