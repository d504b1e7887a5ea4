package entity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shandysiswandi/tailor/internal/pkg/valueobject"
)

var (
	ErrUnknownChannelType = errors.New("tailor: unknown channel type")
	ErrChannelTypeChanged = errors.New("tailor: channel type cannot change")
)

// ChannelType tags the Channel variants.
type ChannelType string

const (
	ChannelWhatsApp ChannelType = "whatsapp"
	ChannelIFTTT    ChannelType = "ifttt"
	ChannelWebhook  ChannelType = "webhook"
)

// ParseChannelType returns ErrUnknownChannelType for an unknown tag.
func ParseChannelType(s string) (ChannelType, error) {
	switch t := ChannelType(s); t {
	case ChannelWhatsApp, ChannelIFTTT, ChannelWebhook:
		return t, nil
	default:
		return "", ErrUnknownChannelType
	}
}

// ChannelSettings is the variant part of a Channel. It is implemented only
// by WhatsApp, IFTTT and Webhook.
type ChannelSettings interface {
	Type() ChannelType
	sealed()
}

type WhatsApp struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
}

type IFTTT struct {
	Key   string `json:"key" validate:"required,max=128"`
	Event string `json:"event" validate:"required,max=128"`
}

type Webhook struct {
	URL string `json:"url" validate:"required,http_url,max=2048"`
}

func (WhatsApp) Type() ChannelType { return ChannelWhatsApp }
func (IFTTT) Type() ChannelType    { return ChannelIFTTT }
func (Webhook) Type() ChannelType  { return ChannelWebhook }

func (WhatsApp) sealed() {}
func (IFTTT) sealed()    {}
func (Webhook) sealed()  {}

// Channel is a notification destination owned by a user.
//
// Two channels are the same channel when their IDs match; Equal compares
// everything else.
type Channel struct {
	ID       string
	Events   EventMask
	Settings ChannelSettings
}

// Type returns the variant tag, or "" when Settings is unset.
func (c Channel) Type() ChannelType {
	if c.Settings == nil {
		return ""
	}
	return c.Settings.Type()
}

// Equal reports value equality, ignoring ID.
func (c Channel) Equal(o Channel) bool {
	return c.Settings == o.Settings && c.Events.Equal(o.Events)
}

// channelHead holds the fields every variant shares.
type channelHead struct {
	ID   string      `json:"id"`
	Type ChannelType `json:"type"`
	maskWire
}

func (c Channel) MarshalJSON() ([]byte, error) {
	if c.Settings == nil {
		return nil, ErrUnknownChannelType
	}

	head, err := valueobject.FromStruct(channelHead{ID: c.ID, Type: c.Type(), maskWire: c.Events.wire()})
	if err != nil {
		return nil, err
	}
	body, err := valueobject.FromStruct(c.Settings)
	if err != nil {
		return nil, err
	}
	return json.Marshal(head.Merge(body))
}

func (c *Channel) UnmarshalJSON(data []byte) error {
	var m valueobject.JSONMap
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	ch, err := ChannelFromMap(m)
	if err != nil {
		return err
	}
	*c = ch
	return nil
}

// ChannelFromMap builds a channel from its document form. The "type" key
// picks the variant and keys belonging to no field are rejected. Field
// values are not validated here; see NewChannel.
func ChannelFromMap(m valueobject.JSONMap) (Channel, error) {
	typ, err := ParseChannelType(m.GetString("type"))
	if err != nil {
		return Channel{}, err
	}

	rest := m.Clone()
	var head channelHead
	if err := pick(rest, &head, "id", "type", "enabled_events", "disabled_events"); err != nil {
		return Channel{}, err
	}

	mask, err := maskFromWire(head.maskWire)
	if err != nil {
		return Channel{}, &FieldError{Field: "enabled_events", Err: err}
	}

	var settings ChannelSettings
	switch typ {
	case ChannelWhatsApp:
		var s WhatsApp
		err = rest.Decode(&s)
		settings = s
	case ChannelIFTTT:
		var s IFTTT
		err = rest.Decode(&s)
		settings = s
	case ChannelWebhook:
		var s Webhook
		err = rest.Decode(&s)
		settings = s
	}
	if err != nil {
		return Channel{}, fmt.Errorf("%s channel: %w", typ, err)
	}

	return Channel{ID: head.ID, Events: mask, Settings: settings}, nil
}

// pick decodes keys of m into dst and removes them from m.
func pick(m valueobject.JSONMap, dst any, keys ...string) error {
	part := valueobject.JSONMap{}
	for _, k := range keys {
		if v, ok := m[k]; ok {
			part[k] = v
			delete(m, k)
		}
	}
	raw, err := json.Marshal(part)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
