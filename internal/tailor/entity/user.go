package entity

import (
	"maps"
	"slices"
	"time"
)

// FieldGroup names the part of a user a mutation touched. Every commit
// announces exactly one group.
type FieldGroup string

const (
	GroupChannels    FieldGroup = "channels"
	GroupFilters     FieldGroup = "filters"
	GroupCredentials FieldGroup = "credentials"
	GroupDeleted     FieldGroup = "deleted"
)

// CumploID is the only Cumplo account id credentials are stored under.
const CumploID = "1"

type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=256"`
	CumploID string `json:"cumplo_id"`
}

// User is the aggregate root. It is always loaded and stored whole.
type User struct {
	ID          string             `json:"id"`
	Email       string             `json:"email" validate:"required,email,max=254"`
	Name        string             `json:"name" validate:"required,max=100"`
	APIKey      string             `json:"api_key"`
	Credentials *Credentials       `json:"credentials,omitempty"`
	Channels    map[string]Channel `json:"channels"`
	Filters     map[string]Filter  `json:"filters"`
}

// NewUser returns a user with empty collections.
func NewUser(id, email, name, apiKey string) User {
	return User{
		ID:       id,
		Email:    email,
		Name:     name,
		APIKey:   apiKey,
		Channels: map[string]Channel{},
		Filters:  map[string]Filter{},
	}
}

// EnsureCollections replaces nil collections, e.g. after decoding an old
// document.
func (u *User) EnsureCollections() {
	if u.Channels == nil {
		u.Channels = map[string]Channel{}
	}
	if u.Filters == nil {
		u.Filters = map[string]Filter{}
	}
}

// ChannelList returns the channels ordered by ID.
func (u User) ChannelList() []Channel {
	out := make([]Channel, 0, len(u.Channels))
	for _, id := range slices.Sorted(maps.Keys(u.Channels)) {
		out = append(out, u.Channels[id])
	}
	return out
}

// FilterList returns the filters ordered by ID.
func (u User) FilterList() []Filter {
	out := make([]Filter, 0, len(u.Filters))
	for _, id := range slices.Sorted(maps.Keys(u.Filters)) {
		out = append(out, u.Filters[id])
	}
	return out
}

// OtherChannels returns the channels of typ whose ID is not excludeID.
func (u User) OtherChannels(typ ChannelType, excludeID string) []Channel {
	var out []Channel
	for _, c := range u.ChannelList() {
		if c.Type() == typ && c.ID != excludeID {
			out = append(out, c)
		}
	}
	return out
}

// OtherFilters returns the filters whose ID is not excludeID.
func (u User) OtherFilters(excludeID string) []Filter {
	var out []Filter
	for _, f := range u.FilterList() {
		if f.ID != excludeID {
			out = append(out, f)
		}
	}
	return out
}

// MailMessage is the newest message of the signup mailbox.
type MailMessage struct {
	ID      string
	From    string
	Snippet string
}

// Signup is a user candidate parsed from a signup notification email.
type Signup struct {
	Name  string
	Email string
}

// MailWatch is the result of (re)subscribing the mailbox to push
// notifications.
type MailWatch struct {
	HistoryID  uint64
	Expiration time.Time
}
