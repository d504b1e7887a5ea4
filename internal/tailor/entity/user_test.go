package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_RoundTrip(t *testing.T) {
	u := NewUser("u1", "ana@example.com", "Ana", "key-1")
	u.Credentials = &Credentials{Email: "ana@cumplo.cl", Password: "s3cret", CumploID: CumploID}
	u.Channels["c1"] = Channel{ID: "c1", Events: AllEvents(), Settings: WhatsApp{PhoneNumber: "+56912345678"}}
	u.Filters["f1"] = Filter{ID: "f1", Name: "n"}

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	var got User
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Credentials, got.Credentials)
	assert.Equal(t, u.Filters, got.Filters)
	require.Contains(t, got.Channels, "c1")
	assert.True(t, u.Channels["c1"].Equal(got.Channels["c1"]))
}

func TestUser_EnsureCollections(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u1"}`), &u))

	u.EnsureCollections()

	assert.NotNil(t, u.Channels)
	assert.NotNil(t, u.Filters)
}

func TestUser_OtherChannels(t *testing.T) {
	u := NewUser("u1", "e", "n", "k")
	u.Channels["b"] = Channel{ID: "b", Settings: Webhook{URL: "https://b"}}
	u.Channels["a"] = Channel{ID: "a", Settings: Webhook{URL: "https://a"}}
	u.Channels["w"] = Channel{ID: "w", Settings: WhatsApp{PhoneNumber: "+1"}}

	got := u.OtherChannels(ChannelWebhook, "b")

	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Len(t, u.OtherChannels(ChannelWebhook, ""), 2)
	assert.Len(t, u.OtherFilters(""), 0)
}
