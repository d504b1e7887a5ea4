package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventMask_Enable(t *testing.T) {
	tests := []struct {
		name    string
		mask    EventMask
		kind    EventKind
		want    EventMask
		wantErr error
	}{
		{
			name:    "all without exception is already enabled",
			mask:    AllEvents(),
			kind:    EventInvestmentPaid,
			want:    AllEvents(),
			wantErr: ErrEventAlreadyEnabled,
		},
		{
			name: "all with exception removes it",
			mask: AllEventsExcept(EventInvestmentPaid, EventInvestmentFailed),
			kind: EventInvestmentPaid,
			want: AllEventsExcept(EventInvestmentFailed),
		},
		{
			name:    "explicit containing kind",
			mask:    OnlyEvents(EventFundingRequestNew),
			kind:    EventFundingRequestNew,
			want:    OnlyEvents(EventFundingRequestNew),
			wantErr: ErrEventAlreadyEnabled,
		},
		{
			name: "explicit adds kind",
			mask: OnlyEvents(EventFundingRequestNew),
			kind: EventInvestmentPaid,
			want: OnlyEvents(EventInvestmentPaid, EventFundingRequestNew),
		},
		{
			name: "none becomes single explicit",
			mask: NoEvents(),
			kind: EventInvestmentPaid,
			want: OnlyEvents(EventInvestmentPaid),
		},
		{
			name:    "unknown kind",
			mask:    NoEvents(),
			kind:    "investment.refunded",
			want:    NoEvents(),
			wantErr: ErrUnknownEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.mask.Enable(tt.kind)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, tt.want.Equal(got), "got %+v", got)
		})
	}
}

func TestEventMask_Disable(t *testing.T) {
	tests := []struct {
		name    string
		mask    EventMask
		kind    EventKind
		want    EventMask
		wantErr error
	}{
		{
			name: "all adds exception",
			mask: AllEvents(),
			kind: EventInvestmentPaid,
			want: AllEventsExcept(EventInvestmentPaid),
		},
		{
			name:    "all with kind already excepted",
			mask:    AllEventsExcept(EventInvestmentPaid),
			kind:    EventInvestmentPaid,
			want:    AllEventsExcept(EventInvestmentPaid),
			wantErr: ErrEventAlreadyDisabled,
		},
		{
			name:    "explicit without kind",
			mask:    OnlyEvents(EventFundingRequestNew),
			kind:    EventInvestmentPaid,
			want:    OnlyEvents(EventFundingRequestNew),
			wantErr: ErrEventAlreadyDisabled,
		},
		{
			name: "explicit removes kind",
			mask: OnlyEvents(EventFundingRequestNew, EventInvestmentPaid),
			kind: EventInvestmentPaid,
			want: OnlyEvents(EventFundingRequestNew),
		},
		{
			name: "explicit last kind collapses to none",
			mask: OnlyEvents(EventInvestmentPaid),
			kind: EventInvestmentPaid,
			want: NoEvents(),
		},
		{
			name:    "none",
			mask:    NoEvents(),
			kind:    EventInvestmentPaid,
			want:    NoEvents(),
			wantErr: ErrEventAlreadyDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.mask.Disable(tt.kind)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, tt.want.Equal(got), "got %+v", got)
		})
	}
}

func TestEventMask_DisableEveryKindCollapsesToNone(t *testing.T) {
	mask := AllEvents()
	for _, k := range EventKinds() {
		var err error
		mask, err = mask.Disable(k)
		require.NoError(t, err)
	}

	assert.Equal(t, MaskNone, mask.Mode())
	assert.True(t, mask.Equal(NoEvents()))

	mask, err := mask.Enable(EventFundingRequestExpiring)
	require.NoError(t, err)
	assert.Equal(t, MaskExplicit, mask.Mode())
	for _, k := range EventKinds() {
		assert.Equal(t, k == EventFundingRequestExpiring, mask.Enabled(k), k)
	}
}

func TestEventMask_Wire(t *testing.T) {
	tests := []struct {
		name string
		mask EventMask
		json string
	}{
		{"all", AllEvents(), `{"enabled_events":"all"}`},
		{"all except", AllEventsExcept(EventInvestmentPaid), `{"enabled_events":"all","disabled_events":["investment.paid"]}`},
		{"none", NoEvents(), `{"enabled_events":[]}`},
		{"explicit", OnlyEvents(EventInvestmentPaid), `{"enabled_events":["investment.paid"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.mask.wire())
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(raw))

			var w maskWire
			require.NoError(t, json.Unmarshal([]byte(tt.json), &w))
			got, err := maskFromWire(w)
			require.NoError(t, err)
			assert.True(t, tt.mask.Equal(got))
		})
	}
}

func TestMaskFromWire_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"bad mode", `{"enabled_events":"some"}`},
		{"disabled with explicit", `{"enabled_events":["investment.paid"],"disabled_events":["investment.failed"]}`},
		{"unknown enabled", `{"enabled_events":["nope"]}`},
		{"unknown disabled", `{"enabled_events":"all","disabled_events":["nope"]}`},
		{"wrong shape", `{"enabled_events":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w maskWire
			require.NoError(t, json.Unmarshal([]byte(tt.json), &w))

			_, err := maskFromWire(w)
			assert.Error(t, err)
		})
	}
}

func TestMaskFromWire_MissingIsAll(t *testing.T) {
	got, err := maskFromWire(maskWire{})
	require.NoError(t, err)
	assert.True(t, AllEvents().Equal(got))
}
