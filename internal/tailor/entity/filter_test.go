package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestFilter_Equal(t *testing.T) {
	base := Filter{ID: "f1", Name: "short", MinIRR: ptr(1.5), MaxDuration: ptr(90), CreditTypes: []string{"b", "a"}}.Normalize()

	same := base
	same.ID = "f2"
	same.MinIRR = ptr(1.5)
	assert.True(t, base.Equal(same))

	renamed := base
	renamed.Name = "other"
	assert.False(t, base.Equal(renamed))
	assert.True(t, base.SameCriteria(renamed))

	changed := base
	changed.MaxDuration = nil
	assert.False(t, base.SameCriteria(changed))
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{CreditTypes: []string{"b", "a", "b"}}.Normalize()
	assert.Equal(t, []string{"a", "b"}, f.CreditTypes)

	assert.Nil(t, Filter{CreditTypes: []string{}}.Normalize().CreditTypes)
}

func TestFilter_CheckRanges(t *testing.T) {
	assert.NoError(t, Filter{MinIRR: ptr(1.0), MaxIRR: ptr(1.0)}.CheckRanges())
	assert.NoError(t, Filter{MinIRR: ptr(2.0)}.CheckRanges())

	var fe *FieldError
	require.ErrorAs(t, Filter{MinIRR: ptr(2.0), MaxIRR: ptr(1.0)}.CheckRanges(), &fe)
	assert.Equal(t, "max_irr", fe.Field)

	require.ErrorAs(t, Filter{MinDuration: ptr(60), MaxDuration: ptr(30)}.CheckRanges(), &fe)
	assert.Equal(t, "max_duration", fe.Field)
}

func TestFilter_RoundTrip(t *testing.T) {
	f := Filter{ID: "f1", Name: "n", MinAmount: ptr(100000), MinScore: ptr(0.8), IgnoreDicom: true}

	raw, err := json.Marshal(f)
	require.NoError(t, err)

	var got Filter
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, f, got)
}
