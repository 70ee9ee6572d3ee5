package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_States(t *testing.T) {
	var absent Field[string]
	assert.True(t, absent.IsZero())
	assert.False(t, absent.IsNull())
	assert.Nil(t, absent.Ptr())

	null := Null[string]()
	assert.False(t, null.IsZero())
	assert.True(t, null.IsNull())
	assert.Nil(t, null.Ptr())

	set := Set("x")
	v, ok := set.Get()
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	require.NotNil(t, set.Ptr())
	assert.Equal(t, "x", *set.Ptr())

	assert.True(t, SetOrNull[string](nil).IsNull())
}

func TestTaskPatch_MarshalKeepsPresence(t *testing.T) {
	patch := TaskPatch{
		Title:       Set("Ship it"),
		Description: Null[string](),
	}

	data, err := json.Marshal(patch)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Ship it","description":null}`, string(data))
}

func TestTaskPatch_UnmarshalDistinguishesNullFromAbsent(t *testing.T) {
	var patch TaskPatch
	err := json.Unmarshal([]byte(`{"description":null,"total_minutes":45}`), &patch)
	require.NoError(t, err)

	assert.True(t, patch.Title.IsZero())
	assert.True(t, patch.Description.IsNull())
	assert.True(t, patch.Status.IsZero())
	minutes, ok := patch.TotalMinutes.Get()
	assert.True(t, ok)
	assert.Equal(t, 45, minutes)
	assert.True(t, patch.AssignedTo.IsZero())
}

func TestTaskPatch_UnmarshalRejectsWrongType(t *testing.T) {
	var patch TaskPatch
	err := json.Unmarshal([]byte(`{"total_minutes":"lots"}`), &patch)
	assert.Error(t, err)
}
