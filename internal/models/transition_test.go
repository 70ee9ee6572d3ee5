package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreePolicy_AllowsEverything(t *testing.T) {
	var policy FreePolicy
	for _, from := range Statuses {
		for _, to := range Statuses {
			for _, trigger := range []Trigger{TriggerAdvance, TriggerDrag, TriggerAPI} {
				assert.NoError(t, policy.Allow(from, to, trigger))
			}
		}
	}
	assert.ErrorIs(t, policy.Allow("BLOCKED", StatusDone, TriggerAPI), ErrInvalidStatus)
}

func TestNoReopenPolicy(t *testing.T) {
	policy := NoReopenPolicy()

	assert.ErrorIs(t, policy.Allow(StatusDone, StatusTodo, TriggerDrag), ErrTransitionDenied)
	assert.ErrorIs(t, policy.Allow(StatusDone, StatusTodo, TriggerAPI), ErrTransitionDenied)
	assert.NoError(t, policy.Allow(StatusDone, StatusTodo, TriggerAdvance))
	assert.NoError(t, policy.Allow(StatusDone, StatusInProgress, TriggerDrag))
}

func TestRulePolicy_WildcardTrigger(t *testing.T) {
	policy := RulePolicy{Deny: map[Transition]string{
		{From: StatusTodo, To: StatusDone}: "work must start first",
	}}

	for _, trigger := range []Trigger{TriggerAdvance, TriggerDrag, TriggerAPI} {
		err := policy.Allow(StatusTodo, StatusDone, trigger)
		assert.ErrorIs(t, err, ErrTransitionDenied)
		assert.Contains(t, err.Error(), "work must start first")
	}
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	require.NoError(t, err)
	assert.IsType(t, FreePolicy{}, p)

	p, err = PolicyByName("no-reopen")
	require.NoError(t, err)
	assert.IsType(t, RulePolicy{}, p)

	_, err = PolicyByName("strict")
	assert.Error(t, err)
}
