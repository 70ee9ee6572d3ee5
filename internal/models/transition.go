package models

import (
	"errors"
	"fmt"
)

// Trigger is what asked for a status change.
type Trigger string

const (
	TriggerAdvance Trigger = "advance"
	TriggerDrag    Trigger = "drag"
	TriggerAPI     Trigger = "api"
)

var ErrTransitionDenied = errors.New("status transition denied")

// TransitionPolicy decides whether a task may move between two statuses.
// Same-status requests never reach the policy.
type TransitionPolicy interface {
	Allow(from, to Status, trigger Trigger) error
}

// FreePolicy allows any status to be reached from any other.
type FreePolicy struct{}

func (FreePolicy) Allow(from, to Status, _ Trigger) error {
	if !from.Valid() || !to.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

type Transition struct {
	From    Status
	To      Status
	Trigger Trigger
}

// RulePolicy denies the listed transitions and allows everything else.
// An empty Trigger in a rule matches every trigger.
type RulePolicy struct {
	Deny map[Transition]string
}

func (p RulePolicy) Allow(from, to Status, trigger Trigger) error {
	if !from.Valid() || !to.Valid() {
		return ErrInvalidStatus
	}
	for _, key := range []Transition{
		{From: from, To: to, Trigger: trigger},
		{From: from, To: to},
	} {
		if reason, denied := p.Deny[key]; denied {
			return fmt.Errorf("%w: %s -> %s: %s", ErrTransitionDenied, from, to, reason)
		}
	}
	return nil
}

// NoReopenPolicy denies moving finished work back to TODO by drag or by a
// direct API call. The advance cycle still wraps DONE -> TODO.
func NoReopenPolicy() RulePolicy {
	const reason = "reopening finished tasks is disabled"
	return RulePolicy{Deny: map[Transition]string{
		{From: StatusDone, To: StatusTodo, Trigger: TriggerDrag}: reason,
		{From: StatusDone, To: StatusTodo, Trigger: TriggerAPI}:  reason,
	}}
}

// PolicyByName maps a configuration value to a policy.
func PolicyByName(name string) (TransitionPolicy, error) {
	switch name {
	case "", "free":
		return FreePolicy{}, nil
	case "no-reopen":
		return NoReopenPolicy(), nil
	}
	return nil, fmt.Errorf("unknown transition policy %q", name)
}
