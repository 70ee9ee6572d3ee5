package models

import (
	"testing"

	"pgregory.net/rapid"
)

// Advancing any status three times returns it to where it started.
func TestProperty_AdvanceCycleHasPeriodThree(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		start := rapid.SampledFrom(Statuses).Draw(rt, "start")

		s := start
		for i := 0; i < 3; i++ {
			s = s.Next()
			if !s.Valid() {
				rt.Fatalf("advance produced invalid status %q", s)
			}
		}
		if s != start {
			rt.Errorf("three advances from %s ended at %s", start, s)
		}
		if start.Next() == start {
			rt.Errorf("advance from %s did not move", start)
		}
	})
}

// A patch built from random presence flags applies exactly the present fields.
func TestProperty_PatchAppliesOnlyPresentFields(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := Task{
			Title:        "base",
			Status:       StatusTodo,
			TotalMinutes: rapid.IntRange(0, 10_000).Draw(rt, "baseMinutes"),
		}

		var patch TaskPatch
		setTitle := rapid.Bool().Draw(rt, "setTitle")
		setMinutes := rapid.Bool().Draw(rt, "setMinutes")
		title := rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "title")
		minutes := rapid.IntRange(0, 10_000).Draw(rt, "minutes")
		if setTitle {
			patch.Title = Set(title)
		}
		if setMinutes {
			patch.TotalMinutes = Set(minutes)
		}

		got := patch.Apply(base)
		wantTitle, wantMinutes := base.Title, base.TotalMinutes
		if setTitle {
			wantTitle = title
		}
		if setMinutes {
			wantMinutes = minutes
		}
		if got.Title != wantTitle || got.TotalMinutes != wantMinutes || got.Status != base.Status {
			rt.Errorf("patch %+v applied to %+v gave %+v", patch, base, got)
		}
	})
}
