package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"TODO", StatusTodo},
		{"todo", StatusTodo},
		{"in-progress", StatusInProgress},
		{" IN_PROGRESS ", StatusInProgress},
		{"done", StatusDone},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStatus("blocked")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStatus_Next(t *testing.T) {
	assert.Equal(t, StatusInProgress, StatusTodo.Next())
	assert.Equal(t, StatusDone, StatusInProgress.Next())
	assert.Equal(t, StatusTodo, StatusDone.Next())
}

func TestTask_VisibleTo(t *testing.T) {
	assignee := "u2"
	task := Task{UserID: "u1", AssignedTo: &assignee}

	assert.True(t, task.VisibleTo("u1"))
	assert.True(t, task.VisibleTo("u2"))
	assert.False(t, task.VisibleTo("u3"))
}

func TestTaskPatch_Apply(t *testing.T) {
	desc := "old"
	assignee := "u2"
	task := Task{
		Title:        "Write tests",
		Description:  &desc,
		Status:       StatusTodo,
		TotalMinutes: 30,
		AssignedTo:   &assignee,
	}

	patched := TaskPatch{
		Title:       Set("Write more tests"),
		Description: Null[string](),
	}.Apply(task)

	assert.Equal(t, "Write more tests", patched.Title)
	assert.Nil(t, patched.Description)
	assert.Equal(t, StatusTodo, patched.Status)
	assert.Equal(t, 30, patched.TotalMinutes)
	require.NotNil(t, patched.AssignedTo)
	assert.Equal(t, "u2", *patched.AssignedTo)
	assert.Equal(t, "old", *task.Description)
}

func TestTaskPatch_Empty(t *testing.T) {
	assert.True(t, TaskPatch{}.Empty())
	assert.False(t, TaskPatch{Status: Set(StatusDone)}.Empty())
	assert.False(t, TaskPatch{AssignedTo: Null[string]()}.Empty())
}
