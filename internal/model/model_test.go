package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{"valid", CreateInput{Title: "Buy milk"}, ""},
		{"blank title", CreateInput{Title: "   "}, "title"},
		{"title too long", CreateInput{Title: strings.Repeat("a", 201)}, "title"},
		{"title at limit", CreateInput{Title: strings.Repeat("é", 200)}, ""},
		{"description too long", CreateInput{Title: "x", Description: strings.Repeat("d", 1001)}, "description"},
		{"bad priority", CreateInput{Title: "x", Priority: "urgent"}, "priority"},
		{"bad status", CreateInput{Title: "x", Status: "blocked"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateCreate(tt.in)
			if tt.field == "" {
				assert.Nil(t, v)
				return
			}
			require.NotNil(t, v)
			assert.NotEmpty(t, v.Field(tt.field))
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	assert.Equal(t, "no fields to update", ValidateUpdate(UpdateInput{}).Field("task"))
	assert.Nil(t, ValidateUpdate(UpdateInput{Status: Ptr(StatusDone)}))
	assert.Nil(t, ValidateUpdate(UpdateInput{Description: Clear[string]()}))
	assert.NotEmpty(t, ValidateUpdate(UpdateInput{Title: Ptr(" ")}).Field("title"))
}

func TestCreateInputRecordDefaults(t *testing.T) {
	rec := CreateInput{Title: "  Write report ", Description: "  "}.Record("u1")

	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "Write report", rec.Title)
	assert.Nil(t, rec.Description)
	assert.Equal(t, PriorityMedium, rec.Priority)
	assert.Equal(t, StatusTodo, rec.Status)
}

func TestUpdateInputNormalizeAndApply(t *testing.T) {
	desc := "old"
	due := Date{2025, time.March, 4}
	task := Task{ID: "t1", Title: "a", Description: &desc, DueDate: &due, Priority: PriorityLow, Status: StatusTodo}

	u := UpdateInput{Description: Set("   "), Status: Ptr(StatusDone)}.Normalize()
	require.True(t, u.Description.Present())
	assert.Nil(t, u.Description.Value())

	got := u.Apply(task)
	assert.Nil(t, got.Description)
	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, &due, got.DueDate)
	assert.Equal(t, PriorityLow, got.Priority)
}

func TestDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-02-29"`, string(b))

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, d, scanned)
	require.NoError(t, scanned.Scan([]byte("2024-02-29T00:00:00Z")))
	assert.Equal(t, d, scanned)

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}

func TestCycles(t *testing.T) {
	assert.Equal(t, StatusInProgress, StatusTodo.Next())
	assert.Equal(t, StatusTodo, StatusDone.Next())
	assert.Equal(t, PriorityLow, PriorityHigh.Next())

	_, err := ParseStatus("doing")
	assert.Error(t, err)
	p, err := ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)
}
