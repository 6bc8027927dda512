package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsStaff(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleStaff, true},
		{RoleTutor, false},
		{Role("Staff"), true},
		{RoleStudent, false},
		{Role(""), false},
		{Role("mentor"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.IsStaff())
			assert.Equal(t, tt.want, Answer{Role: tt.role}.IsStaff())
		})
	}
}

func TestThread_CategoryPath(t *testing.T) {
	tests := []struct {
		name   string
		thread Thread
		want   string
	}{
		{"category only", Thread{Category: "General"}, "General"},
		{"with subcategory", Thread{Category: "Homework", Subcategory: "HW1"}, "Homework-HW1"},
		{"all levels", Thread{Category: "Homework", Subcategory: "HW1", Subsubcategory: "Q2"}, "Homework-HW1-Q2"},
		{"skips empty middle level", Thread{Category: "Homework", Subsubcategory: "Q2"}, "Homework-Q2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.thread.CategoryPath())
		})
	}
}

func TestThread_PostedOnWeekend(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	// Saturday 02:00 UTC is still Friday evening in New York.
	sat := Thread{CreatedAt: time.Date(2024, 3, 2, 2, 0, 0, 0, time.UTC)}
	assert.True(t, sat.PostedOnWeekend(time.UTC))
	assert.False(t, sat.PostedOnWeekend(ny))

	mon := Thread{CreatedAt: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	assert.False(t, mon.PostedOnWeekend(nil))
}
