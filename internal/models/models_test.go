package models_test

import (
	"testing"
	"time"

	"taskboard/backend/internal/models"

	"github.com/gofrs/uuid"
)

func TestValidPriority(t *testing.T) {
	for _, p := range []string{models.PriorityLow, models.PriorityMedium, models.PriorityHigh} {
		if !models.ValidPriority(p) {
			t.Errorf("Expected %q to be a valid priority", p)
		}
	}

	for _, p := range []string{"", "urgent", "HIGH", "bogus"} {
		if models.ValidPriority(p) {
			t.Errorf("Expected %q to be rejected", p)
		}
	}
}

func TestTask_Defaults(t *testing.T) {
	task := models.Task{
		UserID: uuid.Must(uuid.NewV4()),
		Title:  "Buy milk",
	}

	if task.Completed {
		t.Error("Expected new task to not be completed")
	}

	if task.CompletedAt != nil {
		t.Errorf("Expected CompletedAt to be nil, got %v", task.CompletedAt)
	}

	if task.DueDate != nil || task.ReminderDate != nil {
		t.Error("Expected date fields to default to nil")
	}
}

func TestTask_Fields(t *testing.T) {
	due := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	reminder := due.Add(-2 * time.Hour)

	task := models.Task{
		UserID:       uuid.Must(uuid.NewV4()),
		Title:        "Quarterly report",
		Description:  "Draft and review",
		Priority:     models.PriorityHigh,
		Category:     "work",
		Tags:         []string{"report", "q1"},
		DueDate:      &due,
		ReminderDate: &reminder,
	}

	if task.Priority != models.PriorityHigh {
		t.Errorf("Expected priority %q, got %q", models.PriorityHigh, task.Priority)
	}

	if len(task.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %d", len(task.Tags))
	}

	if !task.ReminderDate.Before(*task.DueDate) {
		t.Error("Expected reminder to fall before the due date")
	}
}

func TestTaskFilters_ZeroValueMeansNoFilter(t *testing.T) {
	var filters models.TaskFilters

	if filters.Search != "" || filters.Priority != "" || filters.Category != "" ||
		filters.Status != "" || filters.DueFilter != "" || filters.Page != "" {
		t.Error("Expected zero-value filters to be empty")
	}
}

func TestToken_Expiry(t *testing.T) {
	token := models.Token{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       uuid.Must(uuid.NewV4()),
		RefreshToken: uuid.Must(uuid.NewV4()),
		ExpiresAt:    time.Now().Add(-time.Minute),
	}

	if !token.ExpiresAt.Before(time.Now()) {
		t.Error("Expected token to be expired")
	}
}
