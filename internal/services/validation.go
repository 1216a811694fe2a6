package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"taskboard/backend/internal/models"
)

// ValidationErrors carries field-keyed messages so the caller can surface
// them next to the offending form fields.
type ValidationErrors map[string][]string

func (e ValidationErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(e))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// OptionalTime distinguishes an absent JSON field from an explicit null, so a
// partial update can clear a date without touching fields it never mentions.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

func (o OptionalTime) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

type CreateTaskInput struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Priority     string     `json:"priority"`
	Category     string     `json:"category"`
	Tags         []string   `json:"tags"`
	DueDate      *time.Time `json:"due_date"`
	ReminderDate *time.Time `json:"reminder_date"`
}

// UpdateTaskInput is a partial update: nil pointers (and unset OptionalTimes)
// leave the field alone.
type UpdateTaskInput struct {
	Title        *string      `json:"title"`
	Description  *string      `json:"description"`
	Completed    *bool        `json:"completed"`
	Priority     *string      `json:"priority"`
	Category     *string      `json:"category"`
	Tags         []string     `json:"tags"`
	DueDate      OptionalTime `json:"due_date"`
	ReminderDate OptionalTime `json:"reminder_date"`
}

const (
	maxTitleLen    = 255
	maxCategoryLen = 100
	maxTagLen      = 50
)

// ValidateCreateTask enforces the create contract: both dates must be
// strictly in the future at submission time.
func ValidateCreateTask(input CreateTaskInput, now time.Time) ValidationErrors {
	verrs := ValidationErrors{}

	validateTitle(verrs, input.Title)

	if input.Priority == "" {
		verrs.Add("priority", "Priority is required.")
	} else if !models.ValidPriority(input.Priority) {
		verrs.Add("priority", "Priority must be low, medium, or high.")
	}

	validateCategory(verrs, input.Category)
	validateTags(verrs, input.Tags)

	if input.DueDate != nil && !input.DueDate.After(now) {
		verrs.Add("due_date", "Due date must be in the future.")
	}

	if input.ReminderDate != nil {
		if !input.ReminderDate.After(now) {
			verrs.Add("reminder_date", "Reminder date must be in the future.")
		}
		if input.DueDate != nil && input.ReminderDate.After(*input.DueDate) {
			verrs.Add("reminder_date", "Reminder date must be before or equal to due date.")
		}
	}

	return verrs
}

// ValidateUpdateTask enforces the same field constraints on the supplied
// fields, but not the future-date rules: an already-past due date may be
// edited. The reminder/due ordering is checked against the post-update state.
func ValidateUpdateTask(input UpdateTaskInput, existing models.Task) ValidationErrors {
	verrs := ValidationErrors{}

	if input.Title != nil {
		validateTitle(verrs, *input.Title)
	}

	if input.Priority != nil && !models.ValidPriority(*input.Priority) {
		verrs.Add("priority", "Priority must be low, medium, or high.")
	}

	if input.Category != nil {
		validateCategory(verrs, *input.Category)
	}

	validateTags(verrs, input.Tags)

	dueDate := existing.DueDate
	if input.DueDate.Set {
		dueDate = input.DueDate.Value
	}

	reminderDate := existing.ReminderDate
	if input.ReminderDate.Set {
		reminderDate = input.ReminderDate.Value
	}

	if dueDate != nil && reminderDate != nil && reminderDate.After(*dueDate) {
		verrs.Add("reminder_date", "Reminder date must be before or equal to due date.")
	}

	return verrs
}

func validateTitle(verrs ValidationErrors, title string) {
	if title == "" {
		verrs.Add("title", "Task title is required.")
		return
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		verrs.Add("title", "Task title cannot exceed 255 characters.")
	}
}

func validateCategory(verrs ValidationErrors, category string) {
	if utf8.RuneCountInString(category) > maxCategoryLen {
		verrs.Add("category", "Category cannot exceed 100 characters.")
	}
}

func validateTags(verrs ValidationErrors, tags []string) {
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > maxTagLen {
			verrs.Add("tags", "Tags cannot exceed 50 characters.")
			return
		}
	}
}
