package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidPriority reports whether p is one of the known priority values.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title        string     `json:"title" gorm:"size:255;not null"`
	Description  string     `json:"description"`
	Completed    bool       `json:"completed" gorm:"not null;default:false"`
	Priority     string     `json:"priority" gorm:"size:10;not null;default:'medium'"`
	Category     string     `json:"category" gorm:"size:100"`
	Tags         []string   `json:"tags" gorm:"serializer:json"`
	DueDate      *time.Time `json:"due_date"`
	ReminderDate *time.Time `json:"reminder_date"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TaskFilters holds the optional listing filters. Zero values mean the filter
// is not applied; unknown enum values are ignored rather than rejected.
type TaskFilters struct {
	Search    string `form:"search" json:"search"`
	Priority  string `form:"priority" json:"priority"`
	Category  string `form:"category" json:"category"`
	Status    string `form:"status" json:"status"`
	DueFilter string `form:"due_filter" json:"due_filter"`
	Page      string `form:"page" json:"page"`
}

// TaskStats are owner-wide counts, computed over all of the owner's tasks
// regardless of any active listing filters.
type TaskStats struct {
	Total        int64 `json:"total"`
	Completed    int64 `json:"completed"`
	Pending      int64 `json:"pending"`
	HighPriority int64 `json:"high_priority"`
	DueToday     int64 `json:"due_today"`
}

// TaskPage is one fixed-size page of a filtered listing.
type TaskPage struct {
	Tasks    []Task `json:"data"`
	Page     int    `json:"current_page"`
	LastPage int    `json:"last_page"`
	PerPage  int    `json:"per_page"`
	Total    int64  `json:"total"`
}
