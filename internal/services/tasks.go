package services

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"taskboard/backend/internal/clock"
	"taskboard/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskPageSize is the fixed page size of the listing.
const TaskPageSize = 20

// ErrForbidden is returned when the requester is not the task's owner. The
// handler surfaces it as a generic denial without task details.
var ErrForbidden = errors.New("forbidden")

type TaskService interface {
	ListTasks(db *gorm.DB, userID uuid.UUID, filters models.TaskFilters) (models.TaskPage, error)
	GetStats(db *gorm.DB, userID uuid.UUID) (models.TaskStats, error)
	GetCategories(db *gorm.DB, userID uuid.UUID) ([]string, error)
	GetTask(db *gorm.DB, userID uuid.UUID, id uint) (models.Task, error)
	CreateTask(db *gorm.DB, userID uuid.UUID, input CreateTaskInput) (models.Task, error)
	UpdateTask(db *gorm.DB, userID uuid.UUID, id uint, input UpdateTaskInput) (models.Task, error)
	DeleteTask(db *gorm.DB, userID uuid.UUID, id uint) error
}

type TaskServiceImpl struct {
	clock clock.Clock
}

func NewTaskService(clk clock.Clock) *TaskServiceImpl {
	if clk == nil {
		clk = clock.System()
	}
	return &TaskServiceImpl{clock: clk}
}

// ListTasks returns the page of the owner's tasks matching the conjunction of
// the supplied filters, newest first. Unknown enum values are ignored.
func (s *TaskServiceImpl) ListTasks(db *gorm.DB, userID uuid.UUID, filters models.TaskFilters) (models.TaskPage, error) {
	page := models.TaskPage{
		Page:    parsePage(filters.Page),
		PerPage: TaskPageSize,
	}

	filtered := func() *gorm.DB {
		return s.applyFilters(db.Model(&models.Task{}).Where("user_id = ?", userID), filters)
	}

	if err := filtered().Count(&page.Total).Error; err != nil {
		return page, err
	}

	page.LastPage = int(math.Ceil(float64(page.Total) / float64(TaskPageSize)))
	if page.LastPage < 1 {
		page.LastPage = 1
	}

	err := filtered().
		Order("created_at DESC, id DESC").
		Limit(TaskPageSize).
		Offset((page.Page - 1) * TaskPageSize).
		Find(&page.Tasks).Error
	if err != nil {
		return page, err
	}

	if page.Tasks == nil {
		page.Tasks = []models.Task{}
	}

	return page, nil
}

func (s *TaskServiceImpl) applyFilters(query *gorm.DB, filters models.TaskFilters) *gorm.DB {
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	if models.ValidPriority(filters.Priority) {
		query = query.Where("priority = ?", filters.Priority)
	}

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}

	switch filters.Status {
	case "completed":
		query = query.Where("completed = ?", true)
	case "pending":
		query = query.Where("completed = ?", false)
	}

	now := s.clock.Now()
	switch filters.DueFilter {
	case "overdue":
		query = query.Where("due_date < ? AND completed = ?", now, false)
	case "due_today":
		start, end := dayBounds(now)
		query = query.Where("due_date >= ? AND due_date < ? AND completed = ?", start, end, false)
	case "due_soon":
		query = query.Where("due_date >= ? AND due_date <= ? AND completed = ?", now, now.Add(24*time.Hour), false)
	}

	return query
}

// GetStats computes the owner-wide counts fresh on every call; it is
// deliberately independent of any listing filters.
func (s *TaskServiceImpl) GetStats(db *gorm.DB, userID uuid.UUID) (models.TaskStats, error) {
	var stats models.TaskStats

	owned := func() *gorm.DB {
		return db.Model(&models.Task{}).Where("user_id = ?", userID)
	}

	if err := owned().Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := owned().Where("completed = ?", true).Count(&stats.Completed).Error; err != nil {
		return stats, err
	}

	if err := owned().Where("completed = ?", false).Count(&stats.Pending).Error; err != nil {
		return stats, err
	}

	err := owned().
		Where("priority = ? AND completed = ?", models.PriorityHigh, false).
		Count(&stats.HighPriority).Error
	if err != nil {
		return stats, err
	}

	start, end := dayBounds(s.clock.Now())
	err = owned().
		Where("due_date >= ? AND due_date < ? AND completed = ?", start, end, false).
		Count(&stats.DueToday).Error
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// GetCategories returns the owner's distinct non-empty category values.
func (s *TaskServiceImpl) GetCategories(db *gorm.DB, userID uuid.UUID) ([]string, error) {
	var categories []string
	err := db.Model(&models.Task{}).
		Where("user_id = ? AND category <> ''", userID).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}

	if categories == nil {
		categories = []string{}
	}

	return categories, nil
}

func (s *TaskServiceImpl) GetTask(db *gorm.DB, userID uuid.UUID, id uint) (models.Task, error) {
	var task models.Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		return models.Task{}, err
	}

	if task.UserID != userID {
		return models.Task{}, ErrForbidden
	}

	return task, nil
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, userID uuid.UUID, input CreateTaskInput) (models.Task, error) {
	now := s.clock.Now()
	if verrs := ValidateCreateTask(input, now); len(verrs) > 0 {
		return models.Task{}, verrs
	}

	task := models.Task{
		UserID:       userID,
		Title:        input.Title,
		Description:  input.Description,
		Priority:     input.Priority,
		Category:     input.Category,
		Tags:         input.Tags,
		DueDate:      input.DueDate,
		ReminderDate: input.ReminderDate,
		Completed:    false,
	}

	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, userID uuid.UUID, id uint, input UpdateTaskInput) (models.Task, error) {
	task, err := s.GetTask(db, userID, id)
	if err != nil {
		return models.Task{}, err
	}

	if verrs := ValidateUpdateTask(input, task); len(verrs) > 0 {
		return models.Task{}, verrs
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Category != nil {
		task.Category = *input.Category
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}
	if input.DueDate.Set {
		task.DueDate = input.DueDate.Value
	}
	if input.ReminderDate.Set {
		task.ReminderDate = input.ReminderDate.Value
	}

	// The completion timestamp follows the completed flag: set on true,
	// cleared on false, untouched when the flag is absent.
	if input.Completed != nil {
		task.Completed = *input.Completed
		if *input.Completed {
			now := s.clock.Now()
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}

	// Select("*") so false/nil fields are written too; last write wins on
	// concurrent updates to the same task.
	if err := db.Model(&task).Select("*").Omit("id", "user_id", "created_at").Updates(&task).Error; err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, userID uuid.UUID, id uint) error {
	task, err := s.GetTask(db, userID, id)
	if err != nil {
		return err
	}

	return db.Delete(&models.Task{}, task.ID).Error
}

// parsePage is permissive like the enum filters: anything that is not a
// positive integer becomes page 1.
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// dayBounds returns the server-local calendar day containing t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	year, month, day := t.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
