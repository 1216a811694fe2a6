package services

import (
	"fmt"
	"strings"
	"time"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	taskCacheTTL = 30 * time.Minute
	listCacheTTL = 5 * time.Minute
)

// CachedTaskService decorates a TaskService with read-through caching of
// single tasks and per-user list pages. Stats and categories always hit the
// store: their counts must reflect the task set of the current request.
type CachedTaskService struct {
	taskService TaskService
	cache       cache.Cache
}

func NewCachedTaskService(taskService TaskService, cacheInstance cache.Cache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, userID uuid.UUID, filters models.TaskFilters) (models.TaskPage, error) {
	key := listCacheKey(userID, filters)

	var cached models.TaskPage
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	page, err := s.taskService.ListTasks(db, userID, filters)
	if err != nil {
		return page, err
	}

	s.cache.Set(key, page, listCacheTTL)

	return page, nil
}

func (s *CachedTaskService) GetStats(db *gorm.DB, userID uuid.UUID) (models.TaskStats, error) {
	return s.taskService.GetStats(db, userID)
}

func (s *CachedTaskService) GetCategories(db *gorm.DB, userID uuid.UUID) ([]string, error) {
	return s.taskService.GetCategories(db, userID)
}

func (s *CachedTaskService) GetTask(db *gorm.DB, userID uuid.UUID, id uint) (models.Task, error) {
	key := taskCacheKey(id)

	var cached models.Task
	if err := s.cache.Get(key, &cached); err == nil {
		// The ownership check must hold for cached reads too.
		if cached.UserID != userID {
			return models.Task{}, ErrForbidden
		}
		return cached, nil
	}

	task, err := s.taskService.GetTask(db, userID, id)
	if err != nil {
		return task, err
	}

	s.cache.Set(key, task, taskCacheTTL)

	return task, nil
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, userID uuid.UUID, input CreateTaskInput) (models.Task, error) {
	task, err := s.taskService.CreateTask(db, userID, input)
	if err != nil {
		return task, err
	}

	s.cache.Set(taskCacheKey(task.ID), task, taskCacheTTL)
	s.invalidateLists(userID)

	return task, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, userID uuid.UUID, id uint, input UpdateTaskInput) (models.Task, error) {
	task, err := s.taskService.UpdateTask(db, userID, id, input)
	if err != nil {
		return task, err
	}

	s.cache.Set(taskCacheKey(id), task, taskCacheTTL)
	s.invalidateLists(userID)

	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, userID uuid.UUID, id uint) error {
	if err := s.taskService.DeleteTask(db, userID, id); err != nil {
		return err
	}

	s.cache.Delete(taskCacheKey(id))
	s.invalidateLists(userID)

	return nil
}

func (s *CachedTaskService) invalidateLists(userID uuid.UUID) {
	s.cache.DeletePattern(fmt.Sprintf("user_tasks:%s:*", userID))
}

func taskCacheKey(id uint) string {
	return fmt.Sprintf("task:%d", id)
}

func listCacheKey(userID uuid.UUID, filters models.TaskFilters) string {
	parts := []string{
		filters.Search,
		filters.Priority,
		filters.Category,
		filters.Status,
		filters.DueFilter,
		filters.Page,
	}
	return fmt.Sprintf("user_tasks:%s:%s", userID, strings.Join(parts, "|"))
}
