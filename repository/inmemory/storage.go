package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"familytasks/internal/domain/errors"
	"familytasks/internal/domain/models"

	"github.com/google/uuid"
)

// Storage keeps everything in process memory. Values are copied on the way
// in and out, so callers never share state with the store.
type Storage struct {
	mu          sync.RWMutex
	users       map[int]models.User
	groups      map[int]models.Group
	tasks       map[string]models.Task
	nextUserID  int
	nextGroupID int
	lastCreated time.Time
	now         func() time.Time
}

func NewStorage() *Storage {
	return &Storage{
		users:  make(map[int]models.User),
		groups: make(map[int]models.Group),
		tasks:  make(map[string]models.Task),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Storage) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.GroupID != nil {
		if _, ok := s.groups[*user.GroupID]; !ok {
			return errors.ErrGroupNotFound
		}
	}

	s.nextUserID++
	now := s.now()
	user.ID = s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = cloneUser(*user)
	return nil
}

func (s *Storage) GetUserByID(_ context.Context, id int) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	u := cloneUser(user)
	return &u, nil
}

func (s *Storage) GetUsersByGroupID(_ context.Context, groupID int) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []models.User{}
	for _, u := range s.users {
		if u.InGroup(groupID) {
			users = append(users, cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Storage) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return errors.ErrUserNotFound
	}
	if user.GroupID != nil {
		if _, ok := s.groups[*user.GroupID]; !ok {
			return errors.ErrGroupNotFound
		}
	}

	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = s.now()
	s.users[user.ID] = cloneUser(*user)
	return nil
}

func (s *Storage) CreateGroup(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.users[group.OwnerID]
	if !ok {
		return errors.ErrUserNotFound
	}
	for _, g := range s.groups {
		if g.OwnerID == group.OwnerID {
			return errors.ErrConflict
		}
	}
	if owner.GroupID != nil {
		return errors.ErrUserHasGroup
	}

	s.nextGroupID++
	now := s.now()
	group.ID = s.nextGroupID
	group.CreatedAt = now
	group.UpdatedAt = now
	group.DeletedAt = nil
	s.groups[group.ID] = *group

	groupID := group.ID
	owner.GroupID = &groupID
	owner.UpdatedAt = now
	s.users[owner.ID] = owner
	return nil
}

func (s *Storage) GetGroupByID(_ context.Context, id int) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[id]
	if !ok {
		return nil, errors.ErrGroupNotFound
	}
	return &group, nil
}

func (s *Storage) GetGroupByOwnerID(_ context.Context, ownerID int) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.groups {
		if g.OwnerID == ownerID {
			group := g
			return &group, nil
		}
	}
	return nil, errors.ErrGroupNotFound
}

func (s *Storage) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[task.ReporterID]; !ok {
		return errors.ErrUserNotFound
	}

	// creation times stay strictly increasing so listings have a total order
	now := s.now()
	if !now.After(s.lastCreated) {
		now = s.lastCreated.Add(time.Nanosecond)
	}
	s.lastCreated = now

	task.ID = uuid.New().String()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.ExecutorIDs == nil {
		task.ExecutorIDs = []int{}
	}
	s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (s *Storage) GetTaskByID(_ context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	t := cloneTask(task)
	return &t, nil
}

func (s *Storage) GetTasksByGroupID(_ context.Context, groupID int) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []models.Task{}
	for _, t := range s.tasks {
		reporter, ok := s.users[t.ReporterID]
		if ok && reporter.InGroup(groupID) {
			tasks = append(tasks, cloneTask(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (s *Storage) UpdateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tasks[task.ID]
	if !ok {
		return errors.ErrNotFound
	}

	task.ReporterID = stored.ReporterID
	task.CreatedAt = stored.CreatedAt
	task.UpdatedAt = s.now()
	if task.ExecutorIDs == nil {
		task.ExecutorIDs = []int{}
	}
	s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func cloneUser(u models.User) models.User {
	if u.GroupID != nil {
		g := *u.GroupID
		u.GroupID = &g
	}
	return u
}

func cloneTask(t models.Task) models.Task {
	t.ExecutorIDs = append([]int{}, t.ExecutorIDs...)
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	if t.RewardsPoints != nil {
		p := *t.RewardsPoints
		t.RewardsPoints = &p
	}
	return t
}
