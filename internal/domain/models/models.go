package models

import "time"

const (
	UserNameMaxLength        = 40
	TaskNameMaxLength        = 100
	TaskDescriptionMinLength = 10
	TaskDescriptionMaxLength = 1000
)

type User struct {
	ID        int       `json:"userId"`
	Name      string    `json:"name"`
	Admin     bool      `json:"admin"`
	GroupID   *int      `json:"groupId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InGroup reports whether the user is a member of groupID.
func (u *User) InGroup(groupID int) bool {
	return u.GroupID != nil && *u.GroupID == groupID
}

type Group struct {
	ID        int        `json:"groupId"`
	OwnerID   int        `json:"ownerId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

type Task struct {
	ID            string    `json:"taskId"`
	Name          string    `json:"name"`
	Status        Status    `json:"status"`
	Description   *string   `json:"description"`
	Priority      Priority  `json:"priority"`
	ReporterID    int       `json:"reporterId"`
	ExecutorIDs   []int     `json:"executorIds"`
	Confidential  bool      `json:"confidential"`
	Deadline      *Date     `json:"deadline"`
	RewardsPoints *int      `json:"rewardsPoints"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (t *Task) IsActive() bool {
	return t.Status.IsActive()
}

func (t *Task) IsCompleted() bool {
	return t.Status.IsCompleted()
}

func (t *Task) IsClosed() bool {
	return t.Status.IsClosed()
}

func (t *Task) HasExecutor(userID int) bool {
	for _, id := range t.ExecutorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsParticipant reports whether userID is the reporter or one of the executors.
func (t *Task) IsParticipant(userID int) bool {
	return t.ReporterID == userID || t.HasExecutor(userID)
}

type CreateUserRequest struct {
	Name    *string `json:"name" validate:"required,notblank,max=40"`
	Admin   *bool   `json:"admin" validate:"required"`
	GroupID *int    `json:"groupId" validate:"omitempty,id"`
}

type UpdateUserRequest struct {
	Name    *string `json:"name" validate:"required,notblank,max=40"`
	Admin   *bool   `json:"admin" validate:"required"`
	GroupID *int    `json:"groupId" validate:"omitempty,id"`
}

type CreateGroupRequest struct {
	OwnerID *int `json:"ownerId" validate:"required,id"`
}

type CreateTaskRequest struct {
	Name         *string `json:"name" validate:"required,notblank,max=100"`
	Description  *string `json:"description" validate:"omitempty,min=10,max=1000"`
	Priority     *string `json:"priority" validate:"required,notblank,priority"`
	ReporterID   *int    `json:"reporterId" validate:"required,id"`
	ExecutorIDs  []int   `json:"executorIds" validate:"omitempty,dive,id"`
	Confidential *bool   `json:"confidential" validate:"required"`
	Deadline     *Date   `json:"deadline" validate:"omitempty,notpast"`
}

type UpdateTaskRequest struct {
	Name          *string `json:"name" validate:"required,notblank,max=100"`
	Description   *string `json:"description" validate:"omitempty,min=10,max=1000"`
	Status        *string `json:"status" validate:"required,notblank,status"`
	Priority      *string `json:"priority" validate:"required,notblank,priority"`
	ExecutorIDs   []int   `json:"executorIds" validate:"omitempty,dive,id"`
	Confidential  *bool   `json:"confidential" validate:"required"`
	Deadline      *Date   `json:"deadline" validate:"omitempty,notpast"`
	RewardsPoints *int    `json:"rewardsPoints" validate:"omitempty,min=0"`
}
