// Package visibility decides which tasks a user may see.
//
// Candidate tasks always come from the requesting user's group: a user
// without a group sees nothing through listings. Confidential tasks are
// visible to their reporter and executors only, and a task that is not
// visible must be reported exactly like a task that does not exist.
package visibility

import (
	"familytasks/internal/domain/models"
)

type predicate func(user *models.User, task *models.Task) bool

var filters = map[models.Filter]predicate{
	models.FilterReporterActive: func(u *models.User, t *models.Task) bool {
		return t.ReporterID == u.ID && t.IsActive()
	},
	models.FilterExecutorActive: func(u *models.User, t *models.Task) bool {
		return t.HasExecutor(u.ID) && t.IsActive()
	},
	models.FilterReporterCompleted: func(u *models.User, t *models.Task) bool {
		return t.ReporterID == u.ID && t.IsCompleted()
	},
	models.FilterExecutorCompleted: func(u *models.User, t *models.Task) bool {
		return t.HasExecutor(u.ID) && t.IsCompleted()
	},
	models.FilterAllAvailable: func(u *models.User, t *models.Task) bool {
		return true
	},
	models.FilterAllClosed: func(u *models.User, t *models.Task) bool {
		return t.IsClosed()
	},
}

// Matches reports whether task passes filter for user. Unknown filters match
// nothing.
func Matches(user *models.User, task *models.Task, filter models.Filter) bool {
	p, ok := filters[filter]
	if !ok {
		return false
	}
	if task.Confidential && !task.IsParticipant(user.ID) {
		return false
	}
	return p(user, task)
}

// Filter returns the tasks of the user's group that pass filter, keeping
// the input order. groupTasks must be the tasks reported by members of the
// user's group.
func Filter(user *models.User, groupTasks []models.Task, filter models.Filter) []models.Task {
	result := []models.Task{}
	if user == nil || user.GroupID == nil {
		return result
	}
	for i := range groupTasks {
		if Matches(user, &groupTasks[i], filter) {
			result = append(result, groupTasks[i])
		}
	}
	return result
}

// CanView decides direct access to a single task. reporter is the task's
// reporter as currently stored.
func CanView(user *models.User, task *models.Task, reporter *models.User) bool {
	if task.IsParticipant(user.ID) {
		return true
	}
	if task.Confidential {
		return false
	}
	return sameGroup(user, reporter)
}

// CanAssign reports whether executor may work on tasks reported by reporter.
func CanAssign(reporter, executor *models.User) bool {
	if reporter.ID == executor.ID {
		return true
	}
	return sameGroup(reporter, executor)
}

func sameGroup(a, b *models.User) bool {
	if a == nil || b == nil || a.GroupID == nil || b.GroupID == nil {
		return false
	}
	return *a.GroupID == *b.GroupID
}
