package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"familytasks/internal/domain/models"
	inmemory "familytasks/repository/inmemory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inDays(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func seedTask(t *testing.T, store *inmemory.Storage, task models.Task) models.Task {
	t.Helper()
	require.NoError(t, store.CreateTask(context.Background(), &task))
	return task
}

// chores are the tasks of the family fixture:
//
//	trash   mom -> kid   TO_DO        public
//	gift    mom -> dad   COMPLETED    confidential
//	diary   dad -> kid   IN_PROGRESS  confidential
//	room    kid          TO_DO        public
//	dishes  kid -> mom   COMPLETED    public
//	garage  dad          CANCELLED    public
//	fence   outsider     TO_DO        public
type chores struct {
	trash, gift, diary, room, dishes, garage, fence models.Task
}

func newChores(t *testing.T, store *inmemory.Storage, f family) chores {
	t.Helper()
	return chores{
		trash:  seedTask(t, store, models.Task{Name: "trash", Status: models.StatusToDo, Priority: models.PriorityLow, ReporterID: f.mom.ID, ExecutorIDs: []int{f.kid.ID}}),
		gift:   seedTask(t, store, models.Task{Name: "gift", Status: models.StatusCompleted, Priority: models.PriorityHigh, ReporterID: f.mom.ID, ExecutorIDs: []int{f.dad.ID}, Confidential: true}),
		diary:  seedTask(t, store, models.Task{Name: "diary", Status: models.StatusInProgress, Priority: models.PriorityMedium, ReporterID: f.dad.ID, ExecutorIDs: []int{f.kid.ID}, Confidential: true}),
		room:   seedTask(t, store, models.Task{Name: "room", Status: models.StatusToDo, Priority: models.PriorityLow, ReporterID: f.kid.ID}),
		dishes: seedTask(t, store, models.Task{Name: "dishes", Status: models.StatusCompleted, Priority: models.PriorityLow, ReporterID: f.kid.ID, ExecutorIDs: []int{f.mom.ID}}),
		garage: seedTask(t, store, models.Task{Name: "garage", Status: models.StatusCancelled, Priority: models.PriorityMedium, ReporterID: f.dad.ID}),
		fence:  seedTask(t, store, models.Task{Name: "fence", Status: models.StatusToDo, Priority: models.PriorityHigh, ReporterID: f.outsider.ID}),
	}
}

func taskNames(tasks []models.Task) []string {
	names := make([]string, 0, len(tasks))
	for _, task := range tasks {
		names = append(names, task.Name)
	}
	return names
}

func TestCreateTaskScenario(t *testing.T) {
	api, _ := newTestAPI(t, "")

	w := perform(api, http.MethodPost, "/users", map[string]any{"name": "A", "admin": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	userA := decodeBody[models.User](t, w)
	assert.Nil(t, userA.GroupID)

	w = perform(api, http.MethodPost, "/groups", map[string]any{"ownerId": userA.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	group := decodeBody[models.Group](t, w)
	assert.Equal(t, userA.ID, group.OwnerID)

	w = perform(api, http.MethodPost, "/tasks", map[string]any{
		"name":         "Buy groceries",
		"reporterId":   userA.ID,
		"priority":     "LOW",
		"confidential": false,
		"deadline":     inDays(7),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"executorIds":[]`)

	task := decodeBody[models.Task](t, w)
	assert.Equal(t, models.StatusToDo, task.Status)
	assert.NotEmpty(t, task.ID)
	assert.Empty(t, task.ExecutorIDs)
	assert.Nil(t, task.RewardsPoints)
	require.NotNil(t, task.Deadline)
	assert.Equal(t, inDays(7), task.Deadline.String())

	w = perform(api, http.MethodGet, fmt.Sprintf("/tasks?userId=%d&filter=ALL_AVAILABLE", userA.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Buy groceries"}, taskNames(decodeBody[[]models.Task](t, w)))
}

func TestCreateTask(t *testing.T) {
	base := func(f family) map[string]any {
		return map[string]any{
			"name":         "Walk the dog",
			"description":  "Twice around the park",
			"priority":     "MEDIUM",
			"reporterId":   f.mom.ID,
			"executorIds":  []int{f.kid.ID},
			"confidential": false,
			"deadline":     inDays(3),
		}
	}

	tests := []struct {
		name   string
		mutate func(body map[string]any, f family)
		want   struct {
			statusCode int
			message    func(f family) string
			executors  func(f family) []int
		}
	}{
		{
			name:   "valid task",
			mutate: func(map[string]any, family) {},
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusCreated,
				executors:  func(f family) []int { return []int{f.kid.ID} },
			},
		},
		{
			name: "optional fields omitted",
			mutate: func(b map[string]any, _ family) {
				delete(b, "description")
				delete(b, "executorIds")
				delete(b, "deadline")
			},
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusCreated,
				executors:  func(family) []int { return []int{} },
			},
		},
		{
			name:   "status in the payload is ignored",
			mutate: func(b map[string]any, _ family) { b["status"] = "COMPLETED" },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusCreated,
				executors:  func(f family) []int { return []int{f.kid.ID} },
			},
		},
		{
			name:   "duplicate executors are collapsed",
			mutate: func(b map[string]any, f family) { b["executorIds"] = []int{f.kid.ID, f.dad.ID, f.kid.ID} },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusCreated,
				executors:  func(f family) []int { return []int{f.dad.ID, f.kid.ID} },
			},
		},
		{
			name: "user without group assigns themselves",
			mutate: func(b map[string]any, f family) {
				b["reporterId"] = f.loner.ID
				b["executorIds"] = []int{f.loner.ID}
			},
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusCreated,
				executors:  func(f family) []int { return []int{f.loner.ID} },
			},
		},
		{
			name:   "name of exactly 100 characters",
			mutate: func(b map[string]any, _ family) { b["name"] = strings.Repeat("n", models.TaskNameMaxLength) },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusCreated,
				executors:  func(f family) []int { return []int{f.kid.ID} },
			},
		},
		{
			name:   "name too long",
			mutate: func(b map[string]any, _ family) { b["name"] = strings.Repeat("n", models.TaskNameMaxLength+1) },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "A task name length shouldn't be more than 100." },
			},
		},
		{
			name:   "missing name",
			mutate: func(b map[string]any, _ family) { delete(b, "name") },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "A task name isn't specified." },
			},
		},
		{
			name:   "empty name",
			mutate: func(b map[string]any, _ family) { b["name"] = "" },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "A task name isn't specified." },
			},
		},
		{
			name:   "description too short",
			mutate: func(b map[string]any, _ family) { b["description"] = "short" },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "A task description length shouldn't be less than 10." },
			},
		},
		{
			name: "description too long",
			mutate: func(b map[string]any, _ family) {
				b["description"] = strings.Repeat("d", models.TaskDescriptionMaxLength+1)
			},
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "A task description length shouldn't be more than 1000." },
			},
		},
		{
			name:   "missing priority",
			mutate: func(b map[string]any, _ family) { delete(b, "priority") },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "Priority must be specified" },
			},
		},
		{
			name:   "unknown priority",
			mutate: func(b map[string]any, _ family) { b["priority"] = "URGENT" },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "Invalid priority value. Please enter a valid priority." },
			},
		},
		{
			name:   "missing reporter",
			mutate: func(b map[string]any, _ family) { delete(b, "reporterId") },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "Reporter must be required" },
			},
		},
		{
			name:   "missing confidential flag",
			mutate: func(b map[string]any, _ family) { delete(b, "confidential") },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "A task confidential status isn't specified." },
			},
		},
		{
			name:   "deadline in the past",
			mutate: func(b map[string]any, _ family) { b["deadline"] = "2000-01-01" },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "Date must be in future" },
			},
		},
		{
			name:   "deadline in another format",
			mutate: func(b map[string]any, _ family) { b["deadline"] = "01/02/2999" },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "Incorrect request format." },
			},
		},
		{
			name:   "unknown reporter",
			mutate: func(b map[string]any, _ family) { b["reporterId"] = 999 },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "User with id 999 doesn't exist" },
			},
		},
		{
			name:   "unknown executor",
			mutate: func(b map[string]any, _ family) { b["executorIds"] = []int{999} },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "User with id 999 doesn't exist" },
			},
		},
		{
			name:   "reporter id wider than 32 bits",
			mutate: func(b map[string]any, _ family) { b["reporterId"] = 3000000000 },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "Id has invalid format." },
			},
		},
		{
			name:   "executor id wider than 32 bits",
			mutate: func(b map[string]any, f family) { b["executorIds"] = []int{f.kid.ID, 3000000000} },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family) string { return "Id has invalid format." },
			},
		},
		{
			name:   "executor from another group",
			mutate: func(b map[string]any, f family) { b["executorIds"] = []int{f.kid.ID, f.outsider.ID} },
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message: func(f family) string {
					return fmt.Sprintf("User with id %d isn't a member of the reporter's group.", f.outsider.ID)
				},
			},
		},
		{
			name: "reporter without group assigns someone else",
			mutate: func(b map[string]any, f family) {
				b["reporterId"] = f.loner.ID
				b["executorIds"] = []int{f.kid.ID}
			},
			want: struct {
				statusCode int
				message    func(f family) string
				executors  func(f family) []int
			}{
				statusCode: http.StatusBadRequest,
				message: func(f family) string {
					return fmt.Sprintf("User with id %d isn't a member of the reporter's group.", f.kid.ID)
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, store := newTestAPI(t, "")
			f := newFamily(t, store)
			body := base(f)
			tt.mutate(body, f)

			w := perform(api, http.MethodPost, "/tasks", body)

			require.Equal(t, tt.want.statusCode, w.Code, w.Body.String())
			if tt.want.statusCode != http.StatusCreated {
				assert.Equal(t, tt.want.message(f), errorMessage(t, w))
				return
			}

			task := decodeBody[models.Task](t, w)
			_, err := uuid.Parse(task.ID)
			assert.NoError(t, err)
			assert.Equal(t, models.StatusToDo, task.Status)
			assert.Equal(t, tt.want.executors(f), task.ExecutorIDs)

			stored, err := store.GetTaskByID(context.Background(), task.ID)
			require.NoError(t, err)
			assert.Equal(t, task.Name, stored.Name)
			assert.Equal(t, task.ExecutorIDs, stored.ExecutorIDs)
		})
	}
}

func TestGetTasks(t *testing.T) {
	api, store := newTestAPI(t, "")
	f := newFamily(t, store)
	newChores(t, store, f)

	filters := []models.Filter{
		models.FilterReporterActive,
		models.FilterExecutorActive,
		models.FilterReporterCompleted,
		models.FilterExecutorCompleted,
		models.FilterAllAvailable,
		models.FilterAllClosed,
	}

	tests := []struct {
		name   string
		user   func(f family) models.User
		filter models.Filter
		want   []string
	}{
		{"kid reports active", func(f family) models.User { return f.kid }, models.FilterReporterActive, []string{"room"}},
		{"kid executes active", func(f family) models.User { return f.kid }, models.FilterExecutorActive, []string{"trash", "diary"}},
		{"kid reports completed", func(f family) models.User { return f.kid }, models.FilterReporterCompleted, []string{"dishes"}},
		{"kid executes completed", func(f family) models.User { return f.kid }, models.FilterExecutorCompleted, []string{}},
		{"kid sees everything but mom's secret", func(f family) models.User { return f.kid }, models.FilterAllAvailable, []string{"trash", "diary", "room", "dishes", "garage"}},
		{"kid sees closed", func(f family) models.User { return f.kid }, models.FilterAllClosed, []string{"garage"}},
		{"mom executes completed", func(f family) models.User { return f.mom }, models.FilterExecutorCompleted, []string{"dishes"}},
		{"mom reports completed secret", func(f family) models.User { return f.mom }, models.FilterReporterCompleted, []string{"gift"}},
		{"mom sees everything but dad's secret", func(f family) models.User { return f.mom }, models.FilterAllAvailable, []string{"trash", "gift", "room", "dishes", "garage"}},
		{"dad sees both secrets", func(f family) models.User { return f.dad }, models.FilterAllAvailable, []string{"trash", "gift", "diary", "room", "dishes", "garage"}},
		{"other group sees only its own", func(f family) models.User { return f.outsider }, models.FilterAllAvailable, []string{"fence"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.user(f)
			w := perform(api, http.MethodGet, fmt.Sprintf("/tasks?userId=%d&filter=%s", user.ID, tt.filter), nil)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.ElementsMatch(t, tt.want, taskNames(decodeBody[[]models.Task](t, w)))
		})
	}

	t.Run("user without group sees nothing for every filter", func(t *testing.T) {
		for _, filter := range filters {
			w := perform(api, http.MethodGet, fmt.Sprintf("/tasks?userId=%d&filter=%s", f.loner.ID, filter), nil)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.JSONEq(t, `[]`, w.Body.String(), string(filter))
		}
	})
}

func TestGetTasksErrors(t *testing.T) {
	api, store := newTestAPI(t, "")
	f := newFamily(t, store)

	tests := []struct {
		name string
		path string
		want struct {
			statusCode int
			message    string
		}
	}{
		{
			name: "user not specified",
			path: "/tasks?filter=ALL_AVAILABLE",
			want: struct {
				statusCode int
				message    string
			}{http.StatusBadRequest, "A user isn't specified."},
		},
		{
			name: "non numeric user",
			path: "/tasks?userId=abc&filter=ALL_AVAILABLE",
			want: struct {
				statusCode int
				message    string
			}{http.StatusBadRequest, "Id has invalid format."},
		},
		{
			name: "unknown user",
			path: "/tasks?userId=999&filter=ALL_AVAILABLE",
			want: struct {
				statusCode int
				message    string
			}{http.StatusBadRequest, "User with id 999 doesn't exist"},
		},
		{
			name: "filter not specified",
			path: fmt.Sprintf("/tasks?userId=%d", f.kid.ID),
			want: struct {
				statusCode int
				message    string
			}{http.StatusBadRequest, "A task's filter isn't specified."},
		},
		{
			name: "unknown filter",
			path: fmt.Sprintf("/tasks?userId=%d&filter=EVERYTHING", f.kid.ID),
			want: struct {
				statusCode int
				message    string
			}{http.StatusBadRequest, "Invalid filter value. Please enter a valid filter."},
		},
		{
			name: "unknown filter for user without group",
			path: fmt.Sprintf("/tasks?userId=%d&filter=all_available", f.loner.ID),
			want: struct {
				statusCode int
				message    string
			}{http.StatusBadRequest, "Invalid filter value. Please enter a valid filter."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(api, http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.want.statusCode, w.Code)
			assert.Equal(t, tt.want.message, errorMessage(t, w))
		})
	}
}

func TestGetTaskByID(t *testing.T) {
	api, store := newTestAPI(t, "")
	f := newFamily(t, store)
	c := newChores(t, store, f)
	unknown := uuid.New().String()

	tests := []struct {
		name   string
		taskID string
		query  string
		want   struct {
			statusCode int
			message    string
		}
	}{
		{
			name:   "reporter reads confidential task",
			taskID: c.gift.ID,
			query:  fmt.Sprintf("userId=%d", f.mom.ID),
			want: struct {
				statusCode int
				message    string
			}{statusCode: http.StatusOK},
		},
		{
			name:   "executor reads confidential task",
			taskID: c.gift.ID,
			query:  fmt.Sprintf("userId=%d", f.dad.ID),
			want: struct {
				statusCode int
				message    string
			}{statusCode: http.StatusOK},
		},
		{
			name:   "group member reads public task",
			taskID: c.trash.ID,
			query:  fmt.Sprintf("userId=%d", f.dad.ID),
			want: struct {
				statusCode int
				message    string
			}{statusCode: http.StatusOK},
		},
		{
			name:   "group member cannot see confidential task",
			taskID: c.gift.ID,
			query:  fmt.Sprintf("userId=%d", f.kid.ID),
			want: struct {
				statusCode int
				message    string
			}{http.StatusNotFound, fmt.Sprintf("Task with id %s doesn't exist", c.gift.ID)},
		},
		{
			name:   "other group cannot see public task",
			taskID: c.trash.ID,
			query:  fmt.Sprintf("userId=%d", f.outsider.ID),
			want: struct {
				statusCode int
				message    string
			}{http.StatusNotFound, fmt.Sprintf("Task with id %s doesn't exist", c.trash.ID)},
		},
		{
			name:   "user without group cannot see public task",
			taskID: c.trash.ID,
			query:  fmt.Sprintf("userId=%d", f.loner.ID),
			want: struct {
				statusCode int
				message    string
			}{http.StatusNotFound, fmt.Sprintf("Task with id %s doesn't exist", c.trash.ID)},
		},
		{
			name:   "unknown task",
			taskID: unknown,
			query:  fmt.Sprintf("userId=%d", f.mom.ID),
			want: struct {
				statusCode int
				message    string
			}{http.StatusNotFound, fmt.Sprintf("Task with id %s doesn't exist", unknown)},
		},
		{
			name:   "task id is not a uuid",
			taskID: "42",
			query:  fmt.Sprintf("userId=%d", f.mom.ID),
			want: struct {
				statusCode int
				message    string
			}{http.StatusNotFound, "Task with id 42 doesn't exist"},
		},
		{
			name:   "user not specified",
			taskID: c.trash.ID,
			want: struct {
				statusCode int
				message    string
			}{http.StatusBadRequest, "A user isn't specified."},
		},
		{
			name:   "unknown user",
			taskID: c.trash.ID,
			query:  "userId=999",
			want: struct {
				statusCode int
				message    string
			}{http.StatusNotFound, "User with id 999 doesn't exist"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(api, http.MethodGet, "/tasks/"+tt.taskID+"?"+tt.query, nil)

			require.Equal(t, tt.want.statusCode, w.Code, w.Body.String())
			if tt.want.statusCode != http.StatusOK {
				assert.Equal(t, tt.want.message, errorMessage(t, w))
				return
			}
			assert.Equal(t, tt.taskID, decodeBody[models.Task](t, w).ID)
		})
	}
}

func TestUpdateTask(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"name":          "Take out the trash",
			"description":   "Both bins, recycling too",
			"status":        "COMPLETED",
			"priority":      "HIGH",
			"confidential":  false,
			"deadline":      inDays(1),
			"rewardsPoints": 5,
		}
	}

	tests := []struct {
		name   string
		taskID func(c chores) string
		query  func(f family) string
		mutate func(body map[string]any, f family)
		want   struct {
			statusCode int
			message    func(f family, c chores) string
			check      func(t *testing.T, f family, task models.Task)
		}
	}{
		{
			name:   "full replace",
			taskID: func(c chores) string { return c.trash.ID },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusOK,
				check: func(t *testing.T, f family, task models.Task) {
					assert.Equal(t, "Take out the trash", task.Name)
					assert.Equal(t, models.StatusCompleted, task.Status)
					assert.Equal(t, models.PriorityHigh, task.Priority)
					assert.Equal(t, f.mom.ID, task.ReporterID)
					assert.Equal(t, []int{f.kid.ID}, task.ExecutorIDs)
					require.NotNil(t, task.RewardsPoints)
					assert.Equal(t, 5, *task.RewardsPoints)
				},
			},
		},
		{
			name:   "omitted optional fields are cleared",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) {
				delete(b, "description")
				delete(b, "deadline")
				delete(b, "rewardsPoints")
			},
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusOK,
				check: func(t *testing.T, _ family, task models.Task) {
					assert.Nil(t, task.Description)
					assert.Nil(t, task.Deadline)
					assert.Nil(t, task.RewardsPoints)
				},
			},
		},
		{
			name:   "zero rewards points",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { b["rewardsPoints"] = 0 },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusOK,
				check: func(t *testing.T, _ family, task models.Task) {
					require.NotNil(t, task.RewardsPoints)
					assert.Zero(t, *task.RewardsPoints)
				},
			},
		},
		{
			name:   "executors replaced",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, f family) { b["executorIds"] = []int{f.dad.ID, f.mom.ID} },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusOK,
				check: func(t *testing.T, f family, task models.Task) {
					assert.Equal(t, []int{f.mom.ID, f.dad.ID}, task.ExecutorIDs)
				},
			},
		},
		{
			name:   "executors cleared",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { b["executorIds"] = []int{} },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusOK,
				check: func(t *testing.T, _ family, task models.Task) {
					assert.Empty(t, task.ExecutorIDs)
				},
			},
		},
		{
			name:   "executor of confidential task updates it",
			taskID: func(c chores) string { return c.gift.ID },
			query:  func(f family) string { return fmt.Sprintf("userId=%d", f.dad.ID) },
			mutate: func(b map[string]any, _ family) { b["confidential"] = true },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusOK,
				check: func(t *testing.T, _ family, task models.Task) {
					assert.True(t, task.Confidential)
				},
			},
		},
		{
			name:   "name of exactly 100 characters",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { b["name"] = strings.Repeat("n", models.TaskNameMaxLength) },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusOK,
				check: func(t *testing.T, _ family, task models.Task) {
					assert.Len(t, task.Name, models.TaskNameMaxLength)
				},
			},
		},
		{
			name:   "name too long",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { b["name"] = strings.Repeat("n", models.TaskNameMaxLength+1) },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family, chores) string { return "A task name length shouldn't be more than 100." },
			},
		},
		{
			name:   "missing name",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { b["name"] = nil },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family, chores) string { return "A task name isn't specified." },
			},
		},
		{
			name:   "missing status",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { delete(b, "status") },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family, chores) string { return "Status must be specified" },
			},
		},
		{
			name:   "unknown status",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { b["status"] = "DONE" },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family, chores) string { return "Invalid status value. Please enter a valid status." },
			},
		},
		{
			name:   "missing priority",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { b["priority"] = "" },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family, chores) string { return "Priority must be specified" },
			},
		},
		{
			name:   "missing confidential flag",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { delete(b, "confidential") },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family, chores) string { return "A task confidential status isn't specified." },
			},
		},
		{
			name:   "executor id wider than 32 bits",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { b["executorIds"] = []int{3000000000} },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family, chores) string { return "Id has invalid format." },
			},
		},
		{
			name:   "negative rewards points",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { b["rewardsPoints"] = -1 },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family, chores) string { return "Rewards points cannot be negative." },
			},
		},
		{
			name:   "deadline in the past",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { b["deadline"] = "2001-09-09" },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family, chores) string { return "Date must be in future" },
			},
		},
		{
			name:   "executor from another group",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, f family) { b["executorIds"] = []int{f.outsider.ID} },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message: func(f family, _ chores) string {
					return fmt.Sprintf("User with id %d isn't a member of the reporter's group.", f.outsider.ID)
				},
			},
		},
		{
			name:   "unknown task with invalid payload",
			taskID: func(chores) string { return "6f1c8f8e-2b7a-4c1e-9d4a-0f8b5f0d2a11" },
			mutate: func(b map[string]any, _ family) {
				delete(b, "name")
				b["status"] = "DONE"
			},
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message: func(family, chores) string {
					return "Task with id 6f1c8f8e-2b7a-4c1e-9d4a-0f8b5f0d2a11 doesn't exist"
				},
			},
		},
		{
			name:   "task id is not a uuid",
			taskID: func(chores) string { return "42" },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family, chores) string { return "Task with id 42 doesn't exist" },
			},
		},
		{
			name:   "updater cannot see confidential task",
			taskID: func(c chores) string { return c.gift.ID },
			query:  func(f family) string { return fmt.Sprintf("userId=%d", f.kid.ID) },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message: func(_ family, c chores) string {
					return fmt.Sprintf("Task with id %s doesn't exist", c.gift.ID)
				},
			},
		},
		{
			name:   "unknown updater",
			taskID: func(c chores) string { return c.trash.ID },
			query:  func(family) string { return "userId=999" },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message: func(_ family, c chores) string {
					return fmt.Sprintf("Task with id %s doesn't exist", c.trash.ID)
				},
			},
		},
		{
			name:   "non numeric updater",
			taskID: func(c chores) string { return c.trash.ID },
			query:  func(family) string { return "userId=mom" },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family, chores) string { return "Id has invalid format." },
			},
		},
		{
			name:   "malformed json",
			taskID: func(c chores) string { return c.trash.ID },
			mutate: func(b map[string]any, _ family) { b["rewardsPoints"] = "five" },
			want: struct {
				statusCode int
				message    func(f family, c chores) string
				check      func(t *testing.T, f family, task models.Task)
			}{
				statusCode: http.StatusBadRequest,
				message:    func(family, chores) string { return "Incorrect request format." },
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, store := newTestAPI(t, "")
			f := newFamily(t, store)
			c := newChores(t, store, f)

			body := base()
			if tt.mutate != nil {
				tt.mutate(body, f)
			}
			path := "/tasks/" + tt.taskID(c)
			if tt.query != nil {
				path += "?" + tt.query(f)
			}

			w := perform(api, http.MethodPut, path, body)

			require.Equal(t, tt.want.statusCode, w.Code, w.Body.String())
			if tt.want.statusCode != http.StatusOK {
				assert.Equal(t, tt.want.message(f, c), errorMessage(t, w))
				return
			}

			updated := decodeBody[models.Task](t, w)
			tt.want.check(t, f, updated)

			stored, err := store.GetTaskByID(context.Background(), updated.ID)
			require.NoError(t, err)
			tt.want.check(t, f, *stored)
		})
	}
}

func TestUpdateTaskIsIdempotent(t *testing.T) {
	api, store := newTestAPI(t, "")
	f := newFamily(t, store)
	c := newChores(t, store, f)

	body := map[string]any{
		"name":          "Dishes, again",
		"status":        "IN_PROGRESS",
		"priority":      "MEDIUM",
		"executorIds":   []int{f.kid.ID, f.dad.ID},
		"confidential":  false,
		"rewardsPoints": 3,
	}

	first := perform(api, http.MethodPut, "/tasks/"+c.dishes.ID, body)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	second := perform(api, http.MethodPut, "/tasks/"+c.dishes.ID, body)
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	a := decodeBody[models.Task](t, first)
	b := decodeBody[models.Task](t, second)
	a.UpdatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, a, b)
	assert.Equal(t, []int{f.dad.ID, f.kid.ID}, b.ExecutorIDs)
	assert.Equal(t, f.kid.ID, b.ReporterID)
}
