package server

import (
	"context"
	"net/http"
	"sort"

	"familytasks/internal/domain/errors"
	"familytasks/internal/domain/messages"
	"familytasks/internal/domain/models"
	"familytasks/internal/domain/visibility"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (api *TaskAPI) createTask(ctx *gin.Context) {
	var req models.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.respondError(ctx, api.badRequest(messages.IncorrectRequestFormat))
		return
	}
	if err := api.valid.Struct(req); err != nil {
		api.respondError(ctx, err)
		return
	}
	if err := api.checkCaller(ctx, *req.ReporterID); err != nil {
		api.respondError(ctx, err)
		return
	}

	reporter, err := api.users.GetUserByID(ctx.Request.Context(), *req.ReporterID)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			err = api.badRequest(messages.UserNotExist, *req.ReporterID)
		}
		api.respondError(ctx, err)
		return
	}

	executors, err := api.checkExecutors(ctx.Request.Context(), reporter, req.ExecutorIDs)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	task := &models.Task{
		Name:         *req.Name,
		Status:       models.StatusToDo,
		Description:  req.Description,
		Priority:     models.Priority(*req.Priority),
		ReporterID:   reporter.ID,
		ExecutorIDs:  executors,
		Confidential: *req.Confidential,
		Deadline:     req.Deadline,
	}
	if err := api.tasks.CreateTask(ctx.Request.Context(), task); err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			err = api.badRequest(messages.UserNotExist, api.missingParticipant(ctx.Request.Context(), task))
		}
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, task)
}

func (api *TaskAPI) getTasks(ctx *gin.Context) {
	user, err := api.requestingUser(ctx, http.StatusBadRequest)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	raw, ok := ctx.GetQuery("filter")
	if !ok || raw == "" {
		api.respondError(ctx, api.badRequest(messages.TaskFilterNotSpecified))
		return
	}
	filter := models.Filter(raw)
	if !filter.Valid() {
		api.respondError(ctx, api.badRequest(messages.TaskFilterInvalid))
		return
	}

	if user.GroupID == nil {
		ctx.JSON(http.StatusOK, []models.Task{})
		return
	}

	groupTasks, err := api.tasks.GetTasksByGroupID(ctx.Request.Context(), *user.GroupID)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, visibility.Filter(user, groupTasks, filter))
}

func (api *TaskAPI) getTaskByID(ctx *gin.Context) {
	user, err := api.requestingUser(ctx, http.StatusNotFound)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	id := ctx.Param("taskID")
	task, err := api.visibleTask(ctx.Request.Context(), id, user)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			err = api.notFound(messages.TaskNotExist, id)
		}
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func (api *TaskAPI) updateTask(ctx *gin.Context) {
	id := ctx.Param("taskID")

	task, err := api.findTask(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			err = api.badRequest(messages.TaskNotExist, id)
		}
		api.respondError(ctx, err)
		return
	}

	// an explicit userId must be someone who can see the task
	if userID, present, valid := queryID(ctx, "userId"); present {
		if !valid {
			api.respondError(ctx, api.badRequest(messages.IDHasInvalidFormat))
			return
		}
		if err := api.checkCaller(ctx, userID); err != nil {
			api.respondError(ctx, err)
			return
		}
		if err := api.checkUpdater(ctx.Request.Context(), userID, task); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				err = api.badRequest(messages.TaskNotExist, id)
			}
			api.respondError(ctx, err)
			return
		}
	}

	var req models.UpdateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.respondError(ctx, api.badRequest(messages.IncorrectRequestFormat))
		return
	}
	if err := api.valid.Struct(req); err != nil {
		api.respondError(ctx, err)
		return
	}

	if req.ExecutorIDs != nil {
		reporter, err := api.users.GetUserByID(ctx.Request.Context(), task.ReporterID)
		if err != nil {
			api.respondError(ctx, err)
			return
		}
		executors, err := api.checkExecutors(ctx.Request.Context(), reporter, req.ExecutorIDs)
		if err != nil {
			api.respondError(ctx, err)
			return
		}
		task.ExecutorIDs = executors
	}

	task.Name = *req.Name
	task.Description = req.Description
	task.Status = models.Status(*req.Status)
	task.Priority = models.Priority(*req.Priority)
	task.Confidential = *req.Confidential
	task.Deadline = req.Deadline
	task.RewardsPoints = req.RewardsPoints

	if err := api.tasks.UpdateTask(ctx.Request.Context(), task); err != nil {
		switch {
		case errors.Is(err, errors.ErrNotFound):
			err = api.badRequest(messages.TaskNotExist, id)
		case errors.Is(err, errors.ErrUserNotFound):
			err = api.badRequest(messages.UserNotExist, api.missingParticipant(ctx.Request.Context(), task))
		}
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, task)
}

// requestingUser resolves the mandatory userId query parameter. An unknown
// user is reported with unknownStatus.
func (api *TaskAPI) requestingUser(ctx *gin.Context, unknownStatus int) (*models.User, error) {
	userID, present, valid := queryID(ctx, "userId")
	if !present {
		return nil, api.badRequest(messages.UserNotSpecified)
	}
	if !valid {
		return nil, api.badRequest(messages.IDHasInvalidFormat)
	}
	if err := api.checkCaller(ctx, userID); err != nil {
		return nil, err
	}

	user, err := api.users.GetUserByID(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return nil, &errors.APIError{Status: unknownStatus, Message: api.catalog.Format(messages.UserNotExist, userID)}
		}
		return nil, err
	}
	return user, nil
}

// findTask treats ids that are not UUIDs as unknown tasks.
func (api *TaskAPI) findTask(ctx context.Context, id string) (*models.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.ErrNotFound
	}
	return api.tasks.GetTaskByID(ctx, id)
}

// visibleTask returns errors.ErrNotFound both for unknown tasks and for tasks
// user may not see.
func (api *TaskAPI) visibleTask(ctx context.Context, id string, user *models.User) (*models.Task, error) {
	task, err := api.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := api.ensureVisible(ctx, user, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (api *TaskAPI) ensureVisible(ctx context.Context, user *models.User, task *models.Task) error {
	reporter, err := api.users.GetUserByID(ctx, task.ReporterID)
	if err != nil && !errors.Is(err, errors.ErrUserNotFound) {
		return err
	}
	if !visibility.CanView(user, task, reporter) {
		return errors.ErrNotFound
	}
	return nil
}

func (api *TaskAPI) checkUpdater(ctx context.Context, userID int, task *models.Task) error {
	user, err := api.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return errors.ErrNotFound
		}
		return err
	}
	return api.ensureVisible(ctx, user, task)
}

// missingParticipant names the reporter or executor of task that the store
// no longer knows. The reporter is named when every lookup succeeds.
func (api *TaskAPI) missingParticipant(ctx context.Context, task *models.Task) int {
	for _, id := range append([]int{task.ReporterID}, task.ExecutorIDs...) {
		if _, err := api.users.GetUserByID(ctx, id); errors.Is(err, errors.ErrUserNotFound) {
			return id
		}
	}
	return task.ReporterID
}

// checkExecutors loads every executor and verifies that the reporter may
// assign them. The result is deduplicated and sorted.
func (api *TaskAPI) checkExecutors(ctx context.Context, reporter *models.User, ids []int) ([]int, error) {
	seen := make(map[int]bool, len(ids))
	result := make([]int, 0, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		executor, err := api.users.GetUserByID(ctx, id)
		if err != nil {
			if errors.Is(err, errors.ErrUserNotFound) {
				return nil, api.badRequest(messages.UserNotExist, id)
			}
			return nil, err
		}
		if !visibility.CanAssign(reporter, executor) {
			return nil, api.badRequest(messages.TaskExecutorNotInGroup, id)
		}
		result = append(result, id)
	}

	sort.Ints(result)
	return result, nil
}
