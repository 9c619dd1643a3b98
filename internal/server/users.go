package server

import (
	"net/http"

	"familytasks/internal/domain/errors"
	"familytasks/internal/domain/messages"
	"familytasks/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func (api *TaskAPI) createUser(ctx *gin.Context) {
	var req models.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.respondError(ctx, api.badRequest(messages.IncorrectRequestFormat))
		return
	}
	if err := api.valid.Struct(req); err != nil {
		api.respondError(ctx, err)
		return
	}

	if req.GroupID != nil {
		if err := api.requireGroup(ctx, *req.GroupID); err != nil {
			api.respondError(ctx, err)
			return
		}
	}

	user := &models.User{
		Name:    *req.Name,
		Admin:   *req.Admin,
		GroupID: req.GroupID,
	}
	if err := api.users.CreateUser(ctx.Request.Context(), user); err != nil {
		if errors.Is(err, errors.ErrGroupNotFound) && req.GroupID != nil {
			err = api.badRequest(messages.GroupNotExist, *req.GroupID)
		}
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (api *TaskAPI) getUser(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("userID"))
	if !ok {
		api.respondError(ctx, api.badRequest(messages.IDHasInvalidFormat))
		return
	}

	user, err := api.users.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			err = api.notFound(messages.UserNotExist, id)
		}
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (api *TaskAPI) getUsersByGroup(ctx *gin.Context) {
	groupID, present, valid := queryID(ctx, "groupId")
	if !present {
		api.respondError(ctx, api.badRequest(messages.GroupNotSpecified))
		return
	}
	if !valid {
		api.respondError(ctx, api.badRequest(messages.IDHasInvalidFormat))
		return
	}
	if err := api.requireGroup(ctx, groupID); err != nil {
		api.respondError(ctx, err)
		return
	}

	members, err := api.users.GetUsersByGroupID(ctx.Request.Context(), groupID)
	if err != nil {
		api.respondError(ctx, err)
		return
	}
	if members == nil {
		members = []models.User{}
	}

	ctx.JSON(http.StatusOK, members)
}

func (api *TaskAPI) updateUser(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("userID"))
	if !ok {
		api.respondError(ctx, api.badRequest(messages.IncorrectRequestFormat))
		return
	}

	var req models.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.respondError(ctx, api.badRequest(messages.IncorrectRequestFormat))
		return
	}

	user, err := api.users.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			err = api.notFound(messages.UserNotExist, id)
		}
		api.respondError(ctx, err)
		return
	}

	if err := api.valid.Struct(req); err != nil {
		api.respondError(ctx, err)
		return
	}
	if req.GroupID != nil {
		if err := api.requireGroup(ctx, *req.GroupID); err != nil {
			api.respondError(ctx, err)
			return
		}
	}

	// an owner stays in the group they own
	owned, err := api.groups.GetGroupByOwnerID(ctx.Request.Context(), id)
	switch {
	case err == nil:
		if req.GroupID == nil || *req.GroupID != owned.ID {
			api.respondError(ctx, api.badRequest(messages.UserAlreadyIsOwner, id))
			return
		}
	case !errors.Is(err, errors.ErrGroupNotFound):
		api.respondError(ctx, err)
		return
	}

	user.Name = *req.Name
	user.Admin = *req.Admin
	user.GroupID = req.GroupID
	if err := api.users.UpdateUser(ctx.Request.Context(), user); err != nil {
		switch {
		case errors.Is(err, errors.ErrUserNotFound):
			err = api.notFound(messages.UserNotExist, id)
		case errors.Is(err, errors.ErrGroupNotFound) && req.GroupID != nil:
			err = api.badRequest(messages.GroupNotExist, *req.GroupID)
		}
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// requireGroup maps a missing group to the caller-facing 400.
func (api *TaskAPI) requireGroup(ctx *gin.Context, groupID int) error {
	_, err := api.groups.GetGroupByID(ctx.Request.Context(), groupID)
	if errors.Is(err, errors.ErrGroupNotFound) {
		return api.badRequest(messages.GroupNotExist, groupID)
	}
	return err
}
