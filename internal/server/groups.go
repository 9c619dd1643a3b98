package server

import (
	"net/http"

	"familytasks/internal/domain/errors"
	"familytasks/internal/domain/messages"
	"familytasks/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func (api *TaskAPI) createGroup(ctx *gin.Context) {
	var req models.CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.respondError(ctx, api.badRequest(messages.IncorrectRequestFormat))
		return
	}
	if err := api.valid.Struct(req); err != nil {
		api.respondError(ctx, err)
		return
	}
	ownerID := *req.OwnerID

	owner, err := api.users.GetUserByID(ctx.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			err = api.badRequest(messages.UserNotExist, ownerID)
		}
		api.respondError(ctx, err)
		return
	}

	_, err = api.groups.GetGroupByOwnerID(ctx.Request.Context(), ownerID)
	switch {
	case err == nil:
		api.respondError(ctx, api.badRequest(messages.UserAlreadyIsOwner, ownerID))
		return
	case !errors.Is(err, errors.ErrGroupNotFound):
		api.respondError(ctx, err)
		return
	}
	if owner.GroupID != nil {
		api.respondError(ctx, api.badRequest(messages.UserAlreadyHasGroup, ownerID))
		return
	}

	group := &models.Group{OwnerID: ownerID}
	if err := api.groups.CreateGroup(ctx.Request.Context(), group); err != nil {
		// lost a race with a concurrent write to the owner
		switch {
		case errors.Is(err, errors.ErrConflict):
			err = api.badRequest(messages.UserAlreadyIsOwner, ownerID)
		case errors.Is(err, errors.ErrUserHasGroup):
			err = api.badRequest(messages.UserAlreadyHasGroup, ownerID)
		case errors.Is(err, errors.ErrUserNotFound):
			err = api.badRequest(messages.UserNotExist, ownerID)
		}
		api.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, group)
}
