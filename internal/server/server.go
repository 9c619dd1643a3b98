package server

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"familytasks/internal/domain/errors"
	"familytasks/internal/domain/messages"
	"familytasks/internal/domain/models"
	"familytasks/internal/validation"

	"github.com/gin-gonic/gin"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUsersByGroupID(ctx context.Context, groupID int) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

type GroupRepository interface {
	// CreateGroup stores group and moves its owner into it atomically.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id int) (*models.Group, error)
	GetGroupByOwnerID(ctx context.Context, ownerID int) (*models.Group, error)
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	// GetTasksByGroupID returns the tasks reported by current members of the
	// group, oldest first.
	GetTasksByGroupID(ctx context.Context, groupID int) ([]models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
}

type TaskAPI struct {
	httpSrv   *http.Server
	users     UserRepository
	groups    GroupRepository
	tasks     TaskRepository
	catalog   *messages.Catalog
	valid     *validation.Validator
	jwtSecret string
}

func NewTaskAPI(users UserRepository, groups GroupRepository, tasks TaskRepository, cfg *Config) *TaskAPI {
	if users == nil || groups == nil || tasks == nil {
		return nil
	}
	if cfg == nil {
		cfg = &Config{}
	}

	catalog := messages.MustLoad()

	api := &TaskAPI{
		httpSrv:   &http.Server{Addr: cfg.ListenAddr()},
		users:     users,
		groups:    groups,
		tasks:     tasks,
		catalog:   catalog,
		valid:     validation.New(catalog),
		jwtSecret: cfg.JWTSecret,
	}

	api.configRoutes()

	return api
}

func (api *TaskAPI) Start() error {
	if api.httpSrv == nil {
		return errors.ErrInternalServer
	}

	if api.httpSrv.Addr == "" {
		api.httpSrv.Addr = ":8080"
	}

	err := api.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (api *TaskAPI) Shutdown(ctx context.Context) error {
	if api.httpSrv == nil {
		return nil
	}
	return api.httpSrv.Shutdown(ctx)
}

func (api *TaskAPI) configRoutes() {
	router := gin.Default()
	router.RedirectTrailingSlash = false
	router.HandleMethodNotAllowed = true

	router.Use(GzipRequestDecompress(api.catalog), GzipResponseCompress())

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, errorBody(api.catalog.Format(messages.ResourceNotFound)))
	})
	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, errorBody(api.catalog.Format(messages.MethodNotAllowed)))
	})

	groups := router.Group("/groups")
	{
		groups.POST("", api.createGroup)
	}

	users := router.Group("/users")
	{
		users.GET("", api.getUsersByGroup)
		users.POST("", api.createUser)
		users.GET("/:userID", api.getUser)
		users.PUT("/:userID", api.updateUser)
	}

	tasks := router.Group("/tasks")
	if api.jwtSecret != "" {
		tasks.Use(RequireBearer(api.jwtSecret, api.catalog))
	}
	{
		tasks.GET("", api.getTasks)
		tasks.POST("", api.createTask)
		tasks.GET("/:taskID", api.getTaskByID)
		tasks.PUT("/:taskID", api.updateTask)
	}

	api.httpSrv.Handler = router
}

func errorBody(message string) gin.H {
	return gin.H{"errorMessage": message}
}

// respondError writes err as the error body. Errors that are not
// *errors.APIError are logged and hidden behind a generic 500.
func (api *TaskAPI) respondError(ctx *gin.Context, err error) {
	if apiErr, ok := errors.AsAPIError(err); ok {
		ctx.JSON(apiErr.Status, errorBody(apiErr.Message))
		return
	}
	log.Printf("[ERROR] %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	ctx.JSON(http.StatusInternalServerError, errorBody(api.catalog.Format(messages.InternalError)))
}

func (api *TaskAPI) badRequest(key messages.Key, args ...any) *errors.APIError {
	return errors.BadRequest(api.catalog.Format(key, args...))
}

func (api *TaskAPI) notFound(key messages.Key, args ...any) *errors.APIError {
	return errors.NotFound(api.catalog.Format(key, args...))
}

// parseID accepts decimal ids that fit the database integer column.
func parseID(raw string) (int, bool) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(id), true
}

// queryID reads an id query parameter. present is false when the parameter
// is absent or empty.
func queryID(ctx *gin.Context, name string) (id int, present, valid bool) {
	raw, ok := ctx.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false, false
	}
	id, valid = parseID(raw)
	return id, true, valid
}

// checkCaller enforces that an authenticated caller only acts as themselves.
func (api *TaskAPI) checkCaller(ctx *gin.Context, userID int) error {
	caller, ok := callerID(ctx)
	if !ok || caller == userID {
		return nil
	}
	return errors.Forbidden(api.catalog.Format(messages.AccessDenied))
}
