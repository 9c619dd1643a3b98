// Package validation checks request payloads against the struct tags declared
// in the models package and turns the first violation into a caller-facing
// error.
package validation

import (
	"math"
	"reflect"
	"strings"
	"time"

	"familytasks/internal/domain/errors"
	"familytasks/internal/domain/messages"
	"familytasks/internal/domain/models"

	"github.com/go-playground/validator"
)

type rule struct {
	field string
	tag   string
}

var userRules = map[rule]messages.Key{
	{"Name", "required"}:  messages.UserNameNotSpecified,
	{"Name", "notblank"}:  messages.UserNameNotSpecified,
	{"Name", "max"}:       messages.UserNameTooLong,
	{"Admin", "required"}: messages.IsAdminNotSpecified,
	{"GroupID", "id"}:     messages.IDHasInvalidFormat,
}

var groupRules = map[rule]messages.Key{
	{"OwnerID", "required"}: messages.GroupOwnerNotSpecified,
	{"OwnerID", "id"}:       messages.IDHasInvalidFormat,
}

var taskRules = map[rule]messages.Key{
	{"Name", "required"}:         messages.TaskNameNotSpecified,
	{"Name", "notblank"}:         messages.TaskNameNotSpecified,
	{"Name", "max"}:              messages.TaskNameTooLong,
	{"Description", "min"}:       messages.TaskDescriptionTooShort,
	{"Description", "max"}:       messages.TaskDescriptionTooLong,
	{"Status", "required"}:       messages.TaskStatusNull,
	{"Status", "notblank"}:       messages.TaskStatusNull,
	{"Status", "status"}:         messages.TaskStatusInvalid,
	{"Priority", "required"}:     messages.TaskPriorityNull,
	{"Priority", "notblank"}:     messages.TaskPriorityNull,
	{"Priority", "priority"}:     messages.TaskPriorityInvalid,
	{"ReporterID", "required"}:   messages.TaskReporterNull,
	{"ReporterID", "id"}:         messages.IDHasInvalidFormat,
	{"ExecutorIDs", "id"}:        messages.IDHasInvalidFormat,
	{"Confidential", "required"}: messages.TaskConfidentialStatusNotSpecified,
	{"Deadline", "notpast"}:      messages.TaskDeadlineDateNotFuture,
	{"RewardsPoints", "min"}:     messages.TaskRewardsPointsNegative,
}

var rulesByType = map[reflect.Type]map[rule]messages.Key{
	reflect.TypeOf(models.CreateUserRequest{}):  userRules,
	reflect.TypeOf(models.UpdateUserRequest{}):  userRules,
	reflect.TypeOf(models.CreateGroupRequest{}): groupRules,
	reflect.TypeOf(models.CreateTaskRequest{}):  taskRules,
	reflect.TypeOf(models.UpdateTaskRequest{}):  taskRules,
}

// Validator is safe for concurrent use once constructed.
type Validator struct {
	valid   *validator.Validate
	catalog *messages.Catalog
	now     func() time.Time
}

func New(catalog *messages.Catalog) *Validator {
	return NewWithClock(catalog, time.Now)
}

// NewWithClock is New with an explicit source of "today" for deadline checks.
func NewWithClock(catalog *messages.Catalog, now func() time.Time) *Validator {
	v := &Validator{
		valid:   validator.New(),
		catalog: catalog,
		now:     now,
	}

	v.valid.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(models.Date); ok {
			return d.Time
		}
		return nil
	}, models.Date{})

	// Registration only fails on empty tags or nil functions.
	_ = v.valid.RegisterValidation("notblank", notBlank)
	_ = v.valid.RegisterValidation("id", validID)
	_ = v.valid.RegisterValidation("priority", validPriority)
	_ = v.valid.RegisterValidation("status", validStatus)
	_ = v.valid.RegisterValidation("notpast", v.notPast)

	return v
}

// Struct validates req, which must be one of the request types of the models
// package, and returns nil or an *errors.APIError for the first violated
// field.
func (v *Validator) Struct(req interface{}) error {
	err := v.valid.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.BadRequest(v.catalog.Format(messages.IncorrectRequestFormat))
	}

	t := reflect.TypeOf(req)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	// slice elements are reported as Field[i]
	field := verrs[0].StructField()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}

	key, found := rulesByType[t][rule{field, verrs[0].Tag()}]
	if !found {
		key = messages.IncorrectRequestFormat
	}
	return errors.BadRequest(v.catalog.Format(key))
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validID accepts ids that fit the 32-bit columns they are stored in.
func validID(fl validator.FieldLevel) bool {
	switch f := fl.Field(); f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return f.Int() >= math.MinInt32 && f.Int() <= math.MaxInt32
	}
	return false
}

func validPriority(fl validator.FieldLevel) bool {
	return models.Priority(fl.Field().String()).Valid()
}

func validStatus(fl validator.FieldLevel) bool {
	return models.Status(fl.Field().String()).Valid()
}

func (v *Validator) notPast(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !models.DateOf(t).Before(models.DateOf(v.now()))
}
