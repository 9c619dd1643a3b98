// Package messages holds the catalog of caller-facing error messages.
//
// The catalog is decoded once from the embedded catalog.yaml and never
// mutated afterwards, so a *Catalog may be shared between goroutines.
package messages

import (
	_ "embed"
	"fmt"

	"familytasks/internal/domain/errors"

	"gopkg.in/yaml.v3"
)

type Key string

const (
	UserNameNotSpecified   Key = "user_name_not_specified"
	UserNameTooLong        Key = "user_name_too_long"
	IsAdminNotSpecified    Key = "is_admin_not_specified"
	UserNotExist           Key = "user_not_exist"
	UserNotSpecified       Key = "user_not_specified"
	UserAlreadyIsOwner     Key = "user_already_is_owner"
	UserAlreadyHasGroup    Key = "user_already_has_group"
	GroupOwnerNotSpecified Key = "group_owner_not_specified"
	GroupNotSpecified      Key = "group_not_specified"
	GroupNotExist          Key = "group_not_exist"
	IDHasInvalidFormat     Key = "id_has_invalid_format"
	IncorrectRequestFormat Key = "incorrect_request_format"

	TaskNameNotSpecified               Key = "task_name_not_specified"
	TaskNameTooLong                    Key = "task_name_too_long"
	TaskDescriptionTooLong             Key = "task_description_too_long"
	TaskDescriptionTooShort            Key = "task_description_too_short"
	TaskConfidentialStatusNotSpecified Key = "task_confidential_status_not_specified"
	TaskDeadlineDateNotFuture          Key = "task_deadline_date_not_future"
	TaskPriorityInvalid                Key = "task_priority_invalid"
	TaskStatusInvalid                  Key = "task_status_invalid"
	TaskStatusNull                     Key = "task_status_null"
	TaskPriorityNull                   Key = "task_priority_null"
	TaskReporterNull                   Key = "task_reporter_null"
	TaskNotExist                       Key = "task_not_exist"
	TaskFilterInvalid                  Key = "task_filter_invalid"
	TaskFilterNotSpecified             Key = "task_filter_not_specified"
	TaskRewardsPointsNegative          Key = "task_rewards_points_negative"
	TaskExecutorNotInGroup             Key = "task_executor_not_in_group"

	ResourceNotFound       Key = "resource_not_found"
	MethodNotAllowed       Key = "method_not_allowed"
	AuthenticationRequired Key = "authentication_required"
	AccessDenied           Key = "access_denied"
	InternalError          Key = "internal_error"
)

var requiredKeys = []Key{
	UserNameNotSpecified, UserNameTooLong, IsAdminNotSpecified, UserNotExist,
	UserNotSpecified, UserAlreadyIsOwner, UserAlreadyHasGroup,
	GroupOwnerNotSpecified, GroupNotSpecified, GroupNotExist,
	IDHasInvalidFormat, IncorrectRequestFormat,
	TaskNameNotSpecified, TaskNameTooLong, TaskDescriptionTooLong,
	TaskDescriptionTooShort, TaskConfidentialStatusNotSpecified,
	TaskDeadlineDateNotFuture, TaskPriorityInvalid, TaskStatusInvalid,
	TaskStatusNull, TaskPriorityNull, TaskReporterNull, TaskNotExist,
	TaskFilterInvalid, TaskFilterNotSpecified, TaskRewardsPointsNegative,
	TaskExecutorNotInGroup,
	ResourceNotFound, MethodNotAllowed, AuthenticationRequired, AccessDenied,
	InternalError,
}

//go:embed catalog.yaml
var embeddedCatalog []byte

type Catalog struct {
	version  int
	messages map[Key]string
}

type catalogFile struct {
	Version  int               `yaml:"version"`
	Messages map[string]string `yaml:"messages"`
}

// Load decodes the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// MustLoad is Load for process start-up, where a broken catalog is fatal.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCatalogInvalid, err)
	}
	if f.Version < 1 {
		return nil, fmt.Errorf("%w: версия каталога не указана", errors.ErrCatalogInvalid)
	}

	msgs := make(map[Key]string, len(f.Messages))
	for k, v := range f.Messages {
		msgs[Key(k)] = v
	}
	for _, k := range requiredKeys {
		if _, ok := msgs[k]; !ok {
			return nil, fmt.Errorf("%w: нет сообщения %q", errors.ErrCatalogInvalid, k)
		}
	}

	return &Catalog{version: f.Version, messages: msgs}, nil
}

func (c *Catalog) Version() int {
	return c.version
}

// Format renders the template for key. Unknown keys render as the key itself.
func (c *Catalog) Format(key Key, args ...any) string {
	tmpl, ok := c.messages[key]
	if !ok {
		return string(key)
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
