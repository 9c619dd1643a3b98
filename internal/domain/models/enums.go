package models

type Status string

const (
	StatusToDo       Status = "TO_DO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var allowedStatuses = map[Status]bool{
	StatusToDo:       true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

func (s Status) Valid() bool {
	return allowedStatuses[s]
}

func (s Status) IsActive() bool {
	return s == StatusToDo || s == StatusInProgress
}

func (s Status) IsCompleted() bool {
	return s == StatusCompleted
}

// IsClosed is true only for cancelled tasks. Completed tasks have their own
// filters and are not listed as closed.
func (s Status) IsClosed() bool {
	return s == StatusCancelled
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

var allowedPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

func (p Priority) Valid() bool {
	return allowedPriorities[p]
}

type Filter string

const (
	FilterReporterActive    Filter = "IS_REPORTER_ACTIVE_TASK"
	FilterExecutorActive    Filter = "IS_EXECUTOR_ACTIVE_TASK"
	FilterReporterCompleted Filter = "IS_REPORTER_COMPLETED_TASK"
	FilterExecutorCompleted Filter = "IS_EXECUTOR_COMPLETED_TASK"
	FilterAllAvailable      Filter = "ALL_AVAILABLE"
	FilterAllClosed         Filter = "ALL_CLOSED"
)

var allowedFilters = map[Filter]bool{
	FilterReporterActive:    true,
	FilterExecutorActive:    true,
	FilterReporterCompleted: true,
	FilterExecutorCompleted: true,
	FilterAllAvailable:      true,
	FilterAllClosed:         true,
}

func (f Filter) Valid() bool {
	return allowedFilters[f]
}
