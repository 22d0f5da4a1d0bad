package domain

// TaskType identifies the kind of asynchronous work a job performs.
type TaskType string

const (
	TaskTypeExtract  TaskType = "extract"
	TaskTypeEmbed    TaskType = "embed"
	TaskTypePipeline TaskType = "pipeline"
)

// ValidTaskTypes lists the task types accepted by the job trigger endpoints.
var ValidTaskTypes = map[TaskType]bool{
	TaskTypeExtract:  true,
	TaskTypeEmbed:    true,
	TaskTypePipeline: true,
}

// JobStatus represents the lifecycle of a job.
type JobStatus string

const (
	JobStatusQueued      JobStatus = "queued"
	JobStatusProcessing  JobStatus = "processing"
	JobStatusNeedsReview JobStatus = "needs_review"
	JobStatusDone        JobStatus = "done"
	JobStatusFailed      JobStatus = "failed"
)

// IsTerminal reports whether the status is a terminal job state.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusNeedsReview, JobStatusDone, JobStatusFailed:
		return true
	}
	return false
}

// StepStatus represents the state of a single step inside a pipeline job.
type StepStatus string

const (
	StepStatusQueued     StepStatus = "queued"
	StepStatusProcessing StepStatus = "processing"
	StepStatusDone       StepStatus = "done"
	StepStatusFailed     StepStatus = "failed"
	StepStatusSkipped    StepStatus = "skipped"
)

// ValidationStatus classifies an extraction result.
type ValidationStatus string

const (
	ValidationStatusPassed  ValidationStatus = "PASSED"
	ValidationStatusFlagged ValidationStatus = "FLAGGED"
	ValidationStatusFailed  ValidationStatus = "FAILED"
)
