package models

// JobState is a state of the vendor mockup job state machine
type JobState string

const (
	JobStateWaitAvailability JobState = "SUBMITTING_WAIT_AVAILABILITY"
	JobStateTaskCreated      JobState = "TASK_CREATED"
	JobStatePolling          JobState = "POLLING"
	JobStateCompleted        JobState = "COMPLETED"
	JobStateTimedOut         JobState = "TIMED_OUT"
	JobStateFailed           JobState = "FAILED"
	JobStateCancelled        JobState = "CANCELLED"
)

// Terminal reports whether no further transition can happen
func (s JobState) Terminal() bool {
	switch s {
	case JobStateCompleted, JobStateTimedOut, JobStateFailed, JobStateCancelled:
		return true
	}
	return false
}

// MockupJob tracks a single vendor-side mockup render
type MockupJob struct {
	ProductID            int64    `json:"productId"`
	VariantID            int      `json:"variantId"`
	TaskKey              string   `json:"taskKey,omitempty"`
	Status               string   `json:"status,omitempty"`
	State                JobState `json:"state"`
	MockupURL            string   `json:"mockupUrl,omitempty"`
	FilePath             string   `json:"-"`
	PublicPath           string   `json:"publicPath,omitempty"`
	AvailabilityAttempts int      `json:"availabilityAttempts"`
	PollAttempts         int      `json:"pollAttempts"`
}
