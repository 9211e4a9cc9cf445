package model

import "time"

// RunStatus tracks a search run through the pipeline.
type RunStatus string

const (
	RunStatusPending       RunStatus = "pending"
	RunStatusFindingPeople RunStatus = "finding_people"
	RunStatusFindingEmails RunStatus = "finding_emails"
	RunStatusCompleted     RunStatus = "completed"
	RunStatusFailed        RunStatus = "failed"
)

// ActivityType classifies an activity-log entry.
type ActivityType string

const (
	ActivityStatus      ActivityType = "status"
	ActivityPersonFound ActivityType = "person_found"
	ActivityEmailFound  ActivityType = "email_found"
	ActivityError       ActivityType = "error"
	ActivityComplete    ActivityType = "complete"
)

// ActivityEntry is one timestamped event in a run's append-only log.
type ActivityEntry struct {
	Timestamp time.Time    `json:"timestamp"`
	Message   string       `json:"message"`
	Type      ActivityType `json:"type"`
}

// SearchRequest is the caller's input to a run.
type SearchRequest struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Website string `json:"website,omitempty"`
	JobURL  string `json:"job_url,omitempty"`
}

// Run is the persisted record of one pipeline execution. The activity
// log is append-only for the lifetime of the run.
type Run struct {
	ID          string          `json:"id"`
	Status      RunStatus       `json:"status"`
	Request     SearchRequest   `json:"request"`
	Contacts    []Contact       `json:"contacts"`
	Emails      []ResolvedEmail `json:"emails"`
	JobContext  *JobContext     `json:"job_context,omitempty"`
	ActivityLog []ActivityEntry `json:"activity_log"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AppendActivity adds an entry to the run's activity log.
func (r *Run) AppendActivity(typ ActivityType, message string) {
	r.ActivityLog = append(r.ActivityLog, ActivityEntry{
		Timestamp: time.Now().UTC(),
		Message:   message,
		Type:      typ,
	})
}
