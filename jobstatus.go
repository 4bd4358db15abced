package qiskitruntime

import "encoding/json"

// Job status values reported by the service.
const (
	StatusQueued    = "Queued"
	StatusRunning   = "Running"
	StatusCompleted = "Completed"
	StatusFailed    = "Failed"
	StatusCancelled = "Cancelled"
)

// JobStatus is the status snapshot of a job. Fields the service adds beyond
// the known ones are preserved and reachable through Get.
type JobStatus struct {
	JobID     string
	Status    string
	StatusMsg string

	extra map[string]json.RawMessage
}

// Terminal reports whether the status is final.
func (s *JobStatus) Terminal() bool {
	switch s.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Get returns a raw extra field carried alongside the known ones.
func (s *JobStatus) Get(name string) (json.RawMessage, bool) {
	raw, ok := s.extra[name]
	return raw, ok
}

func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	take := func(name string, into *string) {
		if raw, ok := fields[name]; ok {
			_ = json.Unmarshal(raw, into)
			delete(fields, name)
		}
	}
	take("job_id", &s.JobID)
	take("status", &s.Status)
	take("status_msg", &s.StatusMsg)
	s.extra = fields
	return nil
}

func (s JobStatus) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.extra)+3)
	for name, raw := range s.extra {
		out[name] = raw
	}
	out["job_id"] = s.JobID
	out["status"] = s.Status
	out["status_msg"] = s.StatusMsg
	return json.Marshal(out)
}
