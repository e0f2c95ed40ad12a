package amqp

import (
	"encoding/json"
	"time"
)

// RunCompletedMessage announces that a pipeline run committed its masters.
// It carries only the run totals; consumers fetch details from the store.
type RunCompletedMessage struct {
	RunID           string    `json:"run_id"`
	Webinars        []string  `json:"webinars"`
	PeopleTotal     int       `json:"people_total"`
	PeopleNew       int       `json:"people_new"`
	AttendanceTotal int       `json:"attendance_total"`
	AttendanceAdded int       `json:"attendance_added"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewRunCompletedMessage creates a run-completed message stamped now.
func NewRunCompletedMessage(runID string, webinars []string) *RunCompletedMessage {
	return &RunCompletedMessage{
		RunID:     runID,
		Webinars:  webinars,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RunCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func RunCompletedMessageFromJSON(data []byte) (*RunCompletedMessage, error) {
	var msg RunCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
