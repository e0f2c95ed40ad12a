package amqp

import "testing"

func TestRunCompletedMessageRoundTrip(t *testing.T) {
	msg := NewRunCompletedMessage("run-1", []string{"W1", "W2"})
	msg.PeopleTotal = 10
	msg.AttendanceAdded = 4

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := RunCompletedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RunID != "run-1" || len(got.Webinars) != 2 || got.AttendanceAdded != 4 {
		t.Fatalf("unexpected message: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}
}
