package domain

import "time"

type Operation string

const (
	OperationAdd    Operation = "add"
	OperationRemove Operation = "remove"
)

func OperationForDelta(delta int) Operation {
	if delta > 0 {
		return OperationAdd
	}
	return OperationRemove
}

func (o Operation) Valid() bool {
	return o == OperationAdd || o == OperationRemove
}

// LogEntry records one stock mutation. Article and Location are copied from
// the item at mutation time so history does not follow later edits.
type LogEntry struct {
	ID            string
	Timestamp     time.Time
	Article       string
	Location      string
	Operation     Operation
	PreviousStock int
	NewStock      int
	User          string
}

// ApplyDelta is the stock arithmetic shared by every mutation path.
func ApplyDelta(previous, delta int) int {
	next := previous + delta
	if next < 0 {
		return 0
	}
	return next
}

// NewLogEntry records delta applied at location on item, starting from
// previous.
func NewLogEntry(id string, item Item, location string, previous, delta int, user string, at time.Time) LogEntry {
	return LogEntry{
		ID:            id,
		Timestamp:     at.UTC(),
		Article:       item.Article,
		Location:      location,
		Operation:     OperationForDelta(delta),
		PreviousStock: previous,
		NewStock:      ApplyDelta(previous, delta),
		User:          user,
	}
}
