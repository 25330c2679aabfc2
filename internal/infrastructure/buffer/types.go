package buffer

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	EntityTask   = "task"
	EntityMember = "member"

	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

const (
	PriorityMember = 3
	PriorityTask   = 4

	defaultPriority = 3
	maxPriority     = 5
)

// ErrFull is returned by Enqueue once the store holds its configured maximum.
var ErrFull = errors.New("buffer is full")

// Item is a record-store write deferred while Postgres is unreachable.
type Item struct {
	ID        string          `json:"id"`
	RecordID  string          `json:"record_id"`
	ActorID   string          `json:"actor_id,omitempty"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	// Activity is the audit entry to append once the write lands.
	Activity json.RawMessage `json:"activity,omitempty"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > maxPriority {
		i.Priority = defaultPriority
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
