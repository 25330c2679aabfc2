package domain

import (
	"encoding/json"
	"time"
)

const (
	EntityTask    = "task"
	EntityMember  = "member"
	EntityProject = "project"

	EntityInvitation = "invitation"
)

// Activity records an accepted lifecycle mutation for auditing.
type Activity struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Action    string          `json:"action"`
	ActorID   string          `json:"actor_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewActivity snapshots payload as JSON. A payload that cannot be encoded is dropped.
func NewActivity(projectID, entity, entityID, action, actorID string, payload interface{}) Activity {
	a := Activity{
		ProjectID: projectID,
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		ActorID:   actorID,
		CreatedAt: time.Now(),
	}
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			a.Payload = b
		}
	}
	return a
}
