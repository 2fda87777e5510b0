package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ProfileEvent struct {
	Type      string    `json:"type"`
	ProfileID uuid.UUID `json:"profile_id"`
	Timestamp string    `json:"timestamp"`
}

// Notifier turns profile mutations into hub broadcasts.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) PublishProfileEvent(kind string, id uuid.UUID) {
	if n == nil || n.hub == nil {
		return
	}

	evt := ProfileEvent{
		Type:      kind,
		ProfileID: id,
		Timestamp: n.now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}

	n.hub.Broadcast(b)
}
