package amqp

import (
	"encoding/json"
	"time"
)

// CostCreatedMessage announces a freshly stored cost to the tally worker.
// It carries only the ID; the worker fetches the full row from the database.
type CostCreatedMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewCostCreatedMessage(id int64) *CostCreatedMessage {
	return &CostCreatedMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *CostCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func CostCreatedMessageFromJSON(data []byte) (*CostCreatedMessage, error) {
	var msg CostCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
