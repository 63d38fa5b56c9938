package nats

import (
	"encoding/json"
	"time"
)

// reindexMessage is the wire form of a rebuild request. RequestedAt is
// stamped by the publisher so the consumer can measure queue lag.
type reindexMessage struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

func encodeReindexMessage(reason string, requestedAt time.Time) ([]byte, error) {
	return json.Marshal(reindexMessage{Reason: reason, RequestedAt: requestedAt})
}

// decodeReindexMessage tolerates bare-string payloads published by hand
// (nats CLI). Those carry no timestamp.
func decodeReindexMessage(data []byte) reindexMessage {
	var msg reindexMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Reason == "" {
		return reindexMessage{Reason: string(data)}
	}
	return msg
}
