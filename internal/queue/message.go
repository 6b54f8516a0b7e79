package queue

import (
	"encoding/json"
	"fmt"
)

// Kind selects the job a worker runs for a message.
type Kind string

const (
	KindEmotionSummary Kind = "emotion_summary"
	KindRateAnswer     Kind = "rate_answer"
)

// CurrentVersion is stamped on every message this build produces.
const CurrentVersion = 1

// Message is the payload sent to downstream queue consumers.
type Message struct {
	Kind        Kind   `json:"kind"`
	CandidateID string `json:"candidateId"`
	QuestionID  string `json:"questionId,omitempty"`
	RequestID   string `json:"requestId"`
	EnqueuedAt  string `json:"enqueuedAt"`
	Version     int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message. Messages without a kind
// predate answer rating and are emotion summary jobs.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Kind == "" {
		msg.Kind = KindEmotionSummary
	}
	switch msg.Kind {
	case KindEmotionSummary, KindRateAnswer:
	default:
		return Message{}, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	return msg, nil
}
