package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"recruit-backend/internal/queue"
)

// Processor runs one decoded job. *interviews.Service implements it.
type Processor interface {
	ProcessJob(ctx context.Context, msg queue.Message) error
}

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure or an unknown job kind.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrMissingCandidateID indicates a message without a candidate id.
type ErrMissingCandidateID struct {
	Meta      MessageMeta
	Kind      queue.Kind
	RequestID string
}

func (e ErrMissingCandidateID) Error() string { return "missing candidate id" }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	Kind        queue.Kind
	CandidateID string
	RequestID   string
	Err         error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process " + string(e.Kind)
	}
	return "process " + string(e.Kind) + ": " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.CandidateID) == "" {
		return msg, meta, ErrMissingCandidateID{Meta: meta, Kind: msg.Kind, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// HandleMessage runs an already parsed message through the processor.
func HandleMessage(ctx context.Context, processor Processor, msg queue.Message) error {
	if processor == nil {
		return errors.New("job processor not configured")
	}
	if strings.TrimSpace(msg.CandidateID) == "" {
		return ErrMissingCandidateID{Kind: msg.Kind, RequestID: msg.RequestID}
	}
	if err := processor.ProcessJob(ctx, msg); err != nil {
		return ErrProcess{Kind: msg.Kind, CandidateID: msg.CandidateID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}
