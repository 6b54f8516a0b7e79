package queue

import (
	"reflect"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		Kind:        KindRateAnswer,
		CandidateID: "cand-123",
		QuestionID:  "q-1",
		RequestID:   "request-456",
		EnqueuedAt:  "2026-01-30T22:00:00Z",
		Version:     CurrentVersion,
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
}

func TestDecodeMessageDefaultsKind(t *testing.T) {
	got, err := DecodeMessage([]byte(`{"candidateId":"c1","version":1}`))
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if got.Kind != KindEmotionSummary {
		t.Fatalf("expected %s, got %s", KindEmotionSummary, got.Kind)
	}
}

func TestDecodeMessageRejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "malformed", payload: `{`},
		{name: "unknown kind", payload: `{"kind":"resize_photo","candidateId":"c1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeMessage([]byte(tt.payload)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
