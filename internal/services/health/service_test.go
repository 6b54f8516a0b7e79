package health

import (
	"context"
	"errors"
	"testing"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		wantOK   bool
		database string
	}{
		{name: "memory", db: nil, wantOK: true, database: "memory"},
		{name: "postgres up", db: fakePinger{}, wantOK: true, database: "postgres"},
		{name: "postgres down", db: fakePinger{err: errors.New("refused")}, wantOK: false, database: "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.db, "local")
			got, ok := svc.Status(context.Background())
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got["ok"] != tt.wantOK {
				t.Fatalf("payload ok = %v, want %v", got["ok"], tt.wantOK)
			}
			if got["database"] != tt.database {
				t.Fatalf("database = %v, want %v", got["database"], tt.database)
			}
			if got["storage"] != "local" {
				t.Fatalf("storage = %v", got["storage"])
			}
		})
	}
}
