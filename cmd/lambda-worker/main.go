package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"recruit-backend/internal/bootstrap"
	"recruit-backend/internal/shared/config"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/telemetry"
	"recruit-backend/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
)

func initApp() {
	cfg := config.Load()
	built, err := bootstrap.Build(context.Background(), cfg)
	if err != nil {
		initErr = err
		return
	}
	app = built
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}
	return handleEvent(ctx, app.InterviewsService, event), nil
}

// handleEvent reports failed jobs back to SQS for redelivery. Records that
// can never succeed are dropped.
func handleEvent(ctx context.Context, processor workerproc.Processor, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		metrics.IncJobsReceived()
		fields := map[string]any{"message_id": record.MessageId}

		msg, meta, err := workerproc.ParseMessage(record.Body)
		if err != nil {
			metrics.IncJobsDropped()
			fields["body_len"] = meta.BodyLen
			fields["error"] = err.Error()
			telemetry.Error("lambda.job.dropped", fields)
			continue
		}
		fields["kind"] = string(msg.Kind)
		fields["candidate_id"] = msg.CandidateID
		if msg.RequestID != "" {
			fields["request_id"] = msg.RequestID
		}

		if err := workerproc.HandleMessage(ctx, processor, msg); err != nil {
			var procErr workerproc.ErrProcess
			if errors.As(err, &procErr) && procErr.Err != nil {
				err = procErr.Err
			}
			metrics.IncJobsFailed()
			fields["error"] = err.Error()
			telemetry.Error("lambda.job.failed", fields)
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
			continue
		}
		metrics.IncJobsCompleted()
		telemetry.Info("lambda.job.completed", fields)
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func main() {
	lambda.Start(handler)
}
