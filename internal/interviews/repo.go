package interviews

import (
	"context"
	"time"
)

// Repo defines persistence for interview artifacts of a candidate.
type Repo interface {
	AddPhoto(ctx context.Context, p Photo) error
	ListPhotos(ctx context.Context, candidateID string) ([]Photo, error)

	SaveEmotionReport(ctx context.Context, r EmotionReport) error
	GetEmotionReport(ctx context.Context, candidateID string) (EmotionReport, error)
	ListEmotionReports(ctx context.Context) ([]EmotionReport, error)

	SaveCommunication(ctx context.Context, s CommunicationScore) error
	GetCommunication(ctx context.Context, candidateID string) (CommunicationScore, error)

	ReplaceQuestions(ctx context.Context, candidateID string, qs []Question) error
	ListQuestions(ctx context.Context, candidateID string) ([]Question, error)
	GetQuestion(ctx context.Context, candidateID, questionID string) (Question, error)
	SaveAnswer(ctx context.Context, candidateID, questionID, answer string) error
	SaveRating(ctx context.Context, candidateID, questionID string, rating *int, aiResponse string, ratedAt time.Time) error
}
