package interviews

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu        sync.RWMutex
	photos    map[string][]Photo
	emotions  map[string]EmotionReport
	scores    map[string]CommunicationScore
	questions map[string][]Question
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		photos:    make(map[string][]Photo),
		emotions:  make(map[string]EmotionReport),
		scores:    make(map[string]CommunicationScore),
		questions: make(map[string][]Question),
	}
}

func (r *MemoryRepo) AddPhoto(ctx context.Context, p Photo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.photos[p.CandidateID] = append(r.photos[p.CandidateID], p)
	return nil
}

func (r *MemoryRepo) ListPhotos(ctx context.Context, candidateID string) ([]Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Photo{}, r.photos[candidateID]...), nil
}

func (r *MemoryRepo) SaveEmotionReport(ctx context.Context, rep EmotionReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emotions[rep.CandidateID] = rep
	return nil
}

func (r *MemoryRepo) GetEmotionReport(ctx context.Context, candidateID string) (EmotionReport, error) {
	if err := ctx.Err(); err != nil {
		return EmotionReport{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.emotions[candidateID]
	if !ok {
		return EmotionReport{}, ErrNotFound
	}
	return rep, nil
}

// ListEmotionReports returns every report, most recently updated first.
func (r *MemoryRepo) ListEmotionReports(ctx context.Context) ([]EmotionReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]EmotionReport, 0, len(r.emotions))
	for _, rep := range r.emotions {
		out = append(out, rep)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].CandidateID < out[j].CandidateID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) SaveCommunication(ctx context.Context, s CommunicationScore) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores[s.CandidateID] = s
	return nil
}

func (r *MemoryRepo) GetCommunication(ctx context.Context, candidateID string) (CommunicationScore, error) {
	if err := ctx.Err(); err != nil {
		return CommunicationScore{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scores[candidateID]
	if !ok {
		return CommunicationScore{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepo) ReplaceQuestions(ctx context.Context, candidateID string, qs []Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[candidateID] = append([]Question{}, qs...)
	return nil
}

func (r *MemoryRepo) ListQuestions(ctx context.Context, candidateID string) ([]Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := append([]Question{}, r.questions[candidateID]...)
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *MemoryRepo) GetQuestion(ctx context.Context, candidateID, questionID string) (Question, error) {
	if err := ctx.Err(); err != nil {
		return Question{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, q := range r.questions[candidateID] {
		if q.ID == questionID {
			return q, nil
		}
	}
	return Question{}, ErrNotFound
}

// SaveAnswer stores the answer and clears any earlier rating.
func (r *MemoryRepo) SaveAnswer(ctx context.Context, candidateID, questionID, answer string) error {
	return r.update(ctx, candidateID, questionID, func(q *Question) {
		a := answer
		q.Answer = &a
		q.Rating = nil
		q.AIResponse = nil
		q.RatedAt = nil
	})
}

func (r *MemoryRepo) SaveRating(ctx context.Context, candidateID, questionID string, rating *int, aiResponse string, ratedAt time.Time) error {
	return r.update(ctx, candidateID, questionID, func(q *Question) {
		q.Rating = rating
		reply := aiResponse
		q.AIResponse = &reply
		at := ratedAt
		q.RatedAt = &at
	})
}

func (r *MemoryRepo) update(ctx context.Context, candidateID, questionID string, fn func(q *Question)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	qs := r.questions[candidateID]
	for i := range qs {
		if qs[i].ID == questionID {
			fn(&qs[i])
			return nil
		}
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)
