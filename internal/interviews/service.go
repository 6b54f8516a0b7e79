package interviews

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"recruit-backend/internal/candidates"
	"recruit-backend/internal/emotion"
	"recruit-backend/internal/extraction"
	"recruit-backend/internal/llm"
	"recruit-backend/internal/queue"
	"recruit-backend/internal/shared/storage/object"
	"recruit-backend/internal/shared/telemetry"
	"recruit-backend/internal/technology"
)

const (
	// OpeningQuestion always leads a generated question set.
	OpeningQuestion = "Tell me about yourself"

	MaxQuestions     = 10
	defaultQuestions = 5
)

var ratingRe = regexp.MustCompile(`(\d{1,2})\s*/?\s*10`)

// CandidateLookup is satisfied by candidates.Repo.
type CandidateLookup interface {
	GetByID(ctx context.Context, id string) (candidates.Candidate, error)
}

// EmotionAggregator is satisfied by *emotion.Aggregator.
type EmotionAggregator interface {
	Aggregate(ctx context.Context, photos []emotion.Photo) emotion.Summary
}

// Extractor is satisfied by *extraction.Pipeline.
type Extractor interface {
	Extract(ctx context.Context, text string, schema extraction.Schema) (extraction.Result, error)
}

// Service contains business logic for interview artifacts.
type Service struct {
	Store      object.ObjectStore
	Repo       Repo
	Candidates CandidateLookup
	Aggregator EmotionAggregator
	Extractor  Extractor
	Analyzer   extraction.TextAnalyzer
	Vocab      *technology.Vocabulary
	// Queue is optional. When set, summaries and ratings run on the worker.
	Queue queue.Client
	Now   func() time.Time
}

// UploadPhotos stores interview photos of a candidate. Only image payloads
// are accepted; whether a face can be found is decided at summary time.
func (s *Service) UploadPhotos(ctx context.Context, candidateID, requestID string, uploads []Upload) ([]Photo, error) {
	if err := s.ensureCandidate(ctx, candidateID); err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: at least one photo is required", ErrInvalidInput)
	}
	for _, up := range uploads {
		if len(up.Data) == 0 || !strings.HasPrefix(http.DetectContentType(up.Data), "image/") {
			return nil, fmt.Errorf("%w: %s is not an image", ErrInvalidInput, up.FileName)
		}
	}

	namespace := "candidates/" + candidateID + "/photos"
	out := make([]Photo, 0, len(uploads))
	for _, up := range uploads {
		key, size, mime, err := s.Store.Save(ctx, namespace, up.FileName, bytes.NewReader(up.Data))
		if err != nil {
			return out, fmt.Errorf("store photo: %w", err)
		}
		p := Photo{
			ID:          uuid.NewString(),
			CandidateID: candidateID,
			StorageKey:  key,
			FileName:    up.FileName,
			MimeType:    mime,
			SizeBytes:   size,
			CreatedAt:   s.now(),
		}
		if err := s.Repo.AddPhoto(ctx, p); err != nil {
			return out, err
		}
		out = append(out, p)
	}

	if s.Queue != nil {
		s.enqueue(ctx, s.message(queue.KindEmotionSummary, candidateID, "", requestID))
	}
	return out, nil
}

// ListPhotos returns the stored photos of a candidate.
func (s *Service) ListPhotos(ctx context.Context, candidateID string) ([]Photo, error) {
	if err := s.ensureCandidate(ctx, candidateID); err != nil {
		return nil, err
	}
	return s.Repo.ListPhotos(ctx, candidateID)
}

// RequestEmotionSummary queues a summary when a queue is configured and
// reports whether it did.
func (s *Service) RequestEmotionSummary(ctx context.Context, candidateID, requestID string) (bool, error) {
	if s.Queue == nil {
		return false, nil
	}
	if err := s.ensureCandidate(ctx, candidateID); err != nil {
		return false, err
	}
	err := s.Queue.Send(ctx, s.message(queue.KindEmotionSummary, candidateID, "", requestID))
	if err != nil {
		return false, fmt.Errorf("enqueue emotion summary: %w", err)
	}
	return true, nil
}

// SummarizeEmotions runs every stored photo through the aggregator and
// persists the result. Photos that cannot be read are skipped like photos
// that cannot be decoded.
func (s *Service) SummarizeEmotions(ctx context.Context, candidateID string) (EmotionReport, error) {
	if err := s.ensureCandidate(ctx, candidateID); err != nil {
		return EmotionReport{}, err
	}
	stored, err := s.Repo.ListPhotos(ctx, candidateID)
	if err != nil {
		return EmotionReport{}, err
	}

	photos := make([]emotion.Photo, 0, len(stored))
	for _, p := range stored {
		data, err := object.ReadAll(ctx, s.Store, p.StorageKey)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return EmotionReport{}, ctxErr
			}
			telemetry.Warn("interviews.photo_unreadable", map[string]any{
				"candidate_id": candidateID,
				"photo_id":     p.ID,
				"error":        err.Error(),
			})
			continue
		}
		photos = append(photos, emotion.Photo{Name: p.FileName, Data: data})
	}

	var summary emotion.Summary
	if s.Aggregator != nil {
		summary = s.Aggregator.Aggregate(ctx, photos)
	} else {
		summary = emotion.Summarize(nil, 0)
	}
	rep := EmotionReport{CandidateID: candidateID, Summary: summary, UpdatedAt: s.now()}
	if err := s.Repo.SaveEmotionReport(ctx, rep); err != nil {
		return EmotionReport{}, err
	}
	return rep, nil
}

// EmotionReport returns the last stored summary.
func (s *Service) EmotionReport(ctx context.Context, candidateID string) (EmotionReport, error) {
	if err := s.ensureCandidate(ctx, candidateID); err != nil {
		return EmotionReport{}, err
	}
	return s.Repo.GetEmotionReport(ctx, candidateID)
}

// ScoreCommunication grades written answers. With no answers given, the
// stored answers to the candidate's interview questions are used.
func (s *Service) ScoreCommunication(ctx context.Context, candidateID string, answers []string) (CommunicationScore, error) {
	if err := s.ensureCandidate(ctx, candidateID); err != nil {
		return CommunicationScore{}, err
	}
	text := answersText(answers)
	if text == "" {
		qs, err := s.Repo.ListQuestions(ctx, candidateID)
		if err != nil {
			return CommunicationScore{}, err
		}
		text = questionsText(qs)
	}
	if text == "" {
		return CommunicationScore{}, fmt.Errorf("%w: no answers to score", ErrInvalidInput)
	}

	res, err := s.Extractor.Extract(ctx, text, extraction.CommunicationSchema)
	if err != nil {
		return CommunicationScore{}, err
	}
	score := CommunicationScore{
		CandidateID:                     candidateID,
		GrammarExplanation:              res.Record.String("grammar_explanation"),
		ProfessionalLanguageExplanation: res.Record.String("professional_language_explanation"),
		LanguageUsed:                    res.Record.String("language_used"),
		UpdatedAt:                       s.now(),
	}
	if v := res.Record.Int("grammar"); v != nil {
		score.Grammar = *v
	}
	if v := res.Record.Int("professional_language"); v != nil {
		score.ProfessionalLanguage = *v
	}
	if err := s.Repo.SaveCommunication(ctx, score); err != nil {
		return CommunicationScore{}, err
	}
	return score, nil
}

// Communication returns the stored communication score.
func (s *Service) Communication(ctx context.Context, candidateID string) (CommunicationScore, error) {
	if err := s.ensureCandidate(ctx, candidateID); err != nil {
		return CommunicationScore{}, err
	}
	return s.Repo.GetCommunication(ctx, candidateID)
}

// GenerateQuestions replaces the candidate's interview questions with a new
// model generated set of at most MaxQuestions, opening with OpeningQuestion.
func (s *Service) GenerateQuestions(ctx context.Context, candidateID string, count int) ([]Question, error) {
	c, err := s.candidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = defaultQuestions
	}
	if count > MaxQuestions {
		count = MaxQuestions
	}

	texts := []string{OpeningQuestion}
	if count > 1 {
		raw, err := s.analyze(ctx, questionPrompt(c, s.vocab(), count), llm.StructuredJSON)
		if err != nil {
			return nil, err
		}
		if texts, err = ParseQuestions(raw, count); err != nil {
			return nil, fmt.Errorf("%w: %w", extraction.ErrUnprocessable, err)
		}
	}

	now := s.now()
	qs := make([]Question, 0, len(texts))
	for i, text := range texts {
		qs = append(qs, Question{
			ID:          uuid.NewString(),
			CandidateID: candidateID,
			Position:    i + 1,
			Text:        text,
			CreatedAt:   now,
		})
	}
	if err := s.Repo.ReplaceQuestions(ctx, candidateID, qs); err != nil {
		return nil, err
	}
	telemetry.Info("interviews.questions_generated", map[string]any{
		"candidate_id": candidateID,
		"count":        len(qs),
	})
	return qs, nil
}

// Questions lists the candidate's questions in order.
func (s *Service) Questions(ctx context.Context, candidateID string) ([]Question, error) {
	if err := s.ensureCandidate(ctx, candidateID); err != nil {
		return nil, err
	}
	return s.Repo.ListQuestions(ctx, candidateID)
}

// SubmitAnswer stores an answer and rates it, on the worker when a queue is
// configured and inline otherwise. An inline rating failure leaves the
// answer unrated.
func (s *Service) SubmitAnswer(ctx context.Context, candidateID, questionID, requestID, answer string) (Question, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Question{}, fmt.Errorf("%w: answer is required", ErrInvalidInput)
	}
	if err := s.ensureCandidate(ctx, candidateID); err != nil {
		return Question{}, err
	}
	if err := s.Repo.SaveAnswer(ctx, candidateID, questionID, answer); err != nil {
		return Question{}, err
	}

	if s.Queue != nil {
		s.enqueue(ctx, s.message(queue.KindRateAnswer, candidateID, questionID, requestID))
		return s.Repo.GetQuestion(ctx, candidateID, questionID)
	}
	q, err := s.RateAnswer(ctx, candidateID, questionID)
	if err != nil {
		telemetry.Warn("interviews.rating_failed", map[string]any{
			"candidate_id": candidateID,
			"question_id":  questionID,
			"error":        err.Error(),
		})
		return s.Repo.GetQuestion(ctx, candidateID, questionID)
	}
	return q, nil
}

// RateAnswer asks the model to rate a stored answer out of 10. The reply is
// stored with the rating; a reply without a readable rating stores a nil
// rating.
func (s *Service) RateAnswer(ctx context.Context, candidateID, questionID string) (Question, error) {
	q, err := s.Repo.GetQuestion(ctx, candidateID, questionID)
	if err != nil {
		return Question{}, err
	}
	if q.Answer == nil || strings.TrimSpace(*q.Answer) == "" {
		return Question{}, fmt.Errorf("%w: question has no answer", ErrInvalidInput)
	}

	reply, err := s.analyze(ctx, ratingPrompt(q.Text, *q.Answer), llm.PlainText)
	if err != nil {
		return Question{}, err
	}
	reply = strings.TrimSpace(reply)
	rating := ParseRating(reply)
	ratedAt := s.now()
	if err := s.Repo.SaveRating(ctx, candidateID, questionID, rating, reply, ratedAt); err != nil {
		return Question{}, err
	}
	q.Rating = rating
	q.AIResponse = &reply
	q.RatedAt = &ratedAt
	return q, nil
}

// ProcessJob runs one queued job.
func (s *Service) ProcessJob(ctx context.Context, msg queue.Message) error {
	switch msg.Kind {
	case queue.KindEmotionSummary:
		_, err := s.SummarizeEmotions(ctx, msg.CandidateID)
		return err
	case queue.KindRateAnswer:
		if strings.TrimSpace(msg.QuestionID) == "" {
			return fmt.Errorf("%w: question id is required", ErrInvalidInput)
		}
		_, err := s.RateAnswer(ctx, msg.CandidateID, msg.QuestionID)
		return err
	default:
		return fmt.Errorf("unknown job kind %q", msg.Kind)
	}
}

// ParseRating reads the first "N/10" or "N 10" rating out of a reply.
func ParseRating(reply string) *int {
	m := ratingRe.FindStringSubmatch(reply)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 10 {
		return nil
	}
	return &n
}

// ParseQuestions decodes {"questions": [...]} from a model reply, puts
// OpeningQuestion first and caps the list at limit.
func ParseQuestions(raw string, limit int) ([]string, error) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	if first, last := strings.Index(body, "{"), strings.LastIndex(body, "}"); first >= 0 && last > first {
		body = body[first : last+1]
	}
	var parsed struct {
		Questions []any `json:"questions"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	out := []string{OpeningQuestion}
	for _, item := range parsed.Questions {
		text, ok := item.(string)
		if !ok {
			if obj, isObj := item.(map[string]any); isObj {
				text, _ = obj["question"].(string)
			}
		}
		text = strings.TrimSpace(text)
		if text == "" || isOpening(text) {
			continue
		}
		out = append(out, text)
	}
	if len(out) == 1 {
		return nil, errors.New("no questions in reply")
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func isOpening(text string) bool {
	return strings.EqualFold(strings.TrimRight(text, ".?! "), OpeningQuestion)
}

func (s *Service) analyze(ctx context.Context, prompt string, shape llm.OutputShape) (string, error) {
	if s.Analyzer == nil {
		return "", fmt.Errorf("%w: %w", extraction.ErrProviderUnavailable, llm.ErrNotConfigured)
	}
	out, err := s.Analyzer.Analyze(ctx, prompt, shape)
	if err != nil {
		if !errors.Is(err, extraction.ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %w", extraction.ErrProviderUnavailable, err)
		}
		return "", err
	}
	return out, nil
}

func (s *Service) candidate(ctx context.Context, id string) (candidates.Candidate, error) {
	if strings.TrimSpace(id) == "" {
		return candidates.Candidate{}, fmt.Errorf("%w: candidate id is required", ErrInvalidInput)
	}
	c, err := s.Candidates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, candidates.ErrNotFound) {
			return candidates.Candidate{}, ErrCandidateNotFound
		}
		return candidates.Candidate{}, err
	}
	return c, nil
}

func (s *Service) ensureCandidate(ctx context.Context, id string) error {
	_, err := s.candidate(ctx, id)
	return err
}

func (s *Service) message(kind queue.Kind, candidateID, questionID, requestID string) queue.Message {
	return queue.Message{
		Kind:        kind,
		CandidateID: candidateID,
		QuestionID:  questionID,
		RequestID:   requestID,
		EnqueuedAt:  s.now().Format(time.RFC3339),
		Version:     queue.CurrentVersion,
	}
}

// enqueue is best effort; the job can be requested again through the API.
func (s *Service) enqueue(ctx context.Context, msg queue.Message) {
	if err := s.Queue.Send(ctx, msg); err != nil {
		telemetry.Error("interviews.enqueue_failed", map[string]any{
			"kind":         string(msg.Kind),
			"candidate_id": msg.CandidateID,
			"request_id":   msg.RequestID,
			"error":        err.Error(),
		})
	}
}

func (s *Service) vocab() *technology.Vocabulary {
	if s.Vocab != nil {
		return s.Vocab
	}
	return technology.Default()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func answersText(answers []string) string {
	var b strings.Builder
	n := 0
	for _, a := range answers {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		n++
		fmt.Fprintf(&b, "Answer %d: %s\n", n, a)
	}
	return strings.TrimSpace(b.String())
}

func questionsText(qs []Question) string {
	var b strings.Builder
	for _, q := range qs {
		if q.Answer == nil || strings.TrimSpace(*q.Answer) == "" {
			continue
		}
		fmt.Fprintf(&b, "Question %d: %s\nAnswer: %s\n\n", q.Position, q.Text, strings.TrimSpace(*q.Answer))
	}
	return strings.TrimSpace(b.String())
}

func questionPrompt(c candidates.Candidate, vocab *technology.Vocabulary, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d interview questions for a candidate.\n", count-1)
	if labels := vocab.DisplayNames(technology.Split(c.Technology)); len(labels) > 0 {
		b.WriteString("Technologies: " + strings.Join(labels, ", ") + "\n")
	}
	if c.Experience != "" {
		b.WriteString("Experience: " + c.Experience + "\n")
	}
	b.WriteString("Mix technical and behavioural questions. Do not include \"" + OpeningQuestion + "\".\n")
	b.WriteString(`Return JSON only: {"questions": ["..."]}`)
	return b.String()
}

func ratingPrompt(question, answer string) string {
	return "Rate the following interview answer out of 10. Reply with the rating as N/10 followed by one sentence.\n\n" +
		"Question: " + question + "\nAnswer: " + answer
}
