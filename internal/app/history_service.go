package app

import (
	"context"
	"errors"
	"sort"
	"strings"

	"campusmate/internal/model"
	"campusmate/internal/repository"
)

var (
	ErrInvalidQuizResult = errors.New("total_questions must be greater than 0")
	ErrResultEnqueue     = errors.New("quiz result enqueue failed")
)

// QuizResultPublisher hands a finished quiz off for async persistence.
type QuizResultPublisher interface {
	Publish(ctx context.Context, entry model.QuizHistory) error
}

// HistoryListCache is the Redis-backed cache for a user's quiz history.
type HistoryListCache interface {
	GetHistory(ctx context.Context, userID uint) ([]model.QuizHistory, bool, error)
	SetHistory(ctx context.Context, userID uint, history []model.QuizHistory) error
	DeleteHistory(ctx context.Context, userID uint) error
	MarkDirty(ctx context.Context, userID uint) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}

type HistoryService struct {
	historyRepo *repository.QuizHistoryRepository
	userRepo    *repository.UserRepository
	publisher   QuizResultPublisher
	cache       HistoryListCache
}

func NewHistoryService(
	historyRepo *repository.QuizHistoryRepository,
	userRepo *repository.UserRepository,
	publisher QuizResultPublisher,
	cache HistoryListCache,
) *HistoryService {
	return &HistoryService{
		historyRepo: historyRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		cache:       cache,
	}
}

type SaveQuizResultInput struct {
	UserID         uint
	Topic          string
	Score          int
	TotalQuestions int
}

// SaveResult computes the percentage and enqueues the row for the persist
// worker. The caller gets the percentage back immediately.
func (s *HistoryService) SaveResult(ctx context.Context, input SaveQuizResultInput) (int, error) {
	if input.UserID == 0 {
		return 0, ErrInvalidInput
	}
	if input.TotalQuestions <= 0 {
		return 0, ErrInvalidQuizResult
	}

	topic := strings.TrimSpace(input.Topic)
	if topic == "" {
		topic = "General"
	}

	percentage := input.Score * 100 / input.TotalQuestions

	entry := model.QuizHistory{
		UserID:         input.UserID,
		Topic:          topic,
		Score:          input.Score,
		TotalQuestions: input.TotalQuestions,
		Percentage:     percentage,
	}

	if s.publisher == nil {
		return 0, ErrResultEnqueue
	}
	if s.cache != nil {
		_ = s.cache.MarkDirty(ctx, input.UserID)
		_ = s.cache.DeleteHistory(ctx, input.UserID)
	}
	if err := s.publisher.Publish(ctx, entry); err != nil {
		return 0, ErrResultEnqueue
	}
	return percentage, nil
}

func (s *HistoryService) List(ctx context.Context, userID uint) ([]model.QuizHistory, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		if dirty, err := s.cache.IsDirty(ctx, userID); err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.GetHistory(ctx, userID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	history, err := s.historyRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if dirty, err := s.cache.IsDirty(ctx, userID); err == nil && !dirty {
			_ = s.cache.SetHistory(ctx, userID, history)
		}
	}
	return history, nil
}

type StudyPlan struct {
	StudyGoal            string             `json:"study_goal"`
	WeakTopics           []string           `json:"weak_topics"`
	StrongTopics         []string           `json:"strong_topics"`
	AverageScores        map[string]float64 `json:"average_scores,omitempty"`
	TrendAnalysis        map[string]string  `json:"trend_analysis,omitempty"`
	RecommendedAction    string             `json:"recommended_action"`
	Plan                 string             `json:"study_plan"`
	RecommendedHoursWeek int                `json:"recommended_study_hours_per_week"`
	Message              string             `json:"message,omitempty"`
}

// Recommend derives a study plan from the user's quiz history: per-topic
// averages, first-vs-last trend, weak (<70) and strong (>=85) topics.
func (s *HistoryService) Recommend(ctx context.Context, userID uint) (*StudyPlan, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	history, err := s.historyRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	if len(history) == 0 {
		return &StudyPlan{
			StudyGoal:            user.StudyGoal,
			WeakTopics:           []string{},
			StrongTopics:         []string{},
			RecommendedAction:    "Start with a diagnostic quiz to detect weak areas",
			Plan:                 "Take 1-2 quizzes to build your personalized learning profile",
			RecommendedHoursWeek: user.StudyHoursPerWeek,
			Message:              "No quiz history yet",
		}, nil
	}

	topicScores := make(map[string][]int)
	for _, record := range history {
		topicScores[record.Topic] = append(topicScores[record.Topic], record.Percentage)
	}

	avgScores := make(map[string]float64, len(topicScores))
	trendMap := make(map[string]string, len(topicScores))
	for topic, scores := range topicScores {
		sum := 0
		for _, v := range scores {
			sum += v
		}
		avgScores[topic] = float64(sum) / float64(len(scores))
		trendMap[topic] = calculateTrend(scores)
	}

	var weak, strong []string
	for topic, avg := range avgScores {
		if avg < 70 {
			weak = append(weak, topic)
		}
		if avg >= 85 {
			strong = append(strong, topic)
		}
	}
	sort.Strings(weak)
	sort.Strings(strong)

	hours := user.StudyHoursPerWeek
	if len(weak) > 0 {
		hours += 2
	}
	if len(weak) >= 3 {
		hours += 2
	}

	action := "Excellent performance. Move to advanced topics."
	if len(weak) > 0 {
		action = "Prioritize weak subjects: " + strings.Join(weak, ", ")
	}

	return &StudyPlan{
		StudyGoal:            user.StudyGoal,
		WeakTopics:           weak,
		StrongTopics:         strong,
		AverageScores:        avgScores,
		TrendAnalysis:        trendMap,
		RecommendedAction:    action,
		Plan:                 buildStudyPlan(user.StudyGoal, weak, trendMap),
		RecommendedHoursWeek: hours,
	}, nil
}

func calculateTrend(scores []int) string {
	if len(scores) < 2 {
		return "stable"
	}
	switch {
	case scores[len(scores)-1] > scores[0]:
		return "improving"
	case scores[len(scores)-1] < scores[0]:
		return "declining"
	default:
		return "stable"
	}
}

func buildStudyPlan(studyGoal string, weakTopics []string, trendMap map[string]string) string {
	if len(weakTopics) == 0 {
		if studyGoal == "exam" {
			return "You are performing well. Continue full exam simulations and timed quizzes."
		}
		return "Maintain your current learning pace and explore advanced topics."
	}

	var declining []string
	for _, t := range weakTopics {
		if trendMap[t] == "declining" {
			declining = append(declining, t)
		}
	}

	switch studyGoal {
	case "exam":
		if len(declining) > 0 {
			return "Urgent focus on declining subjects: " + strings.Join(declining, ", ") +
				". Do daily quizzes and revision sessions."
		}
		return "Focus on intensive exam preparation for: " + strings.Join(weakTopics, ", ") +
			". Practice quizzes daily and review mistakes."
	case "revision":
		return "Revise weak subjects: " + strings.Join(weakTopics, ", ") +
			" with notes, summaries, and explanation-based learning."
	default:
		return "Study weak topics step by step: " + strings.Join(weakTopics, ", ") +
			" using quizzes and concept explanations."
	}
}
