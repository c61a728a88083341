// Package quiz implements test authoring, listing, taking and scoring.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sl "quizserver/internal/lib/logger"
	"quizserver/internal/models"
	"quizserver/internal/storage"
)

var (
	ErrTestNotFound     = errors.New("test not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidPage      = errors.New("invalid page parameters")
)

const defaultPageSize = 10

type Storage interface {
	SaveTest(ctx context.Context, test models.Test) (int64, error)
	TestByID(ctx context.Context, id int64) (models.Test, error)
	Tests(ctx context.Context, offset, limit int, category, search string) ([]models.Test, int64, error)
	SaveQuestion(ctx context.Context, q models.Question) (int64, error)
	QuestionByID(ctx context.Context, id int64) (models.Question, error)
	QuestionsByTest(ctx context.Context, testID int64) ([]models.Question, error)
	SaveTestResult(ctx context.Context, res models.TestResult) (int64, error)
	TestResults(ctx context.Context) ([]models.TestResult, error)
	TestResultsByUser(ctx context.Context, userID int64) ([]models.TestResult, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
}

// Page is one page of a listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	CurrentPage   int   `json:"currentPage"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// Answer is a single selected option in a submitted test.
type Answer struct {
	QuestionID     int64  `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

type Service struct {
	log     *slog.Logger
	storage Storage
}

func New(log *slog.Logger, storage Storage) *Service {
	return &Service{log: log, storage: storage}
}

func (s *Service) CreateTest(ctx context.Context, test models.Test) (models.Test, error) {
	const op = "quiz.CreateTest"

	log := s.log.With(slog.String("op", op))

	id, err := s.storage.SaveTest(ctx, test)
	if err != nil {
		log.Error("failed to save test", sl.Err(err))
		return models.Test{}, fmt.Errorf("%s: %w", op, err)
	}

	test.ID = id

	log.Info("test created", slog.Int64("test_id", id))

	return test, nil
}

func (s *Service) AddQuestion(ctx context.Context, q models.Question) (models.Question, error) {
	const op = "quiz.AddQuestion"

	log := s.log.With(slog.String("op", op))

	if _, err := s.storage.TestByID(ctx, q.TestID); err != nil {
		if errors.Is(err, storage.ErrTestNotFound) {
			return models.Question{}, ErrTestNotFound
		}

		return models.Question{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.storage.SaveQuestion(ctx, q)
	if err != nil {
		if errors.Is(err, storage.ErrTestNotFound) {
			return models.Question{}, ErrTestNotFound
		}

		log.Error("failed to save question", sl.Err(err))
		return models.Question{}, fmt.Errorf("%s: %w", op, err)
	}

	q.ID = id

	log.Info("question added", slog.Int64("test_id", q.TestID), slog.Int64("question_id", id))

	return q, nil
}

// Tests returns one page of tests. Category and search filters are optional.
// Listed tests report their total duration (per-question time multiplied by
// the question count).
func (s *Service) Tests(ctx context.Context, page, size int, category, search string) (Page[models.Test], error) {
	const op = "quiz.Tests"

	if page < 0 || size < 0 {
		return Page[models.Test]{}, ErrInvalidPage
	}
	if size == 0 {
		size = defaultPageSize
	}

	tests, total, err := s.storage.Tests(ctx, page*size, size, category, search)
	if err != nil {
		return Page[models.Test]{}, fmt.Errorf("%s: %w", op, err)
	}

	for i := range tests {
		tests[i].Time *= int64(tests[i].QuestionCount)
	}

	totalPages := int((total + int64(size) - 1) / int64(size))

	return Page[models.Test]{
		Content:       tests,
		CurrentPage:   page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          page >= totalPages-1,
	}, nil
}

// TestWithQuestions returns a test (with its total duration) and its questions.
func (s *Service) TestWithQuestions(ctx context.Context, id int64) (models.Test, []models.Question, error) {
	const op = "quiz.TestWithQuestions"

	test, err := s.storage.TestByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrTestNotFound) {
			return models.Test{}, nil, ErrTestNotFound
		}

		return models.Test{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	questions, err := s.storage.QuestionsByTest(ctx, id)
	if err != nil {
		return models.Test{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	test.Time *= int64(test.QuestionCount)

	return test, questions, nil
}

// Submit scores a completed test and persists the result. An answer counts as
// correct when its selected option matches the question's correct option after
// normalization to a single letter A-D.
func (s *Service) Submit(ctx context.Context, userID, testID int64, answers []Answer) (models.TestResult, error) {
	const op = "quiz.Submit"

	log := s.log.With(slog.String("op", op))

	test, err := s.storage.TestByID(ctx, testID)
	if err != nil {
		if errors.Is(err, storage.ErrTestNotFound) {
			return models.TestResult{}, ErrTestNotFound
		}

		return models.TestResult{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.TestResult{}, ErrUserNotFound
		}

		return models.TestResult{}, fmt.Errorf("%s: %w", op, err)
	}

	correct := 0

	for _, answer := range answers {
		question, err := s.storage.QuestionByID(ctx, answer.QuestionID)
		if err != nil {
			if errors.Is(err, storage.ErrQuestionNotFound) {
				return models.TestResult{}, ErrQuestionNotFound
			}

			return models.TestResult{}, fmt.Errorf("%s: %w", op, err)
		}

		want := normalizeOption(question.CorrectOption)
		got := normalizeOption(answer.SelectedOption)

		if want != "" && want == got {
			correct++
		}
	}

	result := models.TestResult{
		TestID:         testID,
		UserID:         userID,
		TotalQuestions: test.QuestionCount,
		CorrectAnswers: correct,
		TestTitle:      test.Title,
		UserName:       user.Name,
	}
	if test.QuestionCount > 0 {
		result.Percentage = float64(correct) / float64(test.QuestionCount) * 100
	}

	id, err := s.storage.SaveTestResult(ctx, result)
	if err != nil {
		log.Error("failed to save result", sl.Err(err))
		return models.TestResult{}, fmt.Errorf("%s: %w", op, err)
	}

	result.ID = id

	log.Info("test submitted",
		slog.Int64("test_id", testID),
		slog.Int64("uid", userID),
		slog.Int("correct", correct),
	)

	return result, nil
}

func (s *Service) Results(ctx context.Context) ([]models.TestResult, error) {
	const op = "quiz.Results"

	results, err := s.storage.TestResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return results, nil
}

func (s *Service) ResultsByUser(ctx context.Context, userID int64) ([]models.TestResult, error) {
	const op = "quiz.ResultsByUser"

	results, err := s.storage.TestResultsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return results, nil
}

// normalizeOption reduces a selected option to a single letter A-D, or ""
// when it is not one.
func normalizeOption(value string) string {
	v := strings.ToUpper(strings.TrimSpace(value))
	switch v {
	case "A", "B", "C", "D":
		return v
	}

	return ""
}
