// Package quiz exposes test authoring, listing, taking and result endpoints.
package quiz

import (
	"context"

	quizsvc "quizserver/internal/quiz"

	"quizserver/internal/models"
)

// Service is the part of the quiz service the handlers consume.
type Service interface {
	CreateTest(ctx context.Context, test models.Test) (models.Test, error)
	AddQuestion(ctx context.Context, q models.Question) (models.Question, error)
	Tests(ctx context.Context, page, size int, category, search string) (quizsvc.Page[models.Test], error)
	TestWithQuestions(ctx context.Context, id int64) (models.Test, []models.Question, error)
	Submit(ctx context.Context, userID, testID int64, answers []quizsvc.Answer) (models.TestResult, error)
	Results(ctx context.Context) ([]models.TestResult, error)
	ResultsByUser(ctx context.Context, userID int64) ([]models.TestResult, error)
}
