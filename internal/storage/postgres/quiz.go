package postgres

import (
	"context"
	"errors"
	"fmt"

	"quizserver/internal/models"
	"quizserver/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

func (r *PostgresRepo) SaveTest(ctx context.Context, test models.Test) (int64, error) {
	const op = "storage.postgres.SaveTest"

	query := `
		INSERT INTO tests (title, description, category, time)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, test.Title, test.Description, test.Category, test.Time).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) TestByID(ctx context.Context, id int64) (models.Test, error) {
	const op = "storage.postgres.TestByID"

	query := `
		SELECT t.id, t.title, t.description, t.category, t.time, COUNT(q.id)
		FROM tests t
		LEFT JOIN questions q ON q.test_id = t.id
		WHERE t.id = $1
		GROUP BY t.id;
	`

	var t models.Test

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Category,
		&t.Time,
		&t.QuestionCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Test{}, storage.ErrTestNotFound
		}

		return models.Test{}, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

// Tests returns one page of tests matching the optional category and title
// filters, plus the total number of matches.
func (r *PostgresRepo) Tests(ctx context.Context, offset, limit int, category, search string) ([]models.Test, int64, error) {
	const op = "storage.postgres.Tests"

	countQuery := `
		SELECT COUNT(*)
		FROM tests t
		WHERE ($1 = '' OR t.category = $1)
		  AND ($2 = '' OR t.title ILIKE '%' || $2 || '%');
	`

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, category, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT t.id, t.title, t.description, t.category, t.time, COUNT(q.id)
		FROM tests t
		LEFT JOIN questions q ON q.test_id = t.id
		WHERE ($1 = '' OR t.category = $1)
		  AND ($2 = '' OR t.title ILIKE '%' || $2 || '%')
		GROUP BY t.id
		ORDER BY t.id
		LIMIT $3 OFFSET $4;
	`

	rows, err := r.pool.Query(ctx, query, category, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var tests []models.Test

	for rows.Next() {
		var t models.Test

		err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.Time, &t.QuestionCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}

		tests = append(tests, t)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return tests, total, nil
}

func (r *PostgresRepo) SaveQuestion(ctx context.Context, q models.Question) (int64, error) {
	const op = "storage.postgres.SaveQuestion"

	query := `
		INSERT INTO questions (test_id, question_text, option_a, option_b, option_c, option_d, correct_option)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query,
		q.TestID, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return 0, storage.ErrTestNotFound
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) QuestionByID(ctx context.Context, id int64) (models.Question, error) {
	const op = "storage.postgres.QuestionByID"

	query := `
		SELECT id, test_id, question_text, option_a, option_b, option_c, option_d, correct_option
		FROM questions
		WHERE id = $1;
	`

	var q models.Question

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.TestID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Question{}, storage.ErrQuestionNotFound
		}

		return models.Question{}, fmt.Errorf("%s: %w", op, err)
	}

	return q, nil
}

func (r *PostgresRepo) QuestionsByTest(ctx context.Context, testID int64) ([]models.Question, error) {
	const op = "storage.postgres.QuestionsByTest"

	query := `
		SELECT id, test_id, question_text, option_a, option_b, option_c, option_d, correct_option
		FROM questions
		WHERE test_id = $1
		ORDER BY id;
	`

	rows, err := r.pool.Query(ctx, query, testID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var questions []models.Question

	for rows.Next() {
		var q models.Question

		err := rows.Scan(&q.ID, &q.TestID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		questions = append(questions, q)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return questions, nil
}

func (r *PostgresRepo) SaveTestResult(ctx context.Context, res models.TestResult) (int64, error) {
	const op = "storage.postgres.SaveTestResult"

	query := `
		INSERT INTO test_results (test_id, user_id, total_questions, correct_answers, percentage)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query,
		res.TestID, res.UserID, res.TotalQuestions, res.CorrectAnswers, res.Percentage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) TestResults(ctx context.Context) ([]models.TestResult, error) {
	return r.testResults(ctx, 0)
}

func (r *PostgresRepo) TestResultsByUser(ctx context.Context, userID int64) ([]models.TestResult, error) {
	return r.testResults(ctx, userID)
}

func (r *PostgresRepo) testResults(ctx context.Context, userID int64) ([]models.TestResult, error) {
	const op = "storage.postgres.testResults"

	query := `
		SELECT r.id, r.test_id, r.user_id, r.total_questions, r.correct_answers, r.percentage,
		       t.title, u.name
		FROM test_results r
		JOIN tests t ON t.id = r.test_id
		JOIN users u ON u.id = r.user_id
		WHERE ($1 = 0 OR r.user_id = $1)
		ORDER BY r.id;
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var results []models.TestResult

	for rows.Next() {
		var res models.TestResult

		err := rows.Scan(
			&res.ID, &res.TestID, &res.UserID,
			&res.TotalQuestions, &res.CorrectAnswers, &res.Percentage,
			&res.TestTitle, &res.UserName,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		results = append(results, res)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return results, nil
}
