package quiz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	resp "quizserver/internal/lib/api/response"
	sl "quizserver/internal/lib/logger"
	"quizserver/internal/models"
	quizsvc "quizserver/internal/quiz"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type CreateTestRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Time        int64  `json:"time" validate:"required,gt=0"`
}

type TestResponse struct {
	resp.Response
	Test models.Test `json:"test"`
}

type ListResponse struct {
	resp.Response
	quizsvc.Page[models.Test]
}

type TestDetailsResponse struct {
	resp.Response
	Test      models.Test       `json:"test"`
	Questions []models.Question `json:"questions"`
}

func NewCreateTest(log *slog.Logger, validate *validator.Validate, service Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quiz.NewCreateTest"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req CreateTestRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		test, err := service.CreateTest(ctx, models.Test{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Time:        req.Time,
		})
		if err != nil {
			log.Error("failed to create test", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, TestResponse{
			Response: resp.OK(),
			Test:     test,
		})
	}
}

func NewListTests(log *slog.Logger, service Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quiz.NewListTests"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		page, err := queryInt(r, "page", 0)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid page parameter"))

			return
		}

		size, err := queryInt(r, "size", 0)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid size parameter"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := service.Tests(ctx, page, size,
			r.URL.Query().Get("category"),
			r.URL.Query().Get("search"),
		)
		if err != nil {
			if errors.Is(err, quizsvc.ErrInvalidPage) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("invalid page parameters"))

				return
			}

			log.Error("failed to list tests", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, ListResponse{
			Response: resp.OK(),
			Page:     result,
		})
	}
}

func NewGetTest(log *slog.Logger, service Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quiz.NewGetTest"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid test id"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		test, questions, err := service.TestWithQuestions(ctx, id)
		if err != nil {
			if errors.Is(err, quizsvc.ErrTestNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("test not found"))

				return
			}

			log.Error("failed to get test", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, TestDetailsResponse{
			Response:  resp.OK(),
			Test:      test,
			Questions: questions,
		})
	}
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	return strconv.Atoi(raw)
}
