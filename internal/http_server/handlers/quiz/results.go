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

type SubmitRequest struct {
	TestID    int64            `json:"testId" validate:"required"`
	UserID    int64            `json:"userId" validate:"required"`
	Responses []quizsvc.Answer `json:"responses" validate:"required,dive"`
}

type ResultResponse struct {
	resp.Response
	Result models.TestResult `json:"result"`
}

type ResultsResponse struct {
	resp.Response
	Results []models.TestResult `json:"results"`
}

func NewSubmit(log *slog.Logger, validate *validator.Validate, service Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quiz.NewSubmit"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req SubmitRequest

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

		result, err := service.Submit(ctx, req.UserID, req.TestID, req.Responses)
		if err != nil {
			switch {
			case errors.Is(err, quizsvc.ErrTestNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("test not found"))
			case errors.Is(err, quizsvc.ErrUserNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("user not found"))
			case errors.Is(err, quizsvc.ErrQuestionNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("question not found"))
			default:
				log.Error("failed to submit test", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))
			}

			return
		}

		log.Info("test submitted", slog.Int64("test_id", req.TestID), slog.Int64("uid", req.UserID))

		render.JSON(w, r, ResultResponse{
			Response: resp.OK(),
			Result:   result,
		})
	}
}

func NewResults(log *slog.Logger, service Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quiz.NewResults"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		results, err := service.Results(ctx)
		if err != nil {
			log.Error("failed to load results", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, ResultsResponse{
			Response: resp.OK(),
			Results:  results,
		})
	}
}

func NewResultsByUser(log *slog.Logger, service Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quiz.NewResultsByUser"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid user id"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		results, err := service.ResultsByUser(ctx, userID)
		if err != nil {
			log.Error("failed to load results", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, ResultsResponse{
			Response: resp.OK(),
			Results:  results,
		})
	}
}
