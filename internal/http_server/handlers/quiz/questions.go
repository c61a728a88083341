package quiz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	resp "quizserver/internal/lib/api/response"
	sl "quizserver/internal/lib/logger"
	"quizserver/internal/models"
	quizsvc "quizserver/internal/quiz"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type AddQuestionRequest struct {
	TestID        int64  `json:"testId" validate:"required"`
	Text          string `json:"questionText" validate:"required"`
	OptionA       string `json:"optionA" validate:"required"`
	OptionB       string `json:"optionB" validate:"required"`
	OptionC       string `json:"optionC" validate:"required"`
	OptionD       string `json:"optionD" validate:"required"`
	CorrectOption string `json:"correctOption" validate:"required,oneof=A B C D a b c d"`
}

type QuestionResponse struct {
	resp.Response
	Question models.Question `json:"question"`
}

func NewAddQuestion(log *slog.Logger, validate *validator.Validate, service Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quiz.NewAddQuestion"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req AddQuestionRequest

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

		question, err := service.AddQuestion(ctx, models.Question{
			TestID:        req.TestID,
			Text:          req.Text,
			OptionA:       req.OptionA,
			OptionB:       req.OptionB,
			OptionC:       req.OptionC,
			OptionD:       req.OptionD,
			CorrectOption: req.CorrectOption,
		})
		if err != nil {
			if errors.Is(err, quizsvc.ErrTestNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("test not found"))

				return
			}

			log.Error("failed to add question", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, QuestionResponse{
			Response: resp.OK(),
			Question: question,
		})
	}
}
