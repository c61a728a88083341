package signup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"quizserver/internal/auth"
	resp "quizserver/internal/lib/api/response"
	sl "quizserver/internal/lib/logger"
	"quizserver/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

type Response struct {
	resp.Response
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

type SessionStarter interface {
	SignUp(ctx context.Context, email, password, name string) (auth.Session, error)
}

type Publisher interface {
	Publish(ctx context.Context, msg models.Message) error
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService SessionStarter,
	publisher Publisher,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.signup.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		session, err := authService.SignUp(ctx, req.Email, req.Password, req.Name)
		if err != nil {
			if errors.Is(err, auth.ErrUserExists) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("user with this email already exists"))

				return
			}

			log.Error("failed to sign up user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		// Welcome mail is best effort; the account and session are already live.
		if err := publisher.Publish(ctx, models.Message{
			Email:   session.User.Email,
			Name:    session.User.Name,
			Purpose: "welcome",
		}); err != nil {
			log.Warn("failed to publish welcome message", sl.Err(err))
		}

		log.Info("user signed up", slog.Int64("uid", session.User.ID))

		render.JSON(w, r, Response{
			Response:     resp.OK(),
			AccessToken:  session.AccessToken,
			RefreshToken: session.RefreshToken,
			User:         session.User,
		})
	}
}
