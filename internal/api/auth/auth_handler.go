package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/snetlabs/social-network/internal/api"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// HandlerImpl handles HTTP requests for registration and login.
type HandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Register"))

	var req RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid registration request: "+err.Error())
		return
	}

	_, err := h.authService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrUsernameTaken), errors.Is(err, api.ErrEmailTaken):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		default:
			l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to register user")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, Response{
		Success: true,
		Message: "User registered successfully",
	})
}

func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid login request: "+err.Error())
		return
	}

	user, token, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, api.ErrInvalidCredentials.Error())
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to log in")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        api.NewUserResponse(user),
	})
}
