package profiles

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/snetlabs/social-network/internal/api"
	"github.com/snetlabs/social-network/internal/api/auth"
)

var validate = newValidator()

// newValidator teaches the validator to look through Optional fields: an
// absent or null field validates as empty, a set field as its inner value.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if o, ok := field.Interface().(Optional[string]); ok {
			if !o.Set || !o.Valid {
				return nil
			}
			return o.Value
		}
		return nil
	}, Optional[string]{})
	return v
}

// HandlerImpl handles HTTP requests for profile reads and updates.
type HandlerImpl struct {
	profileService ProfileService
	logger         *slog.Logger
}

func NewProfileHandler(profileService ProfileService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		profileService: profileService,
		logger:         logger,
	}
}

func (h *HandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetProfile"))

	username, ok := auth.GetSubjectFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization required")
		return
	}

	user, err := h.profileService.GetProfile(ctx, username)
	if err != nil {
		if errors.Is(err, api.ErrUserNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, api.ErrUserNotFound.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to fetch profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.NewUserResponse(user))
}

func (h *HandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateProfile"))

	username, ok := auth.GetSubjectFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req UpdateProfileRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid profile update: "+err.Error())
		return
	}

	params := UpdateProfileParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	if req.BirthDate.Set {
		params.BirthDate = Optional[time.Time]{Set: true}
		if req.BirthDate.Valid {
			// Format already validated; parse cannot fail here.
			bd, err := time.Parse("2006-01-02", req.BirthDate.Value)
			if err != nil {
				api.ErrorResponse(w, r, http.StatusBadRequest, "invalid birth_date")
				return
			}
			params.BirthDate = Optional[time.Time]{Set: true, Valid: true, Value: bd}
		}
	}

	user, err := h.profileService.UpdateProfile(ctx, username, params)
	if err != nil {
		if errors.Is(err, api.ErrUserNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, api.ErrUserNotFound.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to update profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.NewUserResponse(user))
}

func (h *HandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListUsers"))

	users, err := h.profileService.ListUsers(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to list users")
		return
	}

	resp := make([]api.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, api.NewUserResponse(&users[i]))
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
