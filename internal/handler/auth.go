package handler

import (
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/cardiopredict/cardiopredict/internal/handler/dto"
	"github.com/cardiopredict/cardiopredict/internal/service"
)

// AuthHandler handles account registration and token issuance.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
}

// Register handles POST /auth/.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    req.Password,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Token handles POST /auth/token.
// Accepts an OAuth2 password form or a JSON body with the same keys.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "INVALID_FORM", "Invalid form body")
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	default:
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	if req.Username == "" {
		writeValidationError(w, &service.ValidationError{Field: "username", Message: "is required"})
		return
	}
	if req.Password == "" {
		writeValidationError(w, &service.ValidationError{Field: "password", Message: "is required"})
		return
	}

	token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewTokenResponse(token.AccessToken, token.TokenType, token.ExpiresAt, h.now()))
}
