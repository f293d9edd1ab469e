package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/user/entity"
)

const maxBodyBytes = 1 << 20

// Handler exposes HTTP endpoints for user operations.
type Handler struct {
	svc    *UserService
	authn  *auth.Authenticator
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, authn *auth.Authenticator, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{svc: svc, authn: authn, logger: logger}
}

// Routes mounts the user endpoints on mux. protect gates the listing.
func (h *Handler) Routes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /user", protect(http.HandlerFunc(h.List)))
	mux.HandleFunc("GET /user/{id}", h.Get)
	mux.HandleFunc("POST /user", h.Signup)
	mux.HandleFunc("POST /user/authenticate", h.Authenticate)
	mux.HandleFunc("PUT /user/{id}", h.Update)
	mux.HandleFunc("DELETE /user/{id}", h.Delete)
}

// SignupResponse carries the created user, without credentials.
type SignupResponse struct {
	Message string      `json:"message"`
	User    entity.View `json:"user"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupInput
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		h.writeError(w, "signup", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, SignupResponse{Message: "user created", User: u.View()})
}

// AuthenticateRequest login payload.
type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthenticateResponse struct {
	Auth      bool      `json:"auth"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if auth.NormalizeUsername(req.Username) == "" || req.Password == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password required"})
		return
	}
	res, err := h.authn.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, "authenticate", err)
		return
	}
	if !res.Matched {
		h.writeError(w, "authenticate", auth.ErrBadCredentials)
		return
	}
	h.writeJSON(w, http.StatusOK, AuthenticateResponse{Auth: true, Token: res.Token, ExpiresAt: res.ExpiresAt})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, "list users", err)
		return
	}
	views := make([]entity.View, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, "get user", err)
		return
	}
	h.writeJSON(w, http.StatusOK, u.View())
}

// UpdateRequest holds the only user fields that may change after signup.
type UpdateRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.svc.UpdateName(r.Context(), r.PathValue("id"), req.FirstName, req.LastName)
	if err != nil {
		h.writeError(w, "update user", err)
		return
	}
	h.writeJSON(w, http.StatusOK, u.View())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, "delete user", err)
		return
	}
	h.writeJSON(w, http.StatusOK, u.View())
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		h.logger.Debugw("invalid payload", "path", r.URL.Path, "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return false
	}
	return true
}

// writeError maps service errors to status codes.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, auth.ErrBadCredentials):
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication failed"})
	case errors.Is(err, store.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, store.ErrDuplicate):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": "username already taken"})
	case errors.Is(err, store.ErrUnavailable):
		h.logger.Warnw(op+" failed", "err", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "service unavailable"})
	default:
		h.logger.Errorw(op+" failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": op + " failed"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
