package directory

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/store"
)

const maxBodyBytes = 1 << 20

// Handler exposes one record type under a path prefix such as "/shelter".
type Handler[T any, P Record[T]] struct {
	svc    *RecordService[T, P]
	prefix string
	logger *zap.SugaredLogger
}

func NewHandler[T any, P Record[T]](svc *RecordService[T, P], prefix string, logger *zap.SugaredLogger) *Handler[T, P] {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler[T, P]{svc: svc, prefix: prefix, logger: logger}
}

// Routes mounts the handlers on mux. Listing and every write go through
// protect; single-record reads are public.
func (h *Handler[T, P]) Routes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET "+h.prefix, protect(http.HandlerFunc(h.List)))
	mux.HandleFunc("GET "+h.prefix+"/{id}", h.Get)
	mux.Handle("POST "+h.prefix, protect(http.HandlerFunc(h.Create)))
	mux.Handle("PUT "+h.prefix+"/{id}", protect(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE "+h.prefix+"/{id}", protect(http.HandlerFunc(h.Delete)))
}

func (h *Handler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	v := new(T)
	if !h.decode(w, r, v) {
		return
	}
	out, err := h.svc.Create(r.Context(), v)
	if err != nil {
		h.writeError(w, "create", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, out)
}

func (h *Handler[T, P]) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, "list", err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler[T, P]) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, "get", err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if !h.decode(w, r, &patch) {
		return
	}
	out, err := h.svc.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, "update", err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, "delete", err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler[T, P]) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		h.logger.Debugw("invalid payload", "kind", h.svc.Kind(), "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return false
	}
	return true
}

func (h *Handler[T, P]) writeError(w http.ResponseWriter, op string, err error) {
	kind := h.svc.Kind()
	switch {
	case errors.Is(err, ErrInvalidInput):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": kind + " not found"})
	case errors.Is(err, store.ErrDuplicate):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": kind + " already exists"})
	case errors.Is(err, store.ErrUnavailable):
		h.logger.Warnw(op+" "+kind+" failed", "err", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "service unavailable"})
	default:
		h.logger.Errorw(op+" "+kind+" failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": op + " " + kind + " failed"})
	}
}

func (h *Handler[T, P]) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
