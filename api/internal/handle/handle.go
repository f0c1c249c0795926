package handle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipe-analyzer/api/internal/apperr"
	"recipe-analyzer/api/internal/llm"
	"recipe-analyzer/api/internal/store"
)

// MaxBodyBytes caps a request body. Base64 cookbook photos are the largest
// legitimate payload.
const MaxBodyBytes = 10 << 20

// Fetcher resolves a URL into visible page text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Recorder persists model calls. Failures are logged and never reach the
// caller.
type Recorder interface {
	Insert(ctx context.Context, row store.CallRow) (uuid.UUID, error)
}

type Options struct {
	// Production hides prompt and raw model text unless the request asks for
	// developer mode or decoding failed.
	Production bool
	Recorder   Recorder
}

type Handle struct {
	models *llm.Models
	fetch  Fetcher
	log    *zap.Logger
	opts   Options
}

func New(models *llm.Models, fetch Fetcher, log *zap.Logger, opts Options) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{
		models: models,
		fetch:  fetch,
		log:    log,
		opts:   opts,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	switch r.Method {
	case http.MethodOptions:
		Preflight(w)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed."})
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "Request body too large."})
			return
		}
		h.writeError(w, apperr.Invalid("Invalid request. JSON body is required."))
		return
	}

	res, err := h.Run(r.Context(), body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Preflight answers a CORS preflight with no body.
func Preflight(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handle) writeError(w http.ResponseWriter, err error) {
	status := apperr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("kind", string(apperr.KindOf(err))), zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: apperr.Message(err)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
