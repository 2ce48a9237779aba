package submission

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/benefitsys/rules-api/pkg/common/logger"
	"github.com/benefitsys/rules-api/pkg/rules"
	"github.com/benefitsys/rules-api/pkg/store"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	service *Service
	results store.ResultStore
	maxBody int64
}

func NewHTTPHandler(service *Service, results store.ResultStore, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, results: results, maxBody: maxBody}
}

// Register mounts one route family per rule kind. Static segments are
// registered before the catch-all result-id route.
func (h *HTTPHandler) Register(router *mux.Router) {
	for _, kind := range rules.Kinds() {
		k := kind
		base := "/" + k.Path()
		router.HandleFunc(base, h.handleSubmit(k)).Methods(http.MethodPost)
		router.HandleFunc(base+"/status/{jobId}", h.handleStatus(k)).Methods(http.MethodGet)
		router.HandleFunc(base+"/result/{jobId}", h.handleResultByJob(k)).Methods(http.MethodGet)
		router.HandleFunc(base+"/{resultId}", h.handleResult(k)).Methods(http.MethodGet)
	}
}

func (h *HTTPHandler) handleSubmit(kind rules.RuleKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.maxBody > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
		}

		var req rules.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.WithError(err).Warn("invalid submission payload")
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		jobID, err := h.service.Submit(r.Context(), kind, req)
		if err != nil {
			h.writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Location", fmt.Sprintf("/%s/status/%s", kind.Path(), jobID))
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"jobId": jobID})
	}
}

func (h *HTTPHandler) handleStatus(kind rules.RuleKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := mux.Vars(r)["jobId"]

		status, err := h.service.Status(r.Context(), jobID, kind)
		if err != nil {
			h.writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}

func (h *HTTPHandler) handleResult(kind rules.RuleKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resultID := mux.Vars(r)["resultId"]

		result, err := h.results.GetResult(r.Context(), resultID, kind)
		if err != nil {
			h.writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func (h *HTTPHandler) handleResultByJob(kind rules.RuleKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := mux.Vars(r)["jobId"]

		result, err := h.results.GetResultByJob(r.Context(), jobID, kind)
		if err != nil {
			h.writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

// writeError maps the store taxonomy to client-visible statuses: absent is
// 404, not-yet-ready is 425, conflicting writes are 409.
func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case rules.IsValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrJobNotFound), errors.Is(err, store.ErrResultNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, store.ErrResultPending):
		http.Error(w, "result not computed yet", http.StatusTooEarly)
	case errors.Is(err, store.ErrDuplicateJob), errors.Is(err, store.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrJobFailed):
		http.Error(w, "rule evaluation failed", http.StatusBadGateway)
	default:
		logger.Log.WithError(err).Error("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
