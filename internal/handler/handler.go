package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dan9191/cashflow-service/internal/ledger"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/sample"
	"github.com/Dan9191/cashflow-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc            *service.Service
	log            *logrus.Logger
	maxUploadBytes int64
}

func NewHandler(svc *service.Service, log *logrus.Logger, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, log: log, maxUploadBytes: maxUploadBytes}
}

// Register mounts the analysis routes on r
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/analysis", h.AnalyzeUpload).Methods(http.MethodPost)
	r.HandleFunc("/analysis/sample", h.AnalyzeSample).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{id}/analysis", h.AnalyzeAccount).Methods(http.MethodGet)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AnalyzeUpload analyzes a CSV sent as the request body or as multipart field "file"
func (h *Handler) AnalyzeUpload(w http.ResponseWriter, r *http.Request) {
	p, err := h.params(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	body, name, err := h.uploadReader(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	defer body.Close()

	analysis, err := h.svc.AnalyzeCSV(r.Context(), name, body, p)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// AnalyzeSample analyzes a generated demo ledger
func (h *Handler) AnalyzeSample(w http.ResponseWriter, r *http.Request) {
	p, err := h.params(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	q := r.URL.Query()
	seed, err := queryInt64(q.Get("seed"), sample.DefaultSeed)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("seed: %w", err))
		return
	}
	rows, err := queryInt(q.Get("rows"), sample.DefaultRows)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("rows: %w", err))
		return
	}

	analysis, err := h.svc.AnalyzeSample(r.Context(), seed, rows, p)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// AnalyzeAccount analyzes the stored transactions of one account
func (h *Handler) AnalyzeAccount(w http.ResponseWriter, r *http.Request) {
	p, err := h.params(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	analysis, err := h.svc.AnalyzeAccount(r.Context(), mux.Vars(r)["id"], p)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// params reads delay_days, reality and top_n, falling back to configured defaults
func (h *Handler) params(r *http.Request) (service.Params, error) {
	p := h.svc.DefaultParams()
	q := r.URL.Query()

	var err error
	if p.Scenario.DelayDays, err = queryInt(q.Get("delay_days"), p.Scenario.DelayDays); err != nil {
		return p, fmt.Errorf("delay_days: %w", err)
	}
	if v := q.Get("reality"); v != "" {
		if p.Scenario.Reality, err = strconv.ParseBool(v); err != nil {
			return p, fmt.Errorf("reality: must be a boolean")
		}
	}
	if p.TopN, err = queryInt(q.Get("top_n"), p.TopN); err != nil {
		return p, fmt.Errorf("top_n: %w", err)
	}
	return p, p.Validate()
}

func (h *Handler) uploadReader(r *http.Request) (io.ReadCloser, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, "upload", nil
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	return file, header.Filename, nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var loadErr *ledger.LoadError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, http.ErrMissingFile):
		writeError(w, http.StatusBadRequest, errors.New(`multipart field "file" is required`))
	case errors.As(err, &loadErr):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, models.ErrNegativeDelay),
		errors.Is(err, service.ErrNegativeTopN),
		errors.Is(err, service.ErrInvalidSampleSize):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrNoDatabase):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		h.log.Errorf("Analysis failed: %v", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	return v, nil
}

func queryInt64(raw string, def int64) (int64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
