package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"meterprofile/internal/auth"
	"meterprofile/internal/jobs"
	"meterprofile/internal/observability/metrics"
	profileapp "meterprofile/internal/profile/application"
	profile "meterprofile/internal/profile/domain"
	"meterprofile/internal/profile/infrastructure/spreadsheet"
)

// Handler provides the profile extraction HTTP endpoints.
type Handler struct {
	extractor          *profileapp.Extractor
	runner             *jobs.Runner
	asyncRowThreshold  int
	maxUploadBytes     int64
	defaultVoltageV    float64
	defaultPowerFactor float64
}

// Option customizes the handler.
type Option func(*Handler)

// WithAsyncJobs routes requests at or above threshold rows to the runner.
func WithAsyncJobs(runner *jobs.Runner, threshold int) Option {
	return func(h *Handler) {
		h.runner = runner
		h.asyncRowThreshold = threshold
	}
}

// WithMaxUploadBytes caps the request body size.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// WithElectricalDefaults sets the voltage and power factor applied to
// requests that omit them.
func WithElectricalDefaults(voltageV, powerFactor float64) Option {
	return func(h *Handler) {
		h.defaultVoltageV = voltageV
		h.defaultPowerFactor = powerFactor
	}
}

// NewHandler constructs a handler. Without WithAsyncJobs every request runs
// inline.
func NewHandler(extractor *profileapp.Extractor, opts ...Option) (*Handler, error) {
	if extractor == nil {
		return nil, errors.New("profile handler: nil extractor")
	}
	h := &Handler{extractor: extractor, maxUploadBytes: 64 << 20}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// extractRequest is the JSON body of POST /api/v1/profiles/extract.
type extractRequest struct {
	CSVText string            `json:"csv_text"`
	Config  profileapp.Config `json:"config"`
}

// HandleExtract handles POST /api/v1/profiles/extract.
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	text, cfg, err := h.readInput(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg = h.applyDefaults(cfg)

	if h.runner != nil && h.asyncRowThreshold > 0 && countLines(text) >= h.asyncRowThreshold {
		jobID, err := h.runner.Submit(auth.SubjectFromContext(r.Context()), text, cfg)
		if err != nil {
			metrics.IncJobRejected()
			http.Error(w, "job queue is full", http.StatusServiceUnavailable)
			return
		}
		metrics.IncJobSubmitted()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"job_id": jobID})
		return
	}

	start := time.Now()
	result, err := h.extractor.Extract(text, cfg)
	if err != nil {
		metrics.ObserveExtract(metrics.ResultError, time.Since(start), 0, 0)
		respondPipelineError(w, err)
		return
	}
	outcome := metrics.ResultSuccess
	if !result.Success {
		outcome = metrics.ResultRejected
	}
	metrics.ObserveExtract(outcome, time.Since(start), result.Stats.ProcessedRows, result.Stats.SkippedRows)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// HandleDetect handles POST /api/v1/profiles/detect.
func (h *Handler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	text, cfg, err := h.readInput(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	preview, err := h.extractor.Detect(text, h.applyDefaults(cfg))
	if err != nil {
		metrics.ObserveDetect(metrics.ResultError)
		respondPipelineError(w, err)
		return
	}
	metrics.ObserveDetect(metrics.ResultSuccess)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(preview)
}

// HandleJob handles GET /api/v1/jobs/{id}.
func (h *Handler) HandleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.runner == nil {
		http.Error(w, "background jobs disabled", http.StatusNotFound)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "job id required", http.StatusBadRequest)
		return
	}
	job, ok := h.runner.Get(id)
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(job)
}

// Register installs the handler routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/profiles/extract", h.HandleExtract)
	mux.HandleFunc("/api/v1/profiles/detect", h.HandleDetect)
	mux.HandleFunc("/api/v1/jobs/", h.HandleJob)
}

// readInput accepts three request shapes: a JSON envelope with csv_text and
// config, a multipart upload with a file part plus an optional config part,
// or a raw CSV body. XLSX uploads are converted to CSV text.
func (h *Handler) readInput(r *http.Request) (string, profileapp.Config, error) {
	defer r.Body.Close()
	var cfg profileapp.Config

	contentType := r.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return "", cfg, errors.New("invalid multipart body")
		}
		if raw := r.FormValue("config"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
				return "", cfg, errors.New("invalid config json")
			}
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", cfg, errors.New("file part required")
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes))
		if err != nil {
			return "", cfg, errors.New("read file error")
		}
		text, err := decodeUpload(data)
		if err != nil {
			return "", cfg, err
		}
		return text, cfg, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxUploadBytes))
	if err != nil {
		return "", cfg, errors.New("read body error")
	}

	if mediaType == "application/json" {
		var req extractRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "", cfg, errors.New("invalid json")
		}
		return req.CSVText, req.Config, nil
	}

	text, err := decodeUpload(body)
	if err != nil {
		return "", cfg, err
	}
	return text, cfg, nil
}

func (h *Handler) applyDefaults(cfg profileapp.Config) profileapp.Config {
	if cfg.VoltageV == 0 {
		cfg.VoltageV = h.defaultVoltageV
	}
	if cfg.PowerFactor == 0 {
		cfg.PowerFactor = h.defaultPowerFactor
	}
	return cfg
}

func decodeUpload(data []byte) (string, error) {
	if spreadsheet.IsWorkbook(data) {
		text, err := spreadsheet.ReadWorkbook(bytes.NewReader(data))
		if err != nil {
			return "", errors.New("invalid workbook")
		}
		return text, nil
	}
	return string(data), nil
}

func respondPipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profile.ErrEmptyInput),
		errors.Is(err, profile.ErrColumnOutOfRange),
		errors.Is(err, profile.ErrHeaderOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func countLines(text string) int {
	n := strings.Count(text, "\n")
	if len(text) > 0 && !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
