package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/aidetect/internal/application/analysis"
	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
	"github.com/bryanwahyu/aidetect/internal/infra/extract"
	"github.com/bryanwahyu/aidetect/internal/logger"
	"github.com/bryanwahyu/aidetect/internal/middleware"
)

const (
	DefaultMaxBodyBytes = 5 << 20

	msgInvalidText    = "Text must be at least 50 characters long"
	msgDetectFailed   = "An error occurred during detection"
	msgHistoryFailed  = "Failed to retrieve detection history"
	msgLookupFailed   = "Failed to retrieve detection result"
	msgInvalidBody    = "invalid request body"
	msgBodyTooLarge   = "request body too large"
	msgNotFound       = "result not found"
	msgBadFingerprint = "fingerprint must be 64 lowercase hex characters"
)

type Options struct {
	Service        *appanalysis.Service
	Log            *logger.Logger
	APIKeys        map[string]string
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	CORSOrigins    []string
	MaxBodyBytes   int64
	HealthCheckers map[string]middleware.HealthChecker
}

type Router struct {
	svc     *appanalysis.Service
	log     *logger.Logger
	maxBody int64
}

func NewRouter(o Options) http.Handler {
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(o.CORSOrigins) == 0 {
		o.CORSOrigins = []string{"*"}
	}
	r := &Router{svc: o.Service, log: o.Log, maxBody: o.MaxBodyBytes}

	mux := chi.NewRouter()
	mux.Get("/health", middleware.HealthHandler(o.HealthCheckers))
	mux.Get("/ready", middleware.ReadinessHandler(o.HealthCheckers))
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Use(cors.Handler(cors.Options{
			AllowedOrigins: o.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
		rt.Use(middleware.RequestLogger(o.Log))
		rt.Use(middleware.MetricsMiddleware)
		rt.Use(middleware.APIKeyAuth(o.APIKeys))
		if o.RateLimiter != nil {
			rt.Use(o.RateLimiter.Middleware)
		}

		rt.Post("/detect", r.wrap(r.handleDetect))
		rt.Post("/detect/upload", r.wrap(r.handleUpload))
		rt.Get("/history", r.wrap(r.handleHistory))
		rt.Get("/results/{fingerprint}", r.wrap(r.handleResult))
	})

	return mux
}

// httpError carries the status and public message for a failed request; cause is
// only logged.
type httpError struct {
	code  int
	msg   string
	cause error
}

func (e *httpError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *httpError) Unwrap() error { return e.cause }

func fail(code int, msg string, cause error) error {
	return &httpError{code: code, msg: msg, cause: cause}
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		log := r.log.FromContext(req.Context())

		var he *httpError
		if !errors.As(err, &he) {
			he = &httpError{code: http.StatusInternalServerError, msg: msgDetectFailed, cause: err}
		}
		if he.code >= http.StatusInternalServerError {
			log.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
		} else {
			log.Debug("request rejected", zap.Int("status", he.code), zap.Error(err))
		}
		middleware.WriteError(w, he.code, he.msg)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

type detectRequest struct {
	Text string `json:"text" validate:"required"`
}

type detectResponse struct {
	ID               int64              `json:"id"`
	Fingerprint      domain.Fingerprint `json:"fingerprint"`
	AIProbability    float64            `json:"aiProbability"`
	HumanProbability float64            `json:"humanProbability"`
	Confidence       float64            `json:"confidence"`
	SuggestedAction  string             `json:"suggestedAction"`
	Details          detectDetails      `json:"details"`
	Status           string             `json:"status"`
	FromCache        bool               `json:"fromCache"`
	CreatedAt        time.Time          `json:"createdAt"`
	Filename         string             `json:"filename,omitempty"`
}

type detectDetails struct {
	FlaggedSentences []domain.Evidence `json:"flaggedSentences"`
}

func toDetectResponse(out domain.Outcome) detectResponse {
	rec := out.Record
	flagged := rec.FlaggedEvidence
	if flagged == nil {
		flagged = []domain.Evidence{}
	}
	return detectResponse{
		ID:               rec.ID,
		Fingerprint:      rec.Fingerprint,
		AIProbability:    rec.AIProbability,
		HumanProbability: rec.HumanProbability,
		Confidence:       rec.Confidence,
		SuggestedAction:  rec.SuggestedAction,
		Details:          detectDetails{FlaggedSentences: flagged},
		Status:           "success",
		FromCache:        out.FromCache,
		CreatedAt:        rec.CreatedAt,
	}
}

// analyze runs the service and maps its errors.
func (r *Router) analyze(req *http.Request, text string) (domain.Outcome, error) {
	out, err := r.svc.Analyze(req.Context(), text)
	switch {
	case err == nil:
		middleware.RecordAnalysis(out.FromCache)
		return out, nil
	case errors.Is(err, domain.ErrInvalidInput):
		return out, fail(http.StatusBadRequest, msgInvalidText, err)
	default:
		middleware.IncrementAnalysesFailed()
		return out, fail(http.StatusInternalServerError, msgDetectFailed, err)
	}
}

// POST /api/detect
// Body: {"text": "..."}
func (r *Router) handleDetect(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxBody)

	var body detectRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fail(http.StatusRequestEntityTooLarge, msgBodyTooLarge, err)
		}
		return fail(http.StatusBadRequest, msgInvalidBody, err)
	}
	if err := middleware.ValidateStruct(body); err != nil {
		return fail(http.StatusBadRequest, msgInvalidText, err)
	}

	out, err := r.analyze(req, body.Text)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toDetectResponse(out))
}

// POST /api/detect/upload (multipart, field "file")
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxBody)

	file, header, err := req.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fail(http.StatusRequestEntityTooLarge, msgBodyTooLarge, err)
		}
		return fail(http.StatusBadRequest, "multipart field \"file\" is required", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fail(http.StatusBadRequest, msgInvalidBody, err)
	}

	text, err := extract.Text(header.Filename, header.Header.Get("Content-Type"), data)
	switch {
	case errors.Is(err, extract.ErrUnsupported):
		return fail(http.StatusUnsupportedMediaType, "Unsupported file type", err)
	case errors.Is(err, extract.ErrTooLarge):
		return fail(http.StatusRequestEntityTooLarge, "Document is too large", err)
	case err != nil:
		return fail(http.StatusBadRequest, "Could not extract text from file", err)
	}

	out, err := r.analyze(req, text)
	if err != nil {
		return err
	}
	resp := toDetectResponse(out)
	resp.Filename = header.Filename
	return writeJSON(w, http.StatusOK, resp)
}

type historyItem struct {
	ID               int64              `json:"id"`
	Fingerprint      domain.Fingerprint `json:"fingerprint"`
	TextPreview      string             `json:"textPreview"`
	AIProbability    float64            `json:"aiProbability"`
	HumanProbability float64            `json:"humanProbability"`
	Confidence       float64            `json:"confidence"`
	SuggestedAction  string             `json:"suggestedAction"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// GET /api/history?limit=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	limit, err := middleware.ParseLimit(req.URL.Query().Get("limit"))
	if err != nil {
		return fail(http.StatusBadRequest, err.Error(), nil)
	}

	list, err := r.svc.History(req.Context(), limit)
	if err != nil {
		return fail(http.StatusInternalServerError, msgHistoryFailed, err)
	}

	items := make([]historyItem, 0, len(list))
	for _, rec := range list {
		items = append(items, historyItem{
			ID:               rec.ID,
			Fingerprint:      rec.Fingerprint,
			TextPreview:      rec.TextPreview,
			AIProbability:    rec.AIProbability,
			HumanProbability: rec.HumanProbability,
			Confidence:       rec.Confidence,
			SuggestedAction:  rec.SuggestedAction,
			CreatedAt:        rec.CreatedAt,
		})
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"history": items,
		"status":  "success",
	})
}

// GET /api/results/{fingerprint}
func (r *Router) handleResult(w http.ResponseWriter, req *http.Request) error {
	fp := domain.Fingerprint(chi.URLParam(req, "fingerprint"))
	if !fp.Valid() {
		return fail(http.StatusBadRequest, msgBadFingerprint, nil)
	}

	rec, err := r.svc.Lookup(req.Context(), fp)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fail(http.StatusNotFound, msgNotFound, err)
	case err != nil:
		return fail(http.StatusInternalServerError, msgLookupFailed, err)
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"result": rec,
		"status": "success",
	})
}
