package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/filter"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
	"github.com/kailas-cloud/vecspace/internal/domain/space"
	exploreuc "github.com/kailas-cloud/vecspace/internal/usecase/explore"
	healthuc "github.com/kailas-cloud/vecspace/internal/usecase/health"
)

const maxBodyBytes = 32 << 20

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest             = "bad_request"
	CodeUnknownBackend         = "unknown_backend"
	CodeInvalidCondition       = "invalid_condition"
	CodeUnsupportedOperator    = "unsupported_operator"
	CodeUnknownMetric          = "unknown_metric"
	CodeInvalidQuery           = "invalid_query"
	CodeNoMatchingPoints       = "no_matching_points"
	CodeTooManyPoints          = "too_many_points"
	CodeExecutorNotConfigured  = "executor_not_configured"
	CodeEmbedderNotConfigured  = "embedder_not_configured"
	CodeBackendFailure         = "backend_failure"
	CodeEmbeddingProviderError = "embedding_provider_error"
	CodeEmbeddingQuota         = "embedding_quota_exceeded"
	CodeInternalError          = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the vecspace HTTP API.
type Server struct {
	explore       *exploreuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(explore *exploreuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		explore: explore,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownBackend, http.StatusNotFound, CodeUnknownBackend),
		sentinelHandler(domain.ErrNoMatchingPoints, http.StatusNotFound, CodeNoMatchingPoints),
		sentinelHandler(domain.ErrInvalidCondition, http.StatusBadRequest, CodeInvalidCondition),
		sentinelHandler(domain.ErrUnsupportedOperator, http.StatusBadRequest, CodeUnsupportedOperator),
		sentinelHandler(domain.ErrUnknownMetric, http.StatusBadRequest, CodeUnknownMetric),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
		sentinelHandler(domain.ErrTooManyPoints, http.StatusRequestEntityTooLarge, CodeTooManyPoints),
		sentinelHandler(domain.ErrExecutorNotConfigured, http.StatusNotImplemented, CodeExecutorNotConfigured),
		sentinelHandler(domain.ErrEmbedderNotConfigured, http.StatusNotImplemented, CodeEmbedderNotConfigured),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusTooManyRequests, CodeEmbeddingQuota),
		sentinelHandler(domain.ErrBackendFailure, http.StatusBadGateway, CodeBackendFailure),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/backends", s.ListBackends)
		r.Route("/backends/{name}", func(r chi.Router) {
			r.Get("/", s.GetBackend)
			r.Post("/filter", s.TranslateFilter)
			r.Post("/normalize", s.Normalize)
			r.Post("/query", s.BuildQuery)
			r.Post("/execute", s.Execute)
		})
		r.Route("/points", func(r chi.Router) {
			r.Post("/neighbors", s.Neighbors)
			r.Post("/distances", s.Distances)
			r.Post("/centroid", s.Centroid)
		})
	})
}

// Handler returns a router serving the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// ListBackends handles GET /v1/backends.
func (s *Server) ListBackends(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"backends": s.explore.Backends()})
}

// GetBackend handles GET /v1/backends/{name}.
func (s *Server) GetBackend(w http.ResponseWriter, r *http.Request) {
	d, err := s.explore.Backend(chi.URLParam(r, "name"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type filterRequest struct {
	Conditions json.RawMessage `json:"conditions"`
}

// TranslateFilter handles POST /v1/backends/{name}/filter.
func (s *Server) TranslateFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !s.decode(w, r, &req) {
		return
	}
	set, err := conditions(req.Conditions)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out, err := s.explore.TranslateFilter(chi.URLParam(r, "name"), set)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filter": out})
}

type normalizeRequest struct {
	Response   json.RawMessage `json:"response"`
	ClassName  string          `json:"class_name"`
	VectorName string          `json:"vector_name"`
}

// Normalize handles POST /v1/backends/{name}/normalize.
func (s *Server) Normalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	raw, err := backendResponse(req.Response)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid response body")
		return
	}
	points, err := s.explore.Normalize(chi.URLParam(r, "name"), raw, query.NormalizeOptions{
		ClassName:  req.ClassName,
		VectorName: req.VectorName,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

type queryRequest struct {
	Vector     []float64       `json:"vector"`
	Text       string          `json:"text"`
	IDs        []string        `json:"ids"`
	Limit      int             `json:"limit"`
	Conditions json.RawMessage `json:"conditions"`
	ClassName  string          `json:"class_name"`
	Properties []string        `json:"properties"`
	Namespace  string          `json:"namespace"`
}

// BuildQuery handles POST /v1/backends/{name}/query.
func (s *Server) BuildQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be >= 0")
		return
	}
	set, err := conditions(req.Conditions)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out, err := s.explore.BuildQuery(r.Context(), chi.URLParam(r, "name"), exploreuc.QueryInput{
		Text: req.Text,
		Request: query.Request{
			Vector:     req.Vector,
			IDs:        req.IDs,
			Filter:     set,
			Limit:      req.Limit,
			Class:      req.ClassName,
			Properties: req.Properties,
			Namespace:  req.Namespace,
		},
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": out})
}

type executeRequest struct {
	Query json.RawMessage `json:"query"`
}

// Execute handles POST /v1/backends/{name}/execute. The query is either a
// JSON string (GraphQL, SQL, graph queries) or a JSON object.
func (s *Server) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if !s.decode(w, r, &req) {
		return
	}
	native, err := nativeQuery(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	points, err := s.explore.Execute(r.Context(), chi.URLParam(r, "name"), native)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

type neighborsRequest struct {
	Points      []point.Point `json:"points"`
	ReferenceID string        `json:"reference_id"`
	Metric      string        `json:"metric"`
	VectorField string        `json:"vector_field"`
	K           *int          `json:"k"`
	Threshold   *float64      `json:"threshold"`
}

type neighborJSON struct {
	ID       string   `json:"id"`
	Distance *float64 `json:"distance"`
}

// Neighbors handles POST /v1/points/neighbors.
func (s *Server) Neighbors(w http.ResponseWriter, r *http.Request) {
	var req neighborsRequest
	if !s.decode(w, r, &req) {
		return
	}
	neighbors, err := s.explore.Neighbors(exploreuc.NeighborsInput{
		Points:      withIDs(req.Points),
		ReferenceID: req.ReferenceID,
		Metric:      req.Metric,
		VectorField: req.VectorField,
		K:           req.K,
		Threshold:   req.Threshold,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"neighbors": neighborsToJSON(neighbors)})
}

type distancesRequest struct {
	Points      []point.Point `json:"points"`
	ReferenceID string        `json:"reference_id"`
	Metric      string        `json:"metric"`
	VectorField string        `json:"vector_field"`
}

// Distances handles POST /v1/points/distances.
func (s *Server) Distances(w http.ResponseWriter, r *http.Request) {
	var req distancesRequest
	if !s.decode(w, r, &req) {
		return
	}
	distances, err := s.explore.Distances(withIDs(req.Points), req.ReferenceID, req.Metric, req.VectorField)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out := make(map[string]*float64, len(distances))
	for id, d := range distances {
		out[id] = finite(d)
	}
	writeJSON(w, http.StatusOK, map[string]any{"distances": out})
}

type centroidRequest struct {
	Points []point.Point `json:"points"`
	IDs    []string      `json:"ids"`
}

// Centroid handles POST /v1/points/centroid.
func (s *Server) Centroid(w http.ResponseWriter, r *http.Request) {
	var req centroidRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, err := s.explore.Centroid(withIDs(req.Points), req.IDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		s.logger.Debug("decode request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return false
	}
	return true
}

// conditions decodes [[field, op, value], ...] keeping integers exact.
func conditions(raw json.RawMessage) (filter.Set, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var triples []any
	if err := dec.Decode(&triples); err != nil {
		return nil, fmt.Errorf("%w: conditions must be a list of triples", domain.ErrInvalidCondition)
	}
	return filter.FromTriples(triples)
}

// backendResponse decodes a raw backend payload keeping numeric ids exact.
func backendResponse(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func nativeQuery(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return "", errors.New("query is required")
	case raw[0] == '"':
		var q string
		if err := json.Unmarshal(raw, &q); err != nil {
			return "", fmt.Errorf("decode query: %w", err)
		}
		return q, nil
	case raw[0] == '{':
		return string(raw), nil
	default:
		return "", errors.New("query must be a string or an object")
	}
}

// withIDs gives points without an id their positional synthetic id.
func withIDs(points []point.Point) []point.Point {
	for i := range points {
		if points[i].ID == "" {
			points[i].ID = point.SyntheticID(i)
		}
	}
	return points
}

func neighborsToJSON(ns []space.Neighbor) []neighborJSON {
	out := make([]neighborJSON, len(ns))
	for i, n := range ns {
		out[i] = neighborJSON{ID: n.ID, Distance: finite(n.Distance)}
	}
	return out
}

// finite maps NaN and infinities to nil, which encodes as JSON null.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Client errors carry the full message; upstream failures only the sentinel's.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if status < http.StatusInternalServerError {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
