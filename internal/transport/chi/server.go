package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/medwayhorizons/healthbridge/internal/domain"
	adminuc "github.com/medwayhorizons/healthbridge/internal/usecase/admin"
	cataloguc "github.com/medwayhorizons/healthbridge/internal/usecase/catalog"
	healthuc "github.com/medwayhorizons/healthbridge/internal/usecase/health"
	inquiryuc "github.com/medwayhorizons/healthbridge/internal/usecase/inquiry"
)

const defaultMaxBodyBytes = 4 << 20

// NoticeHeader carries user-facing load notices, such as a collection that
// failed to load and was rendered empty.
const NoticeHeader = "X-Catalog-Notice"

// Server serves the public catalog, lead capture and the admin API.
type Server struct {
	catalog       *cataloguc.Service
	admin         *adminuc.Service
	inquiries     *inquiryuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	apiKeys       []string
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	catalog *cataloguc.Service,
	admin *adminuc.Service,
	inquiries *inquiryuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		catalog:      catalog,
		admin:        admin,
		inquiries:    inquiries,
		health:       health,
		logger:       logger,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		importHandler,
		sentinelHandler(domain.ErrUnknownCollection, http.StatusNotFound, ErrorCodeUnknownCollection),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrInvalidTransition, http.StatusConflict, ErrorCodeInvalidTransition),
	}
	return s
}

// WithAPIKeys protects the admin routes with Bearer keys.
func (s *Server) WithAPIKeys(keys []string) *Server {
	s.apiKeys = keys
	return s
}

// WithMaxBodyBytes caps request bodies, including CSV uploads.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Mount registers every route on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/suggest", s.Suggest)
		r.Post("/inquiries", s.SubmitInquiry)

		r.Route("/catalog/{kind}", func(r chi.Router) {
			r.Get("/", s.BrowseCatalog)
			r.Get("/facets", s.CatalogFacets)
			r.Get("/{id}", s.GetRecord)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(BearerAuthMiddleware(s.apiKeys))

			r.Route("/inquiries", func(r chi.Router) {
				r.Get("/", s.ListInquiries)
				r.Get("/{id}", s.GetInquiry)
				r.Post("/{id}/status", s.AdvanceInquiry)
				r.Delete("/{id}", s.DeleteInquiry)
			})

			r.Route("/{kind}", func(r chi.Router) {
				r.Get("/", s.ListRecords)
				r.Post("/", s.CreateRecord)
				r.Post("/import", s.ImportRecords)
				r.Put("/{id}", s.UpdateRecord)
				r.Delete("/{id}", s.DeleteRecord)
			})
		})
	})
}

// Handler returns a router serving every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Mount(r)
	return r
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
