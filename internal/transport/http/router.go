package http

import (
	"context"
	"net/http"

	"github.com/Atharva587/MultiplayerQuizNew/internal/app"
	"github.com/Atharva587/MultiplayerQuizNew/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// RouterConfig wires the HTTP surface. Metrics and Gatherer may be nil.
type RouterConfig struct {
	Coordinator    *app.Coordinator
	Library        app.QuestionLibrary
	Logger         logrus.FieldLogger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	// PublicURL is the page players open to join; room QR codes point at it.
	PublicURL string
	// OnLibraryChange runs after saved questions are added or removed.
	OnLibraryChange func(context.Context)
}

// NewRouter mounts /ws, the REST API, /healthz and /metrics behind CORS and request logging.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	router := mux.NewRouter()
	router.Use(requestLogger(logger, cfg.Metrics))

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if cfg.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	ws := NewWSHandler(cfg.Coordinator, cfg.AllowedOrigins, logger, cfg.Metrics)
	router.HandleFunc("/ws", ws.ServeWS)

	api := &API{
		coordinator: cfg.Coordinator,
		library:     cfg.Library,
		log:         logger,
		joinURL:     cfg.PublicURL,
		onChange:    cfg.OnLibraryChange,
	}
	api.register(router)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}).Handler(router)
}
