package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"meterprofile/internal/auth"
	"meterprofile/internal/jobs"
	"meterprofile/internal/observability/metrics"
	"meterprofile/internal/profile/application"
	profilehttp "meterprofile/internal/profile/interfaces/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	metrics.Init(logger)

	extractor := application.NewExtractor(logger)

	runner := jobs.NewRunner(extractor, logger,
		jobs.WithWorkers(cfg.JobWorkers),
		jobs.WithQueueDepth(cfg.JobQueueDepth),
		jobs.WithRetention(cfg.JobRetention),
	)
	runner.Start()
	defer runner.Stop()

	handler, err := profilehttp.NewHandler(extractor,
		profilehttp.WithAsyncJobs(runner, cfg.AsyncRowThreshold),
		profilehttp.WithMaxUploadBytes(cfg.MaxUploadBytes),
		profilehttp.WithElectricalDefaults(cfg.VoltageV, cfg.PowerFactor),
	)
	if err != nil {
		logger.Fatalf("profile handler error: %v", err)
	}

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var root http.Handler = mux
	if cfg.JWTSecret != "" {
		policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
		root = auth.NewMiddleware([]byte(cfg.JWTSecret), policy).Wrap(root)
	} else {
		logger.Printf("AUTH_JWT_SECRET not set, api is unauthenticated")
	}

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(root, logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
