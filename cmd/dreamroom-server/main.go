package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/dreamroom/internal/batch"
	"github.com/fpang/dreamroom/internal/config"
	"github.com/fpang/dreamroom/internal/generation"
	"github.com/fpang/dreamroom/internal/logging"
	"github.com/fpang/dreamroom/internal/postprocess"
	"github.com/fpang/dreamroom/internal/refine"
	"github.com/fpang/dreamroom/internal/storage"
)

// CLI flags
var portFlag int

var rootCmd = &cobra.Command{
	Use:   "dreamroom-server",
	Short: "Bedroom redesign generation server",
	Long: `Dreamroom Server turns a room photo into themed AI-generated bedroom
designs. It serves a JSON API for room styles, custom style refinement, and
batched image generation with streamed progress.

Without provider credentials every batch runs against the built-in mock
generator, which is useful for local development.

Examples:
  dreamroom-server
  dreamroom-server --port 9090`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// server groups the wired dependencies behind the HTTP handlers.
type server struct {
	cfg       *config.Config
	store     storage.BlobStore
	fileStore *storage.FileStore // nil when the s3 backend is active
	orch      *batch.Orchestrator
	refiner   refine.Refiner
}

func runMain(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.Environment, cfg.Logging.Level)

	port := cfg.Server.Port
	if portFlag != 0 {
		port = portFlag
	}
	baseURL := cfg.Server.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", port)
	}

	ctx := context.Background()
	srv := &server{cfg: cfg}

	// Artifact storage
	var sweeper *storage.Sweeper
	switch cfg.Storage.Backend {
	case "file", "":
		fs, err := storage.NewFileStore(cfg.Storage.Dir, baseURL+"/uploads")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open artifact directory")
		}
		srv.store = fs
		srv.fileStore = fs
		sweeper = storage.NewSweeper(fs.Dir(), cfg.Storage.MaxArtifactAge)
		if err := sweeper.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start artifact sweeper")
		}
	case "s3":
		obj, err := storage.NewObjectStore(ctx, storage.ObjectStoreConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
			Region:    cfg.Storage.Region,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to object storage")
		}
		srv.store = obj
	default:
		log.Fatal().Str("backend", cfg.Storage.Backend).Msg("Unknown storage backend")
	}

	// Generation: live provider when credentials are configured, mock
	// otherwise. A failed connect is not fatal; the mock covers it.
	sessionCfg := generation.SessionConfig{
		RestEndpoint:   cfg.Provider.RestEndpoint,
		SocketEndpoint: cfg.Provider.SocketEndpoint,
		AppID:          cfg.Provider.AppID,
		Username:       cfg.Provider.Username,
		Password:       cfg.Provider.Password,
	}
	var (
		session  *generation.Session
		provider *generation.ProviderClient
	)
	if sessionCfg.Configured() {
		session, err = generation.Connect(ctx, sessionCfg)
		if err != nil {
			log.Warn().Err(err).Msg("Provider connection failed, running on mock generator")
			session = nil
		} else {
			provider = generation.NewProviderClient(session, generation.DefaultParams(), cfg.Generation.Timeout)
			log.Info().Msg("Connected to generation provider")
		}
	} else {
		log.Info().Msg("No provider credentials configured, running on mock generator")
	}
	mock := &generation.MockGenerator{StepDelay: cfg.Generation.MockStepDelay}
	generator := generation.NewFallback(session, provider, mock)
	srv.orch = batch.New(generator, postprocess.NewProcessor(srv.store), cfg.Generation.WindowDelay)

	// Style refinement: Gemini when an API key is present, heuristic always
	// as the fallback.
	var aiRefiner refine.Refiner
	if cfg.Refine.APIKey != "" {
		gem, err := refine.NewGemini(ctx, cfg.Refine.APIKey, cfg.Refine.Model)
		if err != nil {
			log.Warn().Err(err).Msg("Gemini client unavailable, refinement runs on heuristic only")
		} else {
			aiRefiner = gem
		}
	}
	srv.refiner = refine.NewFallback(aiRefiner)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", srv.handleGenerate)
	mux.HandleFunc("/api/styles", srv.handleStyles)
	mux.HandleFunc("/api/styles/", srv.handleStyleRoutes)
	mux.HandleFunc("/api/refine-prompt", srv.handleRefinePrompt)
	mux.HandleFunc("/api/download/zip", srv.handleDownloadZip)
	mux.HandleFunc("/api/health", srv.handleHealth)
	if srv.fileStore != nil {
		mux.Handle("/uploads/", http.StripPrefix("/uploads/",
			http.FileServer(http.Dir(srv.fileStore.Dir()))))
	}

	handler := withLogging(withCORS(mux))

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // generation streams run long
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		if sweeper != nil {
			sweeper.Stop()
		}
		if session != nil {
			session.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Int("port", port).
		Str("environment", cfg.Environment).
		Str("storage", cfg.Storage.Backend).
		Bool("provider", provider != nil).
		Msg("Starting server")

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// --- Middleware ---

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Cache-Control")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
