package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/oshawa-skills/apiserver/config"
	"github.com/oshawa-skills/apiserver/internal/db"
	"github.com/oshawa-skills/apiserver/internal/handlers"
	"github.com/oshawa-skills/apiserver/internal/logger"
	"github.com/oshawa-skills/apiserver/internal/mq"
	"github.com/oshawa-skills/apiserver/internal/notify"
	"github.com/oshawa-skills/apiserver/internal/services"
	"github.com/oshawa-skills/apiserver/internal/storage"
	"github.com/oshawa-skills/apiserver/internal/store"
	"go.uber.org/zap"
)

// Server wraps the HTTP server, router and shared resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
	logger     *zap.Logger
}

// New constructs a Server with all dependencies wired from config.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log, err := logger.New()
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objectStore, err := newObjectStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ensure bucket: %w", err)
	}

	notifier, broker, err := newNotifier(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	profileRepo := store.NewProfileRepository(dbConn)
	skillRepo := store.NewSkillRepository(dbConn)
	certRepo := store.NewCertificationRepository(dbConn)

	urlExpiry := time.Duration(cfg.Storage.URLExpirySeconds) * time.Second

	profileService := services.NewProfileService(profileRepo)
	skillService := services.NewSkillService(skillRepo)
	certService := services.NewCertificationService(certRepo, objectStore, notifier, log, urlExpiry)

	auth := handlers.NewAuthenticator(cfg.Auth.AdminGroup)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", handlers.Health)
	router.Route("/api", func(r chi.Router) {
		r.Route("/skills", func(r chi.Router) {
			handlers.SkillRouter(r, skillService, auth)
		})
		r.Route("/profile", func(r chi.Router) {
			handlers.ProfileRouter(r, profileService, auth)
		})
		r.Route("/certifications", func(r chi.Router) {
			handlers.CertificationRouter(r, certService, auth)
		})
		r.Route("/admin", func(r chi.Router) {
			handlers.AdminRouter(r, certService, skillService, auth)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
		logger:     log,
	}, nil
}

func newObjectStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendGCS:
		client, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case config.StorageBackendMinio, "":
		client, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newNotifier builds the configured notifier. The queue backend also
// returns the broker so the server can close it on shutdown.
func newNotifier(ctx context.Context, cfg config.Config) (notify.Notifier, *mq.MQ, error) {
	switch cfg.Notify.Backend {
	case config.NotifyBackendQueue:
		broker, err := newBroker(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return notify.NewQueueNotifier(broker, cfg.Notify.Channel), broker, nil
	case config.NotifyBackendSMTP, "":
		mailer, err := notify.NewSMTPMailer(cfg.Notify)
		if err != nil {
			return nil, nil, err
		}
		return mailer, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
	}
}

// NewBroker constructs the configured message broker. Shared with the
// worker command so publisher and consumer dial the same backend.
func NewBroker(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	return newBroker(ctx, cfg)
}

func newBroker(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQ.Backend {
	case config.MQBackendPubSub:
		client, err := mq.NewPubSubClient(ctx, cfg.MQ.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case config.MQBackendRabbitMQ, "":
		client, err := mq.NewRabbitMQClient(cfg.MQ.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.broker != nil {
		_ = s.broker.Close()
	}
	_ = s.logger.Sync()
	return s.httpServer.Close()
}
