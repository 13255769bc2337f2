package cli

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Atharva587/MultiplayerQuizNew/internal/app"
	"github.com/Atharva587/MultiplayerQuizNew/internal/config"
	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
	"github.com/Atharva587/MultiplayerQuizNew/internal/infra/memory"
	"github.com/Atharva587/MultiplayerQuizNew/internal/infra/postgres"
	redisinfra "github.com/Atharva587/MultiplayerQuizNew/internal/infra/redis"
	"github.com/Atharva587/MultiplayerQuizNew/internal/metrics"
	transport "github.com/Atharva587/MultiplayerQuizNew/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// questionCache is a default question supply that can be told its source changed.
type questionCache interface {
	app.QuestionSupply
	Invalidate(ctx context.Context) error
}

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
}

func runServer(ctx context.Context, opts *Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	missingConfig := errors.Is(err, fs.ErrNotExist)
	if err != nil && !missingConfig {
		return err
	}

	logger, err := newLogger(cfg, opts)
	if err != nil {
		return err
	}
	if missingConfig {
		logger.WithField("path", opts.ConfigPath).Warn("config file not found, using defaults")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	port := opts.Port
	if port == "" {
		port = cfg.Server.Port
	}
	if port == "" {
		port = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:                  cfg.Redis.Addr,
			Password:              cfg.Redis.Password,
			DB:                    cfg.Redis.DB,
			ContextTimeoutEnabled: true,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable at startup")
		}
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var (
		pool    *pgxpool.Pool
		library app.QuestionLibrary = memory.NewLibrary()
	)
	if cfg.Postgres.URL != "" {
		db := postgres.OpenBun(cfg.Postgres.URL)
		defer db.Close()
		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			logger.WithField("migrations", applied).Info("migrations applied")
		}
		library = postgres.NewLibrary(db)

		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(domain.BuiltinQuestions())
	if pool != nil && cfg.Quiz.DefaultFolderID > 0 {
		loader = postgres.NewQuestionLoader(pool, cfg.Quiz.DefaultFolderID)
		logger.WithField("folder", cfg.Quiz.DefaultFolderID).Info("default questions come from the saved library")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var supply questionCache
	if redisClient != nil {
		supply = redisinfra.NewQuestionRepository(redisClient, loader, quizTTL)
	} else {
		supply = memory.NewQuestionRepository(loader, quizTTL)
	}

	var (
		store      app.RoomRepository
		redisRooms *redisinfra.RoomStore
	)
	if redisClient != nil {
		redisRooms = redisinfra.NewRoomStore(redisClient, redisTTL, logger.WithField("component", "rooms"))
		store = redisRooms
	} else {
		store = memory.NewRoomStore()
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	observers := app.Observers{m}
	var publisher *redisinfra.EventPublisher
	if redisClient != nil {
		publisher = redisinfra.NewEventPublisher(redisClient, redisTTL, logger.WithField("component", "events"), 0)
		observers = append(observers, publisher)
	}

	buffer := config.TTLDuration(cfg.Quiz.TimeoutBuffer, domain.ServerTimeoutBuffer*time.Second)
	coordinator := app.NewCoordinator(store, supply, app.Options{
		QuestionTimeout: domain.QuestionTimeLimit*time.Second + buffer,
		Observer:        observers,
		Logger:          logger.WithField("component", "coordinator"),
	})

	handler := transport.NewRouter(transport.RouterConfig{
		Coordinator:    coordinator,
		Library:        library,
		Logger:         logger,
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		PublicURL:      cfg.Server.PublicURL,
		OnLibraryChange: func(ctx context.Context) {
			if err := supply.Invalidate(ctx); err != nil {
				logger.WithError(err).Warn("invalidate default questions")
			}
		},
	})

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("port", port).Info("starting quiz server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if publisher != nil {
		g.Go(func() error { return publisher.Run(gctx) })
	}
	if redisRooms != nil {
		g.Go(func() error { return redisRooms.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return shutdown(g.Wait(), logger)
}

func shutdown(err error, logger logrus.FieldLogger) error {
	if err != nil {
		logger.WithError(err).Error("server stopped")
		return err
	}
	logger.Info("server stopped")
	return nil
}
