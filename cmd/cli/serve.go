package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/access"
	"dataroom-server/internal/handler"
	"dataroom-server/internal/model"
	"dataroom-server/internal/ports"
	"dataroom-server/internal/repository"
	"dataroom-server/internal/repository/kv"
	"dataroom-server/internal/security"
	"dataroom-server/internal/service"
	"dataroom-server/internal/util"

	"github.com/rs/cors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

// repositories : хранилища метаданных выбранного бэкенда
type repositories struct {
	users        ports.UserRepository
	tokens       ports.JWTRepositoryInterface
	documents    ports.DocumentRepository
	folders      ports.FolderRepository
	versions     ports.VersionRepository
	shares       ports.ShareRepository
	integrations ports.IntegrationRepository
	locker       ports.Locker
	cache        ports.CacheRepository
}

func serve(cfg *config.AppConfig) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logCloser := util.SetupLogging(cfg.Log)
	defer logCloser.Close()

	checks := make(map[string]ports.HealthChecker)
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Printf("Ошибка при закрытии соединения: %v", err)
			}
		}
	}()

	repos, err := setupRepositories(ctx, cfg, checks, &closers)
	if err != nil {
		return err
	}

	storage, err := setupStorage(ctx, cfg, checks)
	if err != nil {
		return err
	}

	jwtService := security.NewJWTService(&cfg.JWT)

	var verifier ports.IdentityVerifier
	if cfg.Google.ClientID != "" {
		googleVerifier, err := security.NewGoogleIDTokenVerifier(ctx, cfg.Google.ClientID)
		if err != nil {
			log.Printf("[Serve] вход через Google отключён: %v", err)
		} else {
			verifier = googleVerifier
		}
	}

	engine := access.NewEngine(repos.shares)
	presignTTL := time.Duration(cfg.TTL.S3AndRedis) * time.Second

	documentService := service.NewDocumentService(
		repos.documents, repos.folders, repos.versions, repos.shares,
		engine, repos.locker, storage, repos.cache,
		service.DocumentSettings{
			MaxUploadBytes: cfg.Storage.MaxUploadBytes,
			PresignTTL:     presignTTL,
			StorageTimeout: config.Duration(cfg.Storage.Timeout),
		},
	)
	folderService := service.NewFolderService(repos.documents, repos.folders, repos.shares, engine, repos.locker)
	sharingService := service.NewSharingService(repos.documents, repos.folders, repos.shares, repos.users, engine, repos.locker)
	userService := service.NewUserService(repos.users, jwtService, repos.tokens)
	authService := service.NewAuthenticationService(repos.tokens, jwtService, repos.users, verifier)

	drive := service.NewGoogleDriveClient(&cfg.Google, repos.integrations)
	integrationService := service.NewIntegrationService(repos.integrations, drive, jwtService, documentService, folderService, cfg.Import.MaxDepth)

	srv, router := config.SetupServer(cfg.Server.Addr)
	srv.ReadHeaderTimeout = 10 * time.Second
	srv.ReadTimeout = config.Duration(cfg.Server.RequestTimeout)
	srv.WriteTimeout = config.Duration(cfg.Server.RequestTimeout)

	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}).Handler)

	authMiddleware := security.JWTMiddleware(repos.tokens, jwtService, cfg.Admin.AdminToken)

	setupHealthRoutes(router, handler.NewHealthHandler(checks))
	setupSwaggerRoutes(router)
	setupAuthRoutes(router, handler.NewAuthenticationHandler(authService, jwtService), authMiddleware)
	setupUserRoutes(router, handler.NewUserHandler(userService), authMiddleware)
	setupDocumentRoutes(router,
		handler.NewDocumentHandler(documentService, cfg.Storage.MaxUploadBytes, presignTTL),
		handler.NewShareHandler(sharingService, model.ResourceDocument),
		authMiddleware)
	setupFolderRoutes(router,
		handler.NewFolderHandler(folderService),
		handler.NewShareHandler(sharingService, model.ResourceFolder),
		authMiddleware)
	setupAccessRoutes(router, sharingService, authMiddleware)
	setupIntegrationRoutes(router, handler.NewIntegrationHandler(integrationService), authMiddleware)

	runServer(ctx, srv, config.Duration(cfg.Server.ShutdownTimeout))
	return nil
}

func setupRepositories(ctx context.Context, cfg *config.AppConfig, checks map[string]ports.HealthChecker, closers *[]func() error) (*repositories, error) {
	lockTTL := config.Duration(cfg.Storage.LockTTL)

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		rdb, err := config.SetupRedis(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
		}
		*closers = append(*closers, rdb.Close)
		checks["redis"] = rdb

		return &repositories{
			users:        kv.NewUserRepository(rdb),
			tokens:       kv.NewJWTRepository(rdb),
			documents:    kv.NewDocumentRepository(rdb),
			folders:      kv.NewFolderRepository(rdb),
			versions:     kv.NewVersionRepository(rdb),
			shares:       kv.NewShareRepository(rdb),
			integrations: kv.NewIntegrationRepository(rdb),
			locker:       kv.NewLocker(rdb, lockTTL),
			cache:        repository.NoopCache{},
		}, nil

	default:
		db, err := config.SetupDatabase(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
		}
		*closers = append(*closers, db.Close)
		checks["database"] = db

		if err := db.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("ошибка миграции: %w", err)
		}

		repos := &repositories{
			users:        repository.NewUserRepository(db),
			tokens:       repository.NewJWTRepository(db),
			documents:    repository.NewDocumentRepository(db),
			folders:      repository.NewFolderRepository(db),
			versions:     repository.NewVersionRepository(db),
			shares:       repository.NewShareRepository(db),
			integrations: repository.NewIntegrationRepository(db),
			locker:       repository.NewLocker(db),
			cache:        repository.NoopCache{},
		}

		if cfg.Redis.Addr != "" {
			rdb, err := config.SetupRedis(&cfg.Redis)
			if err != nil {
				return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
			}
			*closers = append(*closers, rdb.Close)
			checks["redis"] = rdb
			repos.cache = repository.NewCacheRepository(rdb, time.Duration(cfg.TTL.S3AndRedis)*time.Second)
		}

		return repos, nil
	}
}

func setupStorage(ctx context.Context, cfg *config.AppConfig, checks map[string]ports.HealthChecker) (ports.Storage, error) {
	if cfg.Storage.Files == config.FilesLocal {
		storage, err := service.NewLocalStorage(afero.NewOsFs(), cfg.Storage.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("ошибка подготовки локального хранилища: %w", err)
		}
		return storage, nil
	}

	s3Service, err := service.NewS3Service(ctx, &cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания S3 сервиса: %w", err)
	}
	checks["s3"] = s3Service
	return s3Service, nil
}

func runServer(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Printf("ошибка работы сервера: %v", err)
			return
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, shutdownTimeout)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
