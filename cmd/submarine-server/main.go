package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yuanzac/submarine/common/database"
	"github.com/yuanzac/submarine/common/logger"
	"github.com/yuanzac/submarine/common/mqtt"
	commonredis "github.com/yuanzac/submarine/common/redis"
	"github.com/yuanzac/submarine/internal/config"
	httpapi "github.com/yuanzac/submarine/internal/http"
	"github.com/yuanzac/submarine/internal/repository"
	"github.com/yuanzac/submarine/internal/service"
	"github.com/yuanzac/submarine/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "submarine-server")
	if err != nil {
		fallback, ferr := logger.NewLoggerWithDefaults()
		if ferr != nil {
			panic(ferr)
		}
		log = fallback
		log.Warn("Invalid log settings, using defaults", zap.Error(err))
	}
	defer log.Sync()

	if cfg.SiteFileErr != nil {
		log.Warn("Failed to load site file, using defaults", zap.Error(cfg.SiteFileErr))
	} else if cfg.SiteFile != "" {
		log.Info("Loaded site file", zap.String("path", cfg.SiteFile))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis backs session tokens and the login log; fall back to memory when it is down.
	var (
		kv          store.KV
		loginLog    store.LoginLog
		redisClient *commonredis.Client
	)
	if rc, err := commonredis.Connect(ctx, &cfg.Redis, 0); err == nil {
		redisClient = rc
		kv = store.NewRedisKV(rc)
		loginLog = store.NewRedisLoginLog(rc)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
	} else {
		log.Warn("Redis unreachable, sessions are kept in memory", zap.Error(err))
		kv = store.NewMemoryKV()
		loginLog = store.NewMemoryLoginLog(1000)
	}

	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for submarine-server")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}

	var (
		deptsRepo repository.DepartmentsRepository
		usersRepo repository.UsersRepository
		dictsRepo repository.DictsRepository
	)
	if db != nil {
		deptsRepo = repository.NewPostgresDepartmentsRepository(db)
		usersRepo = repository.NewPostgresUsersRepository(db)
		dictsRepo = repository.NewPostgresDictsRepository(db)
	} else {
		deptsRepo = repository.NewMemoryDepartmentsRepository(repository.SampleDepartments()...)
		usersRepo = repository.NewMemoryUsersRepository()
		dictsRepo = repository.NewMemoryDictsRepositoryWithDefaults()
	}
	if cfg.Auth.SeedAdmin {
		if err := service.EnsureAdmin(ctx, usersRepo, cfg.Auth.AdminPassword, log); err != nil {
			log.Warn("Failed to seed admin user", zap.Error(err))
		}
	}

	var notifier service.Notifier = service.NopNotifier{}
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		if mc, err := mqtt.NewClient(&cfg.MQTT.MQTTConfig); err == nil {
			mqttClient = mc
			notifier = service.NewMQTTNotifier(mc, cfg.MQTT.Topic, log)
			log.Info("MQTT connected", zap.String("broker", cfg.MQTT.Broker), zap.String("topic", cfg.MQTT.Topic))
		} else {
			log.Warn("MQTT enabled but connection failed, department events are not published", zap.Error(err))
		}
	}

	auth := service.NewAuthService(usersRepo, kv, loginLog, cfg.Auth.TokenTTL, log)
	dicts := service.NewDictService(dictsRepo, log)
	handler := httpapi.NewHandler(httpapi.Deps{
		Depts:          service.NewDeptService(deptsRepo, notifier, log),
		Auth:           auth,
		Users:          service.NewUserService(auth, usersRepo, service.NewDictTranslator(dicts), log),
		Dicts:          dicts,
		RequireAuth:    cfg.Auth.Required,
		MaxConnections: cfg.Server.MaxConnections,
		Logger:         log,
	})

	opts := service.ServerOptions{
		Addr:        cfg.ListenAddr(),
		ReadTimeout: cfg.Server.ReadTimeout,
	}
	if cfg.Server.SSL {
		opts.CertFile = cfg.Server.CertFile
		opts.KeyFile = cfg.Server.KeyFile
		opts.ClientAuth = cfg.Server.ClientAuth
		opts.TrustStore = cfg.Server.TrustStore
	}
	srv, err := service.NewServer(opts, handler, log)
	if err != nil {
		log.Fatal("Invalid server settings", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if redisClient != nil {
		_ = commonredis.Close(redisClient)
	}
	if db != nil {
		_ = database.Close(db)
	}
}
