package main

import (
	"chatline/auth"
	"chatline/domain"
	"chatline/infrastructure/grpc"
	"chatline/infrastructure/rest"
	"chatline/infrastructure/storage"
	"chatline/infrastructure/ws"
	"chatline/internal"
	"chatline/repositories"
	"chatline/runtime"
	"chatline/runtime/workers"
	"chatline/services"
	"context"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// serverStats feeds /health from the live runtime state.
type serverStats struct {
	registry    *runtime.Registry
	connections *runtime.Connections
	monitor     *workers.HealthMonitoringWorker
	queues      *workers.ChannelCapacityWorker
}

func (s serverStats) Connections() int             { return s.connections.Count() }
func (s serverStats) OnlineUsers() int             { return s.registry.Count() }
func (s serverStats) Process() domain.ProcessStats { return s.monitor.Last() }
func (s serverStats) Queues() []domain.ChannelCapacity {
	return s.queues.Last()
}

// run wires every component, serves until a signal or a listener failure,
// then shuts down in order: listeners, workers, storage.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	messageRepository, err := repositories.NewMessageRepository(db, log)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("message sequence failed: %w", err)
	}
	userRepository := repositories.NewUserRepository(db)

	// 3. Object storage
	uploader, err := storage.NewS3Uploader(context.Background(), log, storage.S3Config{
		Region:        config.S3Region,
		BaseEndpoint:  config.S3BaseEndpoint,
		AccessKey:     config.S3AccessKey,
		SecretKey:     config.S3SecretKey,
		Bucket:        config.S3Bucket,
		PublicBaseURL: config.S3PublicBaseURL,
		MaxImageBytes: config.MaxImageBytes,
	})
	if err != nil {
		_ = messageRepository.Close()
		_ = db.Close()
		return fmt.Errorf("object storage setup failed: %w", err)
	}

	// 4. Real-time core
	registry := runtime.NewRegistry()
	if config.PresenceStrictUnregister {
		registry = runtime.NewStrictRegistry()
	}
	connections := runtime.NewConnections()
	dispatcher := runtime.NewDispatcher(log, registry, connections, config.PushTimeout)
	gateway := runtime.NewGateway(log, registry, connections, dispatcher, config.LifecycleBufferSize)

	monitor := workers.NewHealthMonitoringWorker(log, config.MetricInterval)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	queues := workers.NewChannelCapacityWorker(log, []workers.NamedChannel{
		{Name: "lifecycle", Channel: gateway.Events()},
	}, config.MetricInterval)
	sup.Add(workers.NewLifecycleWorker(log, gateway), monitor, queues)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervisorDone)
	}()

	// 5. Services & transports
	tokens := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(log, userRepository, tokens, uploader)
	chatService := services.NewChatService(log, userRepository, messageRepository, dispatcher, uploader)
	wsHandler := ws.NewHandler(log, gateway, ws.Config{
		BufferSize:       config.ConnectionBufferSize,
		PingInterval:     config.PingInterval,
		WriteTimeout:     config.WriteTimeout,
		ReadLimit:        config.ReadLimit,
		LifecycleTimeout: config.PushTimeout,
	})
	app := rest.NewServer(log, rest.Config{
		AllowedOrigins: config.AllowedOrigins,
		CookieSecure:   config.CookieSecure,
		BodyLimit:      config.BodyLimit,
		AccessLog:      config.AccessLog,
	}, authService, chatService, userRepository, tokens, wsHandler,
		serverStats{registry: registry, connections: connections, monitor: monitor, queues: queues}).App()

	admin := grpc.NewHealthServer(log)

	// 6. Listeners
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	adminAddress := fmt.Sprintf("%s:%d", config.Host, config.AdminPort)
	adminListener, err := net.Listen("tcp", adminAddress)
	if err != nil {
		cancel()
		<-supervisorDone
		_ = messageRepository.Close()
		_ = db.Close()
		return fmt.Errorf("failed to listen on %s: %w", adminAddress, err)
	}

	errChan := make(chan error, 2)
	go func() {
		if err := admin.Serve(adminListener); err != nil {
			errChan <- err
		}
	}()
	go func() {
		log.Info("Starting HTTP server", "address", address)
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	admin.MarkServing()

	// 7. Ordered shutdown, run once whatever triggered it
	var once sync.Once
	var shutdownErr error
	shutdown := func(ctx context.Context) error {
		once.Do(func() {
			log.Info("Shutting down gracefully...")
			if err := admin.Stop(ctx); err != nil {
				log.Warn("Admin server stop", "error", err)
			}
			if err := app.ShutdownWithContext(ctx); err != nil {
				shutdownErr = fmt.Errorf("HTTP shutdown failed: %w", err)
			}
			sup.Stop()
			cancel()
			<-supervisorDone
			if err := messageRepository.Close(); err != nil {
				log.Warn("Sequence release failed", "error", err)
			}
			log.Info("Closing BadgerDB...")
			if err := db.Close(); err != nil && shutdownErr == nil {
				shutdownErr = fmt.Errorf("database close failed: %w", err)
			}
			log.Info("Program stopped cleanly")
		})
		return shutdownErr
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), config.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"chatline": shutdown,
		})

	// 8. Wait for a signal or a listener failure
	select {
	case code := <-wait:
		if code != 0 {
			return fmt.Errorf("shutdown finished with exit code %d", code)
		}
		return nil
	case err := <-errChan:
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancelShutdown()
		_ = shutdown(shutdownCtx)
		return err
	}
}
