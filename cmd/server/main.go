package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	"chat-server/backend/internal/audit"
	chathandler "chat-server/backend/internal/chat/handler"
	chatrepo "chat-server/backend/internal/chat/repository"
	chatservice "chat-server/backend/internal/chat/service"
	"chat-server/backend/internal/config"
	"chat-server/backend/internal/db"
	"chat-server/backend/internal/filestore"
	filehandler "chat-server/backend/internal/filestore/handler"
	healthhandler "chat-server/backend/internal/health/handler"
	identityhandler "chat-server/backend/internal/identity/handler"
	identityservice "chat-server/backend/internal/identity/service"
	"chat-server/backend/internal/policy/engine"
	"chat-server/backend/internal/security"
	"chat-server/backend/internal/server"
	"chat-server/backend/internal/server/interceptors"
	"chat-server/backend/internal/telemetry"
	otelsetup "chat-server/backend/internal/telemetry/otel"
	"chat-server/backend/internal/telemetry/producer"
	userhandler "chat-server/backend/internal/user/handler"
	userrepo "chat-server/backend/internal/user/repository"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("config: DATABASE_URL is required")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx := context.Background()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	kafkaProducer, err := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	emitter := telemetry.Fanout{otelsetup.NewEventEmitter(providers.LoggerProvider)}
	if kafkaProducer != nil {
		emitter = append(emitter, kafkaProducer)
		log.Printf("telemetry: producing to kafka topic %s", kafkaProducer.Topic())
	}
	auditLogger := audit.NewLogger(emitter, interceptors.ClientIP, interceptors.GetRequestID)

	tokens, err := security.LoadTokenProvider(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt keys: %v", err)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	policy, err := engine.LoadOPAEvaluator(ctx, cfg.FilePolicyPath)
	if err != nil {
		log.Fatalf("policy: %v", err)
	}
	store, err := filestore.New(cfg.BaseDir, policy)
	if err != nil {
		log.Fatalf("filestore: %v", err)
	}
	log.Printf("filestore: serving blobs from %s", store.BaseDir())

	users := userrepo.NewPostgresRepository(database)
	chats := chatrepo.NewPostgresRepository(database)
	authService := identityservice.NewAuthService(users, security.NewHasher(cfg.BcryptCost), tokens, auditLogger)
	chatService := chatservice.NewChatService(chats, users, store)
	checker := healthhandler.NewChecker(database, policy)

	router := server.NewRouter(server.Deps{
		Tokens:  tokens,
		Members: chats,
		Auth:    identityhandler.NewAuthHandler(authService),
		Users:   userhandler.NewUserHandler(users),
		Chats:   chathandler.NewChatHandler(chatService),
		Files:   filehandler.NewFileHandler(store, cfg.MaxUploadBytes),
		Health:  checker,
		Emitter: emitter,
		Audit:   auditLogger,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("listen: %v", err)
		}
		grpcServer = server.NewGRPCServer(checker)
		go func() {
			log.Printf("gRPC health server listening on %s", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				log.Fatalf("grpc serve: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	// Let in-flight async emits finish before the exporters go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	otelCtx, otelCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer otelCancel()
	if err := providers.Shutdown(otelCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	if err := kafkaProducer.Close(); err != nil {
		log.Printf("kafka close: %v", err)
	}
	log.Println("server stopped")
}
