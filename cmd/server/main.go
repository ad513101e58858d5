package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/budget-tracker-api/internal/config"
	"github.com/vasapolrittideah/budget-tracker-api/internal/handler"
	"github.com/vasapolrittideah/budget-tracker-api/internal/repository"
	"github.com/vasapolrittideah/budget-tracker-api/internal/usecase"
	"github.com/vasapolrittideah/budget-tracker-api/shared/auth"
	"github.com/vasapolrittideah/budget-tracker-api/shared/mailer"
	"github.com/vasapolrittideah/budget-tracker-api/shared/validation"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.NewConfig(&logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}

	db := client.Database(cfg.MongoDatabase)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	tokenRepo := repository.NewConfirmationTokenMongoRepository(ctx, &logger, db)
	accountRepo := repository.NewAccountMongoRepository(db)
	memberRepo := repository.NewAccountMemberMongoRepository(db)
	transactionRepo := repository.NewTransactionMongoRepository(db)
	transactor := repository.NewMongoTransactor(client)

	smtpMailer := mailer.NewMailer(&logger)
	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Audience, cfg.Token.Issuer)

	validator, err := validation.NewValidator()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create validator")
	}

	confirmationUsecase := usecase.NewConfirmationUsecase(
		userRepo, tokenRepo, transactor, smtpMailer, cfg, &logger,
	)
	authUsecase := usecase.NewAuthUsecase(
		userRepo, accountRepo, memberRepo, confirmationUsecase, transactor, jwtAuth, cfg, &logger,
	)
	userUsecase := usecase.NewUserUsecase(
		userRepo, tokenRepo, accountRepo, memberRepo, transactionRepo, transactor, smtpMailer, cfg, &logger,
	)

	authHandler := handler.NewAuthHandler(authUsecase, confirmationUsecase, validator, &logger)
	userHandler := handler.NewUserHandler(userUsecase, validator, &logger)
	requireAuth := handler.RequireAuth(jwtAuth, cfg.Token.Secret)

	router := handler.NewRouter(authHandler, userHandler, requireAuth)

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.ServerAddress).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down HTTP server")
	}

	logger.Info().Msg("server stopped")
}
