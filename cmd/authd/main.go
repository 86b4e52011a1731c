package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clipstream/authcore/auth"
	"github.com/clipstream/authcore/internal/config"
	"github.com/clipstream/authcore/server"
	"github.com/clipstream/authcore/sessions"
	"github.com/clipstream/authcore/token"
	"github.com/clipstream/authcore/users"
	"github.com/clipstream/authcore/users/repofake"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}

func run(logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config.Load")
	}
	displayAppname("authcore")

	userRepo := repofake.NewFakeUserRepo()
	store := sessionStore(cfg, userRepo)

	issuer := token.NewIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	verifier := token.NewVerifier(cfg.AccessTokenSecret, cfg.RefreshTokenSecret)

	authService, err := auth.NewService(
		auth.Repos{Users: userRepo, Sessions: store},
		issuer,
		verifier,
		auth.WithLogger(logger),
		auth.WithPasswordCost(cfg.PasswordHashCost),
		auth.WithRefreshRotation(cfg.RotateRefreshTokens),
	)
	if err != nil {
		return errors.Wrap(err, "auth.NewService")
	}

	srv, err := server.New(authService, server.WithServerLogger(logger))
	if err != nil {
		return errors.Wrap(err, "server.New")
	}

	httpServer := &http.Server{Addr: cfg.Addr, Handler: srv}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	return shutdown(httpServer)
}

// sessionStore picks Redis when configured, otherwise keeps sessions on the
// user records.
func sessionStore(cfg *config.Config, userRepo users.UserRepo) sessions.Store {
	if cfg.RedisAddr == "" {
		return sessions.NewRecordStore(userRepo)
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return sessions.NewRedisStore(client, cfg.RefreshTokenTTL)
}

func listenAndServe(server *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
