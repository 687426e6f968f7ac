package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/propchat/propchat/internal/api"
	"github.com/propchat/propchat/internal/chat"
	"github.com/propchat/propchat/internal/config"
	"github.com/propchat/propchat/internal/database"
	"github.com/propchat/propchat/internal/server"
	"github.com/propchat/propchat/internal/stats"
)

const defaultSigningKey = "5DYgQxMp1W9uK0d9cJFwVmJ5nC2X2D6e2H4G8hQ1sL0="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingKey     string
	runMigrations  bool
	allowedOrigins stringSliceFlag
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "database connection string")
	flag.StringVar(&signingKey, "signing-key", defaultSigningKey, "base64 encoded signing key")
	flag.BoolVar(&runMigrations, "migrate", false, "apply pending schema migrations on startup")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[propchat] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}

	dbConn, err := database.NewPgChatRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	if runMigrations {
		if err := dbConn.Migrate(); err != nil {
			logger.Fatal("migrate:", err)
		}
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	svc := chat.NewChatService(logger, dbConn)

	gateway, err := server.NewGateway(logger, svc, statsUpdater)
	if err != nil {
		logger.Fatal("new gateway:", err)
	}
	svc.SetBroadcaster(gateway)

	srv := api.NewPropChatApp(mux, logger, gateway, dbConn, svc, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go gateway.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down gateway...")
	if err := gateway.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("gateway shutdown:", err)
	}

	logger.Println("shutdown complete")
}
