package main

import (
	"flag"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/playforge/tictactoe/internal/app"
	"github.com/playforge/tictactoe/internal/config"
	"github.com/playforge/tictactoe/internal/web"
)

var configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "Path to the YAML config file")

func main() {
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("loading config", zap.Error(err))
	}

	// Websocket upgrades are restricted to the configured frontend host;
	// an empty host allows any origin.
	checkOrigin := func(r *http.Request) bool {
		if cfg.FrontendHost == "" {
			return true
		}
		return strings.Contains(r.Header.Get("Origin"), cfg.FrontendHost)
	}

	svc := app.NewService(log)
	svc.SetMoveDelay(cfg.MoveDelay())
	handler := web.NewServer(svc, log, checkOrigin)

	log.Info("starting server", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
