package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/danschewy/lexiform/app"
	"github.com/danschewy/lexiform/config"
	"github.com/danschewy/lexiform/database"
	"github.com/danschewy/lexiform/httpx"
	"github.com/danschewy/lexiform/llm"
	"github.com/danschewy/lexiform/log"
	"github.com/danschewy/lexiform/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	app := app.App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
		Assistant:    llm.NewClient(cfg.OpenAI),
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Minute, // summary streaming holds the response open
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
