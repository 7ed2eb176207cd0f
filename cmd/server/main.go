package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"vacstat/internal/api"
	"vacstat/internal/config"
	"vacstat/internal/engine"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Errorf("config: %v", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("config: %v", err)
		os.Exit(1)
	}
	log.SetLevel(cfg.Level())

	// 1. Initialize Echo (starts instantly)
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = api.JSONSerializer{}
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// 2. Handler starts with nil data and answers 503 until the pipeline is done
	h := api.NewHandler(nil)
	h.RegisterRoutes(e)

	// 3. Run the pipeline in the background
	go func() {
		t0 := time.Now()
		if cfg.PartitionDir == "" {
			defer os.RemoveAll(cfg.ResolvePartitionDir())
		}

		p := &engine.Pipeline{
			Source:       cfg.Input,
			Profession:   cfg.Profession,
			PartitionDir: cfg.ResolvePartitionDir(),
			SortInput:    cfg.SortInput,
			Workers:      cfg.Workers,
			Rates:        cfg.Rates,
		}
		report, err := p.Run(context.Background())
		if err != nil {
			h.SetError(err)
			log.Errorf("pipeline: %v", err)
			return
		}

		h.SetData(report)
		log.Infof("pipeline finished in %v, API is ready", time.Since(t0))
	}()

	// 4. Start server
	log.Infof("server ready on %s (data loading in background)", cfg.Server.Addr)
	e.Logger.Fatal(e.Start(cfg.Server.Addr))
}
