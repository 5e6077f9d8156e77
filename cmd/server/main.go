package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/boopathiraja455/Voice-task-manager/internal/config"
	"github.com/boopathiraja455/Voice-task-manager/internal/serverapp"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config (optional)")
	flag.Parse()

	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}
	cfg.FromEnv()

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config:  cfg,
		DataDir: cfg.Storage.DataDir,
		Logger:  log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	log.Printf("listening on %s (data dir %s)", cfg.Server.Addr, cfg.Storage.DataDir)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, handler))
}
