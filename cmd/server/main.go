package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/milk9111/worldsmith/config"
	"github.com/milk9111/worldsmith/prefabs"
	"github.com/milk9111/worldsmith/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to server config yaml")
		listen     = flag.String("listen", "", "listen address override")
		noPhysics  = flag.Bool("no-physics", false, "run without a physics backend")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("server: config: %v", err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *noPhysics {
		disabled := false
		cfg.Physics = &disabled
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("server: %v", err)
	}
	if err := srv.LoadWorld(); err != nil {
		log.Fatalf("server: load world: %v", err)
	}

	reload := make(chan string, 16)
	watcher, err := prefabs.NewWatcher(cfg.PrefabDir, filepath.Join(cfg.PrefabDir, "scripts"))
	if err != nil {
		log.Printf("server: prefab watching disabled: %v", err)
	} else {
		defer watcher.Close()
		go func() {
			for name := range watcher.Events {
				reload <- name
			}
		}()
		go func() {
			for err := range watcher.Errors {
				log.Printf("server: prefab watch: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.Hub().ServeWS)
	httpSrv := &http.Server{Addr: cfg.Listen, Handler: mux}
	go func() {
		log.Printf("server: listening on %s", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: listen: %v", err)
		}
	}()

	srv.Run(ctx, reload)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
