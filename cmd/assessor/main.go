package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/cache"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/config"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/providers/electricitymaps"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/providers/nrel"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/providers/windatlas"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/server"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/store"
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		klog.ErrorS(err, "Failed to load configuration")
		os.Exit(1)
	}

	klog.InfoS("Starting renewable assessor",
		"port", cfg.Server.Port,
		"storePath", cfg.Store.Path,
		"defaultPreset", cfg.Wind.DefaultPreset,
		"metricsEnabled", cfg.Server.MetricsEnabled)

	carbonCache := cache.New(cfg.ElectricityMaps.CacheTTL, cfg.ElectricityMaps.MaxCacheAge)
	defer carbonCache.Close()

	carbonClient := electricitymaps.NewClient(cfg.ElectricityMaps, electricitymaps.WithCache(carbonCache))
	defer carbonClient.Close()

	nrelClient := nrel.NewClient(cfg.NREL)
	windClient := windatlas.NewClient(cfg.WindAtlas)

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		klog.ErrorS(err, "Failed to open assessment store", "path", cfg.Store.Path)
		os.Exit(1)
	}
	defer st.Close()

	srv := server.New(*cfg, nrelClient, carbonClient, windClient, st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		klog.InfoS("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	// Periodic retention cleanup of stored assessments.
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := st.Cleanup(cfg.Store.RetentionDays); err != nil {
					klog.ErrorS(err, "Assessment cleanup failed")
				}
			}
		}
	}()

	go func() {
		if err := srv.Run(); err != nil {
			klog.ErrorS(err, "HTTP server error")
			cancel()
		}
	}()

	<-ctx.Done()

	klog.InfoS("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		klog.ErrorS(err, "Error shutting down HTTP server")
	}

	klog.InfoS("Renewable assessor stopped")
}
