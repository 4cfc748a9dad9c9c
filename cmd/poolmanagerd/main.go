package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/heliopool/poolmanager/internal/config"
	"github.com/heliopool/poolmanager/internal/farmrig"
	"github.com/heliopool/poolmanager/internal/handlers"
	"github.com/heliopool/poolmanager/internal/interfaces"
	"github.com/heliopool/poolmanager/internal/lib"
	"github.com/heliopool/poolmanager/internal/pool"
	"github.com/heliopool/poolmanager/internal/poolmanager"
	"github.com/heliopool/poolmanager/internal/stratumclient"
)

func main() {
	if err := start(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	os.Exit(0)
}

func start() error {
	var cfg config.Config
	if err := config.LoadConfig(&cfg, &os.Args); err != nil {
		return err
	}

	log, err := lib.NewLogger(cfg.Log.Level, cfg.Log.Color, cfg.Log.IsProd, cfg.Log.JSON, cfg.Log.FolderPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Infof("poolmanagerd %s", config.BuildVersion)

	client := stratumclient.New(log.Named("stratum"))
	farm := farmrig.New(log.Named("farm"), farmrig.DefaultConfig())

	minerType := interfaces.MinerType(cfg.Manager.MinerType)
	managerCfg := poolmanager.Config{
		MaxConnectionAttempts:  cfg.Manager.MaxConnectionAttempts,
		FailoverTimeout:        cfg.Manager.FailoverTimeout(),
		HashrateReportInterval: cfg.Manager.HashrateReportInterval(),
	}
	manager := poolmanager.NewManager(client, farm, minerType, managerCfg, log.Named("manager"))

	for _, uri := range strings.Split(cfg.Pool.Endpoints, ",") {
		uri = strings.TrimSpace(uri)
		if uri == "" {
			continue
		}
		endpoint, err := pool.ParseEndpoint(uri)
		if err != nil {
			return fmt.Errorf("pool endpoint %q: %w", uri, err)
		}
		for _, warning := range pool.CredentialWarnings(endpoint) {
			log.Warnf("%s", warning)
		}
		manager.AddConnection(endpoint)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-shutdownChan
		log.Warnf("received signal: %s", s)
		cancel()

		s = <-shutdownChan
		log.Warnf("received signal: %s, forcing exit", s)
		os.Exit(1)
	}()

	engine := handlers.NewHTTPHandler(manager, log.Named("http"))

	g, ctx := errgroup.WithContext(ctx)

	manager.Start()

	g.Go(func() error {
		return handlers.RunHTTPServer(ctx, cfg.HTTP.Address, engine)
	})

	g.Go(func() error {
		<-ctx.Done()
		manager.Stop()
		return nil
	})

	err = g.Wait()
	log.Infof("poolmanagerd exited: %v", err)
	return err
}
