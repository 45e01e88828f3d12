package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/secretops/attrcrypt/api/attrhandler"
	"github.com/secretops/attrcrypt/cmd/flags"
	"github.com/secretops/attrcrypt/directory"
	"github.com/secretops/attrcrypt/engine"
	"github.com/secretops/attrcrypt/httpserver"
	"github.com/secretops/attrcrypt/interfaces"
	"github.com/secretops/attrcrypt/orchestrator"
	"github.com/secretops/attrcrypt/store"
	"github.com/urfave/cli/v2"
)

var serverFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "127.0.0.1:8080",
		Usage: "address to listen on for the attribute API",
	},
	flags.NodeIDFlag,
	flags.NodeKeyFileFlag,
	flags.StoreURIFlag,
	flags.LocalModeFlag,
	flags.DNSZoneFlag,
	flags.DNSResolverFlag,
	flags.LogServiceFlagFn("attrserver"),
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:  "attrserver",
		Usage: "Serve a node's encrypted attributes over HTTP",
		Flags: serverFlags,
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String("listen-addr")
			nodeID := interfaces.NodeID(cCtx.String(flags.NodeIDFlag.Name))
			keyFile := cCtx.String(flags.NodeKeyFileFlag.Name)
			storeURI := cCtx.String(flags.StoreURIFlag.Name)
			localMode := cCtx.Bool(flags.LocalModeFlag.Name)
			dnsZone := cCtx.String(flags.DNSZoneFlag.Name)
			dnsResolver := cCtx.String(flags.DNSResolverFlag.Name)

			logger := flags.SetupLogger(cCtx)

			privateKey, err := os.ReadFile(keyFile)
			if err != nil {
				logger.Error("Failed to read node key file", "err", err)
				return err
			}

			backend, err := store.NewBackendFactory(logger).BackendFor(storeURI)
			if err != nil {
				logger.Error("Failed to create document backend", "err", err)
				return err
			}

			node, err := store.LoadNode(context.Background(), nodeID, backend, logger)
			if err != nil {
				logger.Error("Failed to load node document", "err", err)
				return err
			}

			// The static directory backs the registration API; a DNS zone
			// switches scope resolution to published records instead.
			staticDir := directory.NewStaticDirectory(logger)
			var dir interfaces.NodeDirectory = staticDir
			if dnsZone != "" {
				logger.Info("Using DNS scope resolution", "zone", dnsZone)
				dir = directory.NewDNSDirectory(dnsZone, dnsResolver, logger)
			}

			eng, err := engine.NewLocalEngine(engine.LocalEngineConfig{
				NodeID:     nodeID,
				PrivateKey: privateKey,
				Directory:  dir,
				Remote:     store.NewRemoteStore(backend, logger),
				Log:        logger,
			})
			if err != nil {
				logger.Error("Failed to create encryption engine", "err", err)
				return err
			}

			orch, err := orchestrator.New(orchestrator.Config{
				Engine:    eng,
				Store:     node,
				Mode:      interfaces.StaticMode(localMode),
				Activator: eng,
				Log:       logger,
			})
			if err != nil {
				logger.Error("Failed to create orchestrator", "err", err)
				return err
			}

			handler := attrhandler.NewHandler(orch, staticDir, logger)

			cfg := flags.ConfigureServer(cCtx, logger, listenAddr)
			server, err := httpserver.New(cfg, handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server", "node", string(nodeID), "store", backend.LocationURI())
			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
