package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/secretops/attrcrypt/common"
	"github.com/secretops/attrcrypt/httpserver"
	"github.com/urfave/cli/v2"
)

// SetupLogger builds the process logger from the common logging flags.
func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// ConfigureServer builds the HTTP server config from the common server flags.
func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *httpserver.Config {
	enablePprof := cCtx.Bool("pprof")
	drainDuration := time.Duration(cCtx.Int64("drain-seconds")) * time.Second

	return &httpserver.Config{
		ListenAddr:               listenAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var NodeIDFlag = &cli.StringFlag{
	Name:     "node-id",
	Required: true,
	Usage:    "name of this node, used as the document name and directory entry",
}

var NodeKeyFileFlag = &cli.StringFlag{
	Name:     "node-key-file",
	Required: true,
	Usage:    "path to the node's EC private key in PEM format",
}

var StoreURIFlag = &cli.StringFlag{
	Name:  "store-uri",
	Value: "file:///var/lib/attrcrypt/nodes",
	Usage: "document backend URI (file://, vault://, s3://, mem://)",
}

var LocalModeFlag = &cli.BoolFlag{
	Name:  "local-mode",
	Value: false,
	Usage: "run in local (degraded) mode, which disables attribute encryption",
}

var DNSZoneFlag = &cli.StringFlag{
	Name:  "dns-zone",
	Usage: "DNS zone to resolve search scopes in; when unset the in-memory directory is used",
}

var DNSResolverFlag = &cli.StringFlag{
	Name:  "dns-resolver",
	Usage: "DNS resolver address as host:port, defaults to the system stub resolver",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
}
