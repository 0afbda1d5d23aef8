package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iwvelando/recipe-science/internal/server"
	"github.com/iwvelando/recipe-science/pkg/constants"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	serverConfig string
	address      string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine as a JSON API",
		Long: `Serve metrics, validation, feasibility and balancing over HTTP, along
with the ingredient catalog and Prometheus metrics at /metrics.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&opts.address, "address", "", "listen address override")
	return cmd
}

func runServe(rootOpts *RootOptions, opts *serveOptions, cmd *cobra.Command) error {
	conf, err := loadConfiguration(rootOpts)
	if err != nil {
		return err
	}
	srvConf, err := server.LoadConfig(opts.serverConfig)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load server configuration", err)
	}
	if opts.address != "" {
		srvConf.Address = opts.address
	}

	logger, err := initializeLogger(mergeLogging(conf.Logging, srvConf.Logging), rootOpts.LogLevel)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize logger", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	catalog, err := conf.BuildCatalog()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load ingredient catalog", err)
	}
	s := &session{conf: conf, logger: logger, catalog: catalog}
	eng, err := s.engineFor(catalog)
	if err != nil {
		return err
	}

	handler := server.NewHandler(logger, eng, server.HandlerOptions{
		MaxUploadSize: srvConf.UploadSizeBytes(),
		Version:       version,
		RateLimit:     srvConf.RateLimit,
		Burst:         srvConf.Burst,
		Defaults:      conf.Balancer.Options(),
	})
	srv := &http.Server{
		Addr:              srvConf.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("serving recipe science API",
		zap.String("op", "main.runServe"),
		zap.String("address", srvConf.Address),
		zap.Int("ingredients", catalog.Len()),
		zap.Int64("maxUploadSize", srvConf.UploadSizeBytes()),
		zap.Float64("rateLimit", srvConf.RateLimit),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return WrapExitError(ExitFailure, "server failed", err)
	case <-ctx.Done():
		logger.Info("shutting down",
			zap.String("op", "main.runServe"),
		)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return WrapExitError(ExitFailure, "failed to shut down server", err)
		}
		return nil
	}
}
