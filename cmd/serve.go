package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivanzzeth/chainsim/core"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const reloadInterval = 3 * time.Second

var (
	listenAddr string
	configPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulated node over http and websocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		env, err := loadEnv(ctx, envFile)
		if err != nil {
			return err
		}

		if logLevel == "" {
			if err := setupLogging(env.LogLevel); err != nil {
				return err
			}
		}

		if listenAddr == "" {
			listenAddr = env.Listen
		}

		if configPath == "" {
			configPath = env.ConfigPath
		}

		return serve(ctx, listenAddr, configPath)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address, overrides CHAINSIM_LISTEN")
	serveCmd.Flags().StringVar(&configPath, "config", "", "scenario file (.json, .yaml), overrides CHAINSIM_CONFIG")
}

func serve(ctx context.Context, addr, path string) error {
	server := core.NewServer(core.DefaultScenario())

	if path != "" {
		if err := core.WatchConfigFile(ctx, path, reloadInterval, server.SetScenario); err != nil {
			return err
		}
	} else {
		logrus.Info("no scenario file given, using the default scenario")
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("shutdown: %v", err)
		}
	}()

	info := server.Scenario().Info()
	logrus.Infof("chainsim %s listening on %s, simulating %s (%s)", core.Version, addr, info.TargetHost, info.Variant)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logrus.Info("chainsim stopped")
	return nil
}
