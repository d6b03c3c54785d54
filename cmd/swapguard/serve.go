package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ligun0805/swapguard/internal/logger"
	"github.com/ligun0805/swapguard/internal/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose simulate, assess, preflight and gas over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, chainID, err := dialChain(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		if !verboseFlag {
			gin.SetMode(gin.ReleaseMode)
		}
		addr := listenAddr
		if addr == "" {
			addr = settings.ListenAddr
		}
		srv := server.New(server.Config{
			Reader:             client,
			Gas:                client,
			ExpectedChainID:    chainFlag,
			DefaultSlippageBps: settings.DefaultSlippageBps,
			GasBlocks:          settings.NetcheckBlocks,
			GasPercentiles:     settings.NetcheckPcts,
			Log:                logger.With(zap.String("component", "server")),
		})
		httpSrv := &http.Server{
			Addr:              addr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", addr), zap.Uint64("chainId", chainID))
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default: LISTEN_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
