package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pior/asinfo"
	"github.com/pior/asinfo/internal/promexporter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Serve node and client metrics for Prometheus",
	Long: "Serve a /metrics endpoint. Every scrape requests the configured names from all nodes " +
		"and exports their numeric values along with the client statistics.",
	Args: cobra.NoArgs,
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().String("listen", "127.0.0.1:9145", "Address of the metrics HTTP server")
	metricsCmd.Flags().String("names", "statistics", "Comma-separated info names requested on every scrape")
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	names := strings.Split(viper.GetString("names"), ",")
	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		timeout = asinfo.DefaultTimeout
	}
	exporter := promexporter.NewExporter(client, names, timeout, slog.Default())

	mux := http.NewServeMux()
	mux.Handle("/metrics", exporter.Handler())

	server := &http.Server{
		Addr:              viper.GetString("listen"),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx := cmd.Context()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("serving metrics", "addr", server.Addr, "names", names)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
