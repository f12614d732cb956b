package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pior/asinfo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	client *asinfo.Client

	rootCmd = &cobra.Command{
		Use:               "asinfo",
		Short:             "Query nodes over the info protocol",
		SilenceUsage:      true,
		PersistentPreRunE: setupClient,
		PersistentPostRun: func(*cobra.Command, []string) {
			if client != nil {
				client.Close()
			}
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("hosts", "127.0.0.1:3000", "Comma-separated list of node addresses")
	flags.Duration("timeout", asinfo.DefaultTimeout, "Timeout of a single request")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.Int64("max-response-size", asinfo.DefaultMaxResponseSize, "Largest accepted response in bytes, negative for unbounded")
	flags.Bool("breaker", false, "Enable a circuit breaker per node")
	flags.String("pool", "channel", "Buffer pool implementation (channel, puddle)")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(valuesCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig loads env files and binds ASINFO_* environment variables.
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("asinfo")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setupClient(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	logger, err := newLogger(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if cmd == versionCmd {
		return nil
	}

	config := asinfo.Config{
		Timeout:         viper.GetDuration("timeout"),
		MaxResponseSize: viper.GetInt64("max-response-size"),
		Logger:          logger,
	}

	switch pool := viper.GetString("pool"); pool {
	case "channel":
		config.BufferPool = asinfo.NewChannelPool
	case "puddle":
		config.BufferPool = asinfo.NewPuddlePool
	default:
		return fmt.Errorf("invalid pool %q", pool)
	}

	if viper.GetBool("breaker") {
		config.NewCircuitBreaker = asinfo.NewCircuitBreakerConfig(1, time.Minute, 10*time.Second)
	}

	client, err = asinfo.NewClient(asinfo.NewStaticServers(hosts()...), config)
	return err
}

func hosts() []string {
	var addrs []string
	for _, h := range strings.Split(viper.GetString("hosts"), ",") {
		if h = strings.TrimSpace(h); h != "" {
			addrs = append(addrs, h)
		}
	}
	return addrs
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}
