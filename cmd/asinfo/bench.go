package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/pior/asinfo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var benchCmd = &cobra.Command{
	Use:   "bench <name>",
	Short: "Measure request latency for an info name",
	Args:  cobra.ExactArgs(1),
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().Int("concurrency", 4, "Number of concurrent workers")
	benchCmd.Flags().Duration("duration", 5*time.Second, "How long to run the benchmark")
}

type benchResult struct {
	Duration  time.Duration
	Successes int64
	Failures  int64
	Latency   *hdrhistogram.Histogram
}

func runBench(cmd *cobra.Command, args []string) error {
	concurrency := viper.GetInt("concurrency")
	if concurrency <= 0 {
		return fmt.Errorf("invalid concurrency %d", concurrency)
	}

	duration := viper.GetDuration("duration")
	ctx, cancel := context.WithTimeout(cmd.Context(), duration)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Requesting %q with %d workers for %v...\n", args[0], concurrency, duration)

	// No successful request outlives both the request timeout and the run
	maxLatency := max(viper.GetDuration("timeout"), duration)
	result := bench(ctx, client, args[0], concurrency, maxLatency)
	printBenchResult(cmd.OutOrStdout(), result)
	printClientStats(cmd.OutOrStdout(), client)
	return nil
}

func bench(ctx context.Context, client *asinfo.Client, name string, concurrency int, maxLatency time.Duration) *benchResult {
	highest := max(maxLatency.Microseconds(), 2)
	result := &benchResult{Latency: hdrhistogram.New(1, highest, 3)}

	var mu sync.Mutex
	var wg sync.WaitGroup
	start := time.Now()

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			h := hdrhistogram.New(1, highest, 3)
			var successes, failures int64
			for ctx.Err() == nil {
				opStart := time.Now()
				_, err := client.RequestOne(ctx, name)
				if err != nil {
					if runExpired(ctx, err) {
						break
					}
					failures++
					continue
				}
				successes++
				// Out of range samples are clamped so counts stay consistent
				latency := min(time.Since(opStart).Microseconds(), h.HighestTrackableValue())
				_ = h.RecordValue(latency)
			}

			mu.Lock()
			defer mu.Unlock()
			result.Latency.Merge(h)
			result.Successes += successes
			result.Failures += failures
		}()
	}

	wg.Wait()
	result.Duration = time.Since(start)
	return result
}

// runExpired reports whether err comes from the end of the run rather than
// from the node. I/O can hit the shared deadline slightly before ctx.Err()
// reports it.
func runExpired(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}

func printBenchResult(w io.Writer, r *benchResult) {
	fmt.Fprintf(w, "Duration:   %v\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Successes:  %d\n", r.Successes)
	fmt.Fprintf(w, "Failures:   %d\n", r.Failures)
	if r.Successes == 0 {
		return
	}
	fmt.Fprintf(w, "Throughput: %.0f req/s\n", float64(r.Successes)/r.Duration.Seconds())
	for _, q := range []float64{50, 90, 99} {
		fmt.Fprintf(w, "p%-9.0f %v\n", q, time.Duration(r.Latency.ValueAtQuantile(q))*time.Microsecond)
	}
	fmt.Fprintf(w, "max        %v\n", time.Duration(r.Latency.Max())*time.Microsecond)
}

func printClientStats(w io.Writer, client *asinfo.Client) {
	stats := client.Stats()
	pool := client.PoolStats()
	fmt.Fprintf(w, "\nRequests: %d, errors: %d, sent: %d bytes, received: %d bytes\n",
		stats.Requests, stats.Errors, stats.BytesSent, stats.BytesReceived)
	fmt.Fprintf(w, "Buffers: %d created, %d destroyed, %d growths, %d waits\n",
		pool.CreatedBuffers, pool.DestroyedBuffers, stats.BufferGrowths, pool.AcquireWaitCount)
}
