package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lixenwraith/asynclog"
	"github.com/lixenwraith/asynclog/metrics"
)

const (
	totalBursts    = 100
	logsPerBurst   = 500
	maxMessageSize = 10000
	numProducers   = 500
)

const configFile = "stress_config.toml"

// Example TOML content for stress test
var tomlContent = `
# Example stress_config.toml
[asynclog]
  level = -4 # Debug
  name = "stress_test"
  directory = "./logs"
  format = "txt"
  extension = "log"
  workers = 4
  idle_mode = "park"
  backend = "rotate"
  flush_level = "buffered"
  flush_interval_ms = 50
  rotate_mode = "size"
  max_size_kb = 1000 # Force frequent rotation (1MB)
  enable_retention = true
  retention_days = 0.000116 # ~10 seconds
  retention_check_mins = 0.084 # ~5 seconds
  heartbeat_level = 2
  heartbeat_interval_s = 2
`

var levels = []int64{
	asynclog.LevelDebug,
	asynclog.LevelInfo,
	asynclog.LevelWarn,
	asynclog.LevelError,
}

var logger *asynclog.Logger

func generateRandomMessage(size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rand.Intn(len(chars))])
	}
	return sb.String()
}

// logBurst simulates a burst of logging activity
func logBurst(burstID int) {
	for i := 0; i < logsPerBurst; i++ {
		level := levels[rand.Intn(len(levels))]
		msg := generateRandomMessage(rand.Intn(maxMessageSize) + 10)
		args := []any{
			msg,
			"prd", burstID % numProducers,
			"bst", burstID,
			"seq", i,
		}
		switch level {
		case asynclog.LevelDebug:
			logger.Debug(args...)
		case asynclog.LevelInfo:
			logger.Info(args...)
		case asynclog.LevelWarn:
			logger.Warn(args...)
		case asynclog.LevelError:
			logger.Error(args...)
		}
	}
}

// producer goroutine function
func producer(burstChan chan int, wg *sync.WaitGroup, completedBursts *atomic.Int64) {
	defer wg.Done()
	for burstID := range burstChan {
		logBurst(burstID)
		completed := completedBursts.Add(1)
		if completed%10 == 0 || completed == totalBursts {
			fmt.Printf("\rProgress: %d/%d bursts completed", completed, totalBursts)
		}
	}
}

func main() {
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address, e.g. :9090")
	flag.Parse()

	fmt.Println("--- Logger Stress Test ---")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write example config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created example config file: %s\n", configFile)
	}

	cfg, err := asynclog.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	_ = os.RemoveAll(cfg.Directory)

	fmt.Println("Effective configuration:")
	spew.Dump(cfg)

	logger = asynclog.NewLogger()
	if err := logger.ApplyConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start logger: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Logger started. Logs will be written to: %s\n", cfg.Directory)

	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		if _, err := metrics.Register(reg, logger, ""); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register metrics: %v\n", err)
			os.Exit(1)
		}
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				fmt.Fprintf(os.Stderr, "Metrics server stopped: %v\n", err)
			}
		}()
		fmt.Printf("Serving metrics on %s/metrics\n", *metricsAddr)
	}

	fmt.Printf("Starting stress test: %d producers, %d bursts, %d logs/burst.\n",
		numProducers, totalBursts, logsPerBurst)
	fmt.Println("Check log directory size, file rotation and retention.")
	fmt.Println("Press Ctrl+C to stop early.")

	burstChan := make(chan int, numProducers)
	var wg sync.WaitGroup
	completedBursts := atomic.Int64{}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	stopChan := make(chan struct{})

	go func() {
		<-sigChan
		fmt.Println("\n[Signal Received] Stopping burst generation...")
		close(stopChan)
	}()

	for i := 0; i < numProducers; i++ {
		wg.Add(1)
		go producer(burstChan, &wg, &completedBursts)
	}

	startTime := time.Now()
submit:
	for i := 1; i <= totalBursts; i++ {
		select {
		case burstChan <- i:
		case <-stopChan:
			fmt.Println("[Signal Received] Halting burst submission.")
			break submit
		}
	}
	close(burstChan)

	fmt.Println("\nWaiting for producers to finish...")
	wg.Wait()
	duration := time.Since(startTime)
	finalCompleted := completedBursts.Load()

	fmt.Printf("\n--- Test Finished ---")
	fmt.Printf("\nCompleted %d/%d bursts in %v\n", finalCompleted, totalBursts, duration.Round(time.Millisecond))
	if finalCompleted > 0 && duration.Seconds() > 0 {
		logsPerSec := float64(finalCompleted*logsPerBurst) / duration.Seconds()
		fmt.Printf("Approximate Logs/sec: %.2f\n", logsPerSec)
	}

	fmt.Println("Shutting down logger (allowing up to 10s)...")
	if err := logger.Shutdown(10 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
	} else {
		fmt.Println("Logger shutdown complete.")
	}

	stats := logger.Stats()
	fmt.Println("Final statistics:")
	spew.Dump(stats)
}
