// Copyright 2025 Arcentra Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/arcentrix/ringway/internal/ringbuf"
	"github.com/arcentrix/ringway/pkg/env"
	"github.com/arcentrix/ringway/pkg/logger"
	"github.com/arcentrix/ringway/pkg/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "ringwayd",
	Short: "ringwayd runs a demo ring-buffer pipeline",
	Long:  "ringwayd builds a single- or multi-producer ring buffer, runs a validate->record consumer DAG over it, and serves the result as Prometheus metrics.",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the demo pipeline until interrupted",
	RunE:  runPipeline,
}

var (
	cfgFile         string
	bufferSize      int64
	producers       int
	multiProducer   bool
	waitStrategy    string
	metricsAddr     string
	produceInterval time.Duration
)

// init registers the run command's flags, each (other than --config)
// defaulting to an RINGWAYD_* environment variable when set so an operator can
// configure a deployment without editing the command line; an
// explicit flag still wins over the environment.
func init() {
	runCmd.Flags().StringVar(&cfgFile, "config", "", "path to a YAML/JSON config file (optional; only log.output and log.level are read from it)")
	runCmd.Flags().Int64Var(&bufferSize, "buffer-size", env.GetEnvInt64("RINGWAYD_BUFFER_SIZE", 4096), "ring buffer size, must be a power of two")
	runCmd.Flags().IntVar(&producers, "producers", env.GetEnvInt("RINGWAYD_PRODUCERS", 1), "number of concurrent producer goroutines")
	runCmd.Flags().BoolVar(&multiProducer, "multi-producer", env.GetEnvBool("RINGWAYD_MULTI_PRODUCER", false), "use the multi-producer sequencer (selected automatically when producers > 1)")
	runCmd.Flags().StringVar(&waitStrategy, "wait-strategy", env.GetEnvString("RINGWAYD_WAIT_STRATEGY", "blocking"), "consumer wait strategy: blocking, busyspin, yielding, sleeping, timeout")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", env.GetEnvString("RINGWAYD_METRICS_ADDR", ":9090"), "metrics listen address, e.g. :9090")
	runCmd.Flags().DurationVar(&produceInterval, "produce-interval", env.GetEnvDuration("RINGWAYD_PRODUCE_INTERVAL", 10*time.Millisecond), "delay between publishes from each producer goroutine")

	rootCmd.AddCommand(runCmd)
}

func loadViperConfig() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("RINGWAYD")
	v.AutomaticEnv()

	if cfgFile == "" {
		return v, nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	return v, nil
}

func resolveWaitStrategy(name string) (ringbuf.WaitStrategy, error) {
	switch name {
	case "busyspin":
		return ringbuf.NewBusySpinWaitStrategy(), nil
	case "yielding":
		return ringbuf.NewYieldingWaitStrategy(100), nil
	case "sleeping":
		return ringbuf.NewSleepingWaitStrategy(time.Microsecond), nil
	case "blocking":
		return ringbuf.NewBlockingWaitStrategy(), nil
	case "timeout":
		return ringbuf.NewTimeoutBlockingWaitStrategy(time.Second), nil
	default:
		return nil, fmt.Errorf("unknown wait strategy %q", name)
	}
}

// stageLogConf clones base for a named pipeline stage channel,
// renaming a file-output target so validate and record, which share
// every other field, don't write over each other's log file.
func stageLogConf(base *logger.Conf, stage string) *logger.Conf {
	c := *base
	if c.Output == "file" {
		ext := filepath.Ext(c.Filename)
		name := strings.TrimSuffix(c.Filename, ext)
		c.Filename = fmt.Sprintf("%s-%s%s", name, stage, ext)
	}
	return &c
}

func runPipeline(cmd *cobra.Command, args []string) error {
	v, err := loadViperConfig()
	if err != nil {
		return err
	}

	logConf := logger.SetDefaults()
	if v.IsSet("log.output") {
		logConf.Output = v.GetString("log.output")
	}
	if v.IsSet("log.level") {
		logConf.Level = v.GetString("log.level")
	}
	if err := logConf.Validate(); err != nil {
		return fmt.Errorf("logger config: %w", err)
	}

	// Each pipeline stage gets its own named channel (validate, record)
	// so its log lines can be told apart, or routed to their own
	// rotating file, without the stages sharing one handler.
	multiConf := &logger.MultiConf{
		Default: logConf,
		Channels: map[string]*logger.Conf{
			"validate": stageLogConf(logConf, "validate"),
			"record":   stageLogConf(logConf, "record"),
		},
	}
	if err := logger.InitMulti(multiConf); err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	log := logger.GetLogger()

	strategy, err := resolveWaitStrategy(waitStrategy)
	if err != nil {
		return err
	}

	producerType := ringbuf.SingleProducer
	if multiProducer || producers > 1 {
		producerType = ringbuf.MultiProducer
	}

	p, err := buildPipeline(bufferSize, producerType, strategy, logger.Channel("validate").Logger, logger.Channel("record").Logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	metricsSrv := metrics.NewServer(metrics.MetricsConfig{Addr: metricsAddr}, p.ring)
	if err := metricsSrv.Start(); err != nil {
		return fmt.Errorf("start metrics server: %w", err)
	}
	log.Info("metrics listening", "addr", metricsAddr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p.Start(ctx)

	var payload atomic.Int64
	for i := 0; i < producers; i++ {
		go func() {
			ticker := time.NewTicker(produceInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.Publish(payload.Add(1))
				}
			}
		}()
	}

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return metricsSrv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
