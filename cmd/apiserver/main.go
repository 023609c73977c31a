// Command apiserver runs the Control API (§4.J): job submission, status
// polling, clip listing/serving, templates and video-info lookups.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipforge/viralclip/api"
	"github.com/clipforge/viralclip/config"
	"github.com/clipforge/viralclip/handlers"
	"github.com/clipforge/viralclip/log"
	"github.com/clipforge/viralclip/metrics"
	"github.com/clipforge/viralclip/pprof"
	"github.com/clipforge/viralclip/queue"
	"github.com/clipforge/viralclip/status"
	"github.com/clipforge/viralclip/template"
	"github.com/peterbourgon/ff/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	fs := flag.NewFlagSet("apiserver", flag.ExitOnError)
	cli := config.Cli{}

	fs.IntVar(&cli.Port, "port", 8080, "Port to bind the Control API to")
	fs.IntVar(&cli.PromPort, "prom-port", 9090, "Port to expose Prometheus metrics on")
	fs.StringVar(&cli.APIToken, "api-token", "", "Bearer token required on every request; empty disables auth")
	fs.StringVar(&cli.OutputDir, "output-dir", "./output", "Directory rendered clips and outputs are served from")
	fs.StringVar(&cli.RedisURL, "redis-url", "redis://127.0.0.1:6379/0", "Redis connection string backing the job queue")
	fs.StringVar(&cli.TemplatesDir, "templates-dir", "", "Optional directory of additional opus template definitions")
	pprofPort := fs.Int("pprof-port", 6061, "pprof listen port")

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("VIRALCLIP")); err != nil {
		log.LogNoJobID("failed to parse cli flags", "error", err)
		os.Exit(1)
	}

	opts, err := redis.ParseURL(cli.RedisURL)
	if err != nil {
		log.LogNoJobID("invalid redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(opts)
	broker := queue.NewBroker(redisClient)
	sidecar := status.New(cli.OutputDir)
	catalog := template.NewCatalog()

	h := &handlers.ViralClipHandlersCollection{
		Broker:    broker,
		Sidecar:   sidecar,
		Templates: catalog,
		OutputDir: cli.OutputDir,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return pprof.ListenAndServe(*pprofPort)
	})
	group.Go(func() error {
		return metrics.ListenAndServe(cli.PromPort)
	})
	group.Go(func() error {
		return api.ListenAndServe(ctx, cli, h)
	})
	group.Go(func() error {
		sampleQueueDepth(ctx, broker)
		return nil
	})
	group.Go(func() error {
		return handleSignals(ctx)
	})

	if err := group.Wait(); err != nil {
		log.LogNoJobID("apiserver shutting down", "reason", err)
	}
}

func sampleQueueDepth(ctx context.Context, broker *queue.Broker) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			depth, err := broker.QueueDepth(ctx)
			if err != nil {
				continue
			}
			metrics.Metrics.Pipeline.QueueDepth.Set(float64(depth))
		}
	}
}

func handleSignals(ctx context.Context) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-c:
		return fmt.Errorf("caught signal: %v", s)
	case <-ctx.Done():
		return nil
	}
}
