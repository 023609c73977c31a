// Command worker runs the claim/run/report loop against a shared
// broker (§4.I), rendering clips with a real media toolchain and
// optional translation/transliteration/upload adapters.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/clipforge/viralclip/asr"
	"github.com/clipforge/viralclip/caption"
	"github.com/clipforge/viralclip/clients"
	"github.com/clipforge/viralclip/config"
	"github.com/clipforge/viralclip/downloader"
	"github.com/clipforge/viralclip/face"
	"github.com/clipforge/viralclip/log"
	"github.com/clipforge/viralclip/metrics"
	"github.com/clipforge/viralclip/pprof"
	"github.com/clipforge/viralclip/queue"
	"github.com/clipforge/viralclip/status"
	"github.com/clipforge/viralclip/template"
	"github.com/clipforge/viralclip/worker"
	"github.com/peterbourgon/ff/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	fs := flag.NewFlagSet("worker", flag.ExitOnError)
	cli := config.Cli{}

	fs.StringVar(&cli.WorkerName, "name", config.DefaultWorkerName, "Unique name this worker registers claims under")
	fs.StringVar(&cli.RedisURL, "redis-url", "redis://127.0.0.1:6379/0", "Redis connection string backing the job queue")
	fs.StringVar(&cli.OutputDir, "output-dir", "./output", "Directory rendered clips are written to")
	fs.StringVar(&cli.S3BucketURL, "s3-bucket", "", "Optional s3://bucket-name to mirror finished clips to")
	fs.IntVar(&cli.PromPort, "prom-port", 9091, "Port to expose Prometheus metrics on")
	pprofPort := fs.Int("pprof-port", 6062, "pprof listen port")
	workDirRoot := fs.String("work-dir", "./work", "Root directory for per-job scratch directories")
	whisperBin := fs.String("whisper-bin", "", "Path to the whisper CLI binary (defaults to $PATH lookup of \"whisper\")")
	whisperModel := fs.String("whisper-model", "", "Whisper model name")
	translateEndpoint := fs.String("translate-endpoint", "", "Optional HTTP endpoint implementing the translation contract")
	transliterateEndpoint := fs.String("transliterate-endpoint", "", "Optional HTTP endpoint implementing the transliteration contract")

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("VIRALCLIP")); err != nil {
		log.LogNoJobID("failed to parse cli flags", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*workDirRoot, 0755); err != nil {
		log.LogNoJobID("failed to create work dir root", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cli.OutputDir, 0755); err != nil {
		log.LogNoJobID("failed to create output dir", "error", err)
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

	caps := worker.Capabilities{
		ASRModel:   asr.NewWhisperCLI(*whisperBin, *whisperModel),
		Sampler:    face.NewThumbnailSampler(*workDirRoot),
		Extractor:  face.NewPCMFeatureExtractor(*workDirRoot),
		Downloader: downloader.New(),
		Templates:  template.NewCatalog(),
	}
	if *translateEndpoint != "" {
		caps.Translator = caption.NewHTTPTranslator(*translateEndpoint)
	}
	if *transliterateEndpoint != "" {
		caps.Transliterator = caption.NewHTTPTransliterator(*transliterateEndpoint)
	}
	if cli.S3BucketURL != "" {
		s3Client, err := clients.NewS3Client()
		if err != nil {
			log.LogNoJobID("failed to build s3 client, uploads disabled", "error", err)
		} else {
			caps.Uploader = s3Client
			caps.Bucket = clients.BucketNameFromURL(cli.S3BucketURL)
		}
	}

	w := worker.New(cli.WorkerName, broker, sidecar, caps, *workDirRoot, cli.OutputDir)

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
		return w.Run(ctx)
	})
	group.Go(func() error {
		return handleSignals(ctx, cancel)
	})

	if err := group.Wait(); err != nil {
		log.LogNoJobID("worker shutting down", "reason", err)
	}
}

func handleSignals(ctx context.Context, cancel context.CancelFunc) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-c:
		log.LogNoJobID("caught signal, shutting down", "signal", s.String())
		cancel()
		return nil
	case <-ctx.Done():
		return nil
	}
}
