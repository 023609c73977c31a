// Command clipgen runs a single clip-generation job end to end without
// standing up the Control API (§6 "CLI surface"): it enqueues one job
// against an in-process queue, drives the normal worker loop to
// completion, and prints the final result as JSON to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/clipforge/viralclip/asr"
	"github.com/clipforge/viralclip/caption"
	"github.com/clipforge/viralclip/downloader"
	"github.com/clipforge/viralclip/face"
	"github.com/clipforge/viralclip/job"
	"github.com/clipforge/viralclip/queue"
	"github.com/clipforge/viralclip/status"
	"github.com/clipforge/viralclip/template"
	"github.com/clipforge/viralclip/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type result struct {
	JobID  string           `json:"job_id"`
	State  string           `json:"state"`
	Result []job.ClipRecord `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("clipgen", flag.ExitOnError)

	videoURL := fs.String("video-url", "", "Source video URL (required)")
	layout := fs.String("layout", string(job.LayoutFit), "Reframe layout: fit, fill, square or auto")
	templateName := fs.String("template", "", "Opus caption style template name")
	maxClips := fs.Int("max-clips", 0, "Maximum number of clips to produce (0 = automatic)")
	fs.Float64("min-score", 0, "Unused: reserved for a future minimum hook-score filter")
	minLength := fs.Float64("min-length", 0, "Minimum clip length in seconds")
	maxLength := fs.Float64("max-length", 0, "Maximum clip length in seconds")
	targetLength := fs.Float64("target-length", 0, "Target clip length in seconds")
	timeframeStart := fs.Int("timeframe-start", 0, "Restrict selection to after this second offset")
	timeframeEnd := fs.Int("timeframe-end", 0, "Restrict selection to before this second offset")
	videoLanguage := fs.String("video-language", "", "Source video language hint, e.g. \"hi\"")
	translateCaptions := fs.Bool("translate-captions", false, "Translate captions to --caption-language")
	captionLanguage := fs.String("caption-language", "", "Target caption language when --translate-captions is set")
	jobID := fs.String("job-id", "", "Job id to use; generated when empty")
	outputDir := fs.String("output-dir", "./output", "Directory rendered clips are written to")
	workDirRoot := fs.String("work-dir", "./work", "Root directory for scratch files")
	whisperBin := fs.String("whisper-bin", "", "Path to the whisper CLI binary")
	whisperModel := fs.String("whisper-model", "", "Whisper model name")
	translateEndpoint := fs.String("translate-endpoint", "", "Optional HTTP endpoint implementing the translation contract")
	transliterateEndpoint := fs.String("transliterate-endpoint", "", "Optional HTTP endpoint implementing the transliteration contract")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return 1
	}
	if *videoURL == "" {
		fmt.Fprintln(os.Stderr, "clipgen: --video-url is required")
		return 1
	}
	if *jobID == "" {
		*jobID = uuid.NewString()
	}

	if err := os.MkdirAll(*workDirRoot, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "clipgen: creating work dir: %v\n", err)
		return 1
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "clipgen: creating output dir: %v\n", err)
		return 1
	}

	mr, err := miniredis.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "clipgen: starting in-process queue: %v\n", err)
		return 1
	}
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	broker := queue.NewBroker(redisClient)
	sidecar := status.New(*outputDir)

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

	w := worker.New("clipgen", broker, sidecar, caps, *workDirRoot, *outputDir)

	payload := job.Payload{
		JobID:             *jobID,
		SourceURL:         *videoURL,
		OpusTemplate:      *templateName,
		ClipDuration:      30,
		Layout:            job.Layout(*layout),
		TimeframeStart:    *timeframeStart,
		TimeframeEnd:      *timeframeEnd,
		MinClipLength:     *minLength,
		MaxClipLength:     *maxLength,
		TargetClipLength:  *targetLength,
		MaxClips:          *maxClips,
		VideoLanguage:     *videoLanguage,
		TranslateCaptions: *translateCaptions,
		CaptionLanguage:   *captionLanguage,
		OutputDir:         *outputDir,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := broker.Enqueue(ctx, *jobID, payload); err != nil {
		fmt.Fprintf(os.Stderr, "clipgen: enqueueing job: %v\n", err)
		return 1
	}

	workerDone := make(chan error, 1)
	go func() {
		workerDone <- w.Run(ctx)
	}()

	rec, err := pollUntilTerminal(ctx, broker, *jobID)
	cancel()
	<-workerDone

	if err != nil {
		fmt.Fprintf(os.Stderr, "clipgen: %v\n", err)
		return 1
	}

	out := result{JobID: *jobID, State: string(rec.State), Result: rec.Result, Error: rec.Error}
	data, marshalErr := json.Marshal(out)
	if marshalErr != nil {
		fmt.Fprintf(os.Stderr, "clipgen: marshaling result: %v\n", marshalErr)
		return 1
	}
	fmt.Println(string(data))

	if rec.State != job.StateCompleted {
		return 1
	}
	return 0
}

func pollUntilTerminal(ctx context.Context, broker *queue.Broker, jobID string) (queue.Record, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return queue.Record{}, ctx.Err()
		case <-ticker.C:
			rec, found, err := broker.Get(ctx, jobID)
			if err != nil {
				return queue.Record{}, err
			}
			if !found {
				continue
			}
			if rec.State == job.StateCompleted || rec.State == job.StateFailed {
				return rec, nil
			}
		}
	}
}
