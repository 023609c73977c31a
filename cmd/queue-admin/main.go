// Command queue-admin is a small operator CLI around the Redis-backed
// broker (§4.H): repairing a fleet's dangling worker registrations and
// reporting queue depth, for the cases that used to mean reaching for
// redis-cli by hand.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/clipforge/viralclip/log"
	"github.com/clipforge/viralclip/queue"
	"github.com/redis/go-redis/v9"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("queue-admin", flag.ExitOnError)
	redisURL := fs.String("redis-url", "redis://127.0.0.1:6379/0", "Redis connection string backing the job queue")

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: queue-admin [--redis-url=...] <repair-registry|queue-depth>")
		return 1
	}
	cmd := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return 1
	}

	opts, err := redis.ParseURL(*redisURL)
	if err != nil {
		log.LogNoJobID("invalid redis url", "error", err)
		return 1
	}
	client := redis.NewClient(opts)
	broker := queue.NewBroker(client)
	ctx := context.Background()

	switch cmd {
	case "repair-registry":
		n, err := broker.RepairRegistry(ctx)
		if err != nil {
			log.LogNoJobID("repair-registry failed", "error", err)
			return 1
		}
		fmt.Printf("repaired %d dangling worker registration(s)\n", n)
		return 0
	case "queue-depth":
		depth, err := broker.QueueDepth(ctx)
		if err != nil {
			log.LogNoJobID("queue-depth failed", "error", err)
			return 1
		}
		fmt.Printf("%d job(s) queued\n", depth)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "queue-admin: unknown subcommand %q\n", cmd)
		return 1
	}
}
