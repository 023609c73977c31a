package config

import "fmt"

// Cli holds the flags/env vars shared by the API server and worker binaries,
// parsed with github.com/peterbourgon/ff/v3 in each cmd/ main.
type Cli struct {
	Port         int
	PromPort     int
	APIToken     string
	OutputDir    string
	RedisURL     string
	WorkerName   string
	Concurrency  int
	TemplatesDir string
	S3BucketURL  string
}

// HTTPAddress returns the net/http listen address derived from Port.
func (c Cli) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}
