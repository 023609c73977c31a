package main

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestRunQueueDepth(t *testing.T) {
	mr := miniredis.RunT(t)
	code := run([]string{"--redis-url", "redis://" + mr.Addr() + "/0", "queue-depth"})
	require.Equal(t, 0, code)
}

func TestRunRepairRegistry(t *testing.T) {
	mr := miniredis.RunT(t)
	code := run([]string{"--redis-url", "redis://" + mr.Addr() + "/0", "repair-registry"})
	require.Equal(t, 0, code)
}

func TestRunUnknownSubcommand(t *testing.T) {
	mr := miniredis.RunT(t)
	code := run([]string{"--redis-url", "redis://" + mr.Addr() + "/0", "bogus"})
	require.Equal(t, 1, code)
}

func TestRunNoArgs(t *testing.T) {
	code := run(nil)
	require.Equal(t, 1, code)
}
