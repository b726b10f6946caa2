package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joeycumines/go-syncscope/internal/cli"
)

const (
	cmdName = "syncstress"

	shortDesc = "Stress test scope-aware synchronization primitives."
	longDesc  = `Runs many workers against a semaphore, latch or barrier, checking the
invariants of the primitive throughout, and reports throughput and wait
metrics. Workers run as goroutines parked on channels (host), goroutines
parked on futexes (futex), or as non-preemptible lanes that only spin (lane).

Exits non-zero if any invariant failed.`
)

func main() {
	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
