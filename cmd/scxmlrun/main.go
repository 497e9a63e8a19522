// Command scxmlrun loads an SCXML document and drives it to completion,
// then prints each recorded microstep's active configuration and the
// final configuration once the run has returned.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scxml-go/scxml"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-timeout DURATION] FILE.scxml\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  -timeout DURATION  abort the run after DURATION (default: no limit)\n")
	}
	timeout := flag.Duration("timeout", 0, "abort the run after this duration")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	f, err := os.Open(args[0])
	if err != nil {
		logger.Error("open chart", slog.Any("error", err))
		os.Exit(1)
	}
	defer f.Close()

	chart, err := scxml.Parse(f)
	if err != nil {
		logger.Error("parse chart", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Fprintln(os.Stderr, "\nreceived signal, cancelling run...")
		cancel()
	}()

	final, err := chart.Run(ctx, scxml.RunOptions{Timeout: *timeout}, scxml.WithLogger(logger))
	for _, h := range chart.History() {
		fmt.Printf("[%s] event=%q config=%v\n", h.Kind, h.Event, h.Configuration)
	}
	if err != nil {
		logger.Error("run ended with error", slog.Any("error", err), slog.Time("at", time.Now()))
		os.Exit(1)
	}
	fmt.Printf("final configuration: %v\n", final)
}
