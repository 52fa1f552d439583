package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ytget/ytarchive"
	"github.com/ytget/ytarchive/internal/cli"
	"github.com/ytget/ytarchive/internal/report"
)

func main() {
	var (
		opts                cli.Options
		flagListUnavailable bool
		flagDataDir         string
		flagSort            string
		flagChunk           int
	)
	opts.Register(flag.CommandLine)
	flag.BoolVar(&flagListUnavailable, "list-unavailable", false, "List known details on all unavailable videos found in playlists")
	flag.StringVar(&flagDataDir, "data-dir", cli.DefaultDataDir, "Directory archive files are written to")
	flag.StringVar(&flagSort, "sort", "id", "Playlist order: id or title")
	flag.IntVar(&flagChunk, "chunk", 50, "Video identifiers per lookup request (1-50)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nArchives your playlists and the metadata of their videos as JSON files.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(2)
	}
	sortMode, err := ytarchive.ParseSortMode(flagSort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -sort: %v\n", err)
		os.Exit(2)
	}

	if err := opts.SetupLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := opts.Service(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	_, err = ytarchive.New(svc).
		WithDataDir(flagDataDir).
		WithReporter(report.NewConsole(os.Stdout)).
		WithListUnavailable(flagListUnavailable).
		WithSort(sortMode).
		WithChunkSize(flagChunk).
		Run(ctx)
	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
