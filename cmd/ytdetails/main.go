package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/ytget/ytarchive/archive"
	"github.com/ytget/ytarchive/internal/cli"
	"github.com/ytget/ytarchive/internal/textutil"
	"github.com/ytget/ytarchive/types"
	"github.com/ytget/ytarchive/youtube/batch"
	"github.com/ytget/ytarchive/youtube/dataapi"
)

func main() {
	var (
		opts         cli.Options
		flagPlaylist string
		flagDataDir  string
	)
	opts.Register(flag.CommandLine)
	flag.StringVar(&flagPlaylist, "p", "", "Playlist ID; shows its items instead of the playlist list")
	flag.StringVar(&flagDataDir, "data-dir", cli.DefaultDataDir, "Directory archive files are written to")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 0 {
		flag.Usage()
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
	w := archive.NewWriter(flagDataDir)

	if flagPlaylist == "" {
		err = showPlaylists(ctx, svc, w, os.Stdout)
	} else {
		err = showPlaylistItems(ctx, svc, w, flagPlaylist, os.Stdout)
	}
	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func showPlaylists(ctx context.Context, svc *dataapi.Client, w *archive.Writer, out io.Writer) error {
	playlists, err := svc.Playlists().Collect(ctx)
	if err != nil {
		return fmt.Errorf("retrieve playlists: %w", err)
	}
	if err := w.SavePlaylists(playlists); err != nil {
		return err
	}
	return writePlaylistTable(out, playlists)
}

func showPlaylistItems(ctx context.Context, svc *dataapi.Client, w *archive.Writer, playlistID string, out io.Writer) error {
	items, err := svc.PlaylistItems(playlistID).Collect(ctx)
	if err != nil {
		return fmt.Errorf("retrieve items of playlist %s: %w", playlistID, err)
	}
	if err := w.SavePlaylistItems(playlistID, items); err != nil {
		return err
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.VideoID())
	}
	videos, err := batch.Fetch(ctx, batch.Dedup(ids), batch.MaxChunkSize, svc.Videos, func(v types.Video) string { return v.ID })
	if err != nil {
		return fmt.Errorf("retrieve videos: %w", err)
	}
	for _, v := range videos {
		if _, err := w.SaveVideo(v); err != nil {
			return err
		}
	}
	return writeItemTable(out, items, videos)
}

func writePlaylistTable(out io.Writer, playlists []types.Playlist) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tOwner\tTitle\tPublish Date\tCount")
	fmt.Fprintln(tw, "--\t-----\t-----\t------------\t-----")
	for _, pl := range playlists {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			pl.ID, pl.Snippet.ChannelTitle, pl.Title(), pl.Snippet.PublishedAt, pl.ContentDetails.ItemCount)
	}
	return tw.Flush()
}

// writeItemTable prints one row per item. Items whose video was not returned
// get an empty length.
func writeItemTable(out io.Writer, items []types.PlaylistItem, videos map[string]types.Video) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tAdd Date\tLength\tVideo ID\tChannel Name\tTitle")
	fmt.Fprintln(tw, "-\t--------\t------\t--------\t------------\t-----")
	var total float64
	for _, it := range items {
		length := ""
		if v, ok := videos[it.VideoID()]; ok {
			if secs, err := v.Seconds(); err == nil {
				total += secs
				length = textutil.FormatDuration(secs)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			strconv.Itoa(it.Snippet.Position), it.Snippet.PublishedAt, length,
			it.VideoID(), it.Snippet.VideoOwnerChannelTitle, it.Snippet.Title)
	}
	fmt.Fprintln(tw, "\t\t------\t\t\t")
	fmt.Fprintf(tw, "\t\t%s\t\t\t\n", textutil.FormatDuration(total))
	return tw.Flush()
}
