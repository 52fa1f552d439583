package ytarchive

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/ytget/ytarchive/archive"
	"github.com/ytget/ytarchive/errs"
	"github.com/ytget/ytarchive/internal/logger"
	"github.com/ytget/ytarchive/internal/report"
	"github.com/ytget/ytarchive/internal/textutil"
	"github.com/ytget/ytarchive/types"
	"github.com/ytget/ytarchive/youtube/batch"
	"github.com/ytget/ytarchive/youtube/pager"
)

// titleWidth is the longest video title printed while archiving.
const titleWidth = 60

// Service lists the remote collections a run archives. Pagers are lazy and
// receive the run context when drained.
type Service interface {
	Playlists() *pager.Pager[types.Playlist]
	PlaylistItems(playlistID string) *pager.Pager[types.PlaylistItem]
	Videos(ids []string) *pager.Pager[types.Video]
}

// SortMode selects the order in which playlists are visited.
type SortMode int

const (
	// SortByID visits playlists in identifier order.
	SortByID SortMode = iota
	// SortByTitle visits playlists by case-folded title, ties broken by identifier.
	SortByTitle
)

func (m SortMode) String() string {
	if m == SortByTitle {
		return "title"
	}
	return "id"
}

// ParseSortMode accepts "id" or "title".
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "id":
		return SortByID, nil
	case "title":
		return SortByTitle, nil
	default:
		return SortByID, fmt.Errorf("unknown sort mode %q (want id or title)", s)
	}
}

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Playlists int
	// Items counts playlist items across all playlists, duplicates included.
	Items int
	// Videos counts the videos returned by the lookup.
	Videos int
	// VideosWritten counts video files created by this run.
	VideosWritten int
	// Unavailable holds the referenced video identifiers the lookup did not
	// return, sorted.
	Unavailable []string
}

// String renders the closing line of a run.
func (s *Summary) String() string {
	return fmt.Sprintf("Archived metadata for %d playlists, %d videos. Skipped %d unavailable videos.",
		s.Playlists, s.Videos, len(s.Unavailable))
}

// UnavailableErr reports every unavailable video as an error wrapping
// errs.ErrVideoUnavailable, or nil when all videos were found.
func (s *Summary) UnavailableErr() error {
	list := make([]error, 0, len(s.Unavailable))
	for _, id := range s.Unavailable {
		list = append(list, fmt.Errorf("video %s: %w", id, errs.ErrVideoUnavailable))
	}
	return errors.Join(list...)
}

// Archiver runs archive passes against a Service.
type Archiver struct {
	svc             Service
	writer          *archive.Writer
	report          report.Reporter
	log             *logger.ComponentLogger
	listUnavailable bool
	sort            SortMode
	chunkSize       int
}

// New creates an archiver writing to the default data directory and
// reporting progress on stdout.
func New(svc Service) *Archiver {
	return &Archiver{
		svc:       svc,
		writer:    archive.NewWriter(archive.DefaultDir),
		report:    report.NewConsole(os.Stdout),
		log:       logger.WithComponent(logger.ComponentApp),
		chunkSize: batch.MaxChunkSize,
	}
}

// WithDataDir sets the directory archive files are written under.
func (a *Archiver) WithDataDir(dir string) *Archiver {
	a.writer = archive.NewWriter(dir)
	return a
}

// WithReporter sets the progress sink. Nil discards progress.
func (a *Archiver) WithReporter(r report.Reporter) *Archiver {
	if r == nil {
		r = report.Discard{}
	}
	a.report = r
	return a
}

// WithLogger sets the logger used for diagnostics.
func (a *Archiver) WithLogger(l *logger.Logger) *Archiver {
	if l != nil {
		a.log = l.WithComponent(logger.ComponentApp)
	}
	return a
}

// WithListUnavailable enables the per-video report of unavailable videos.
func (a *Archiver) WithListUnavailable(on bool) *Archiver {
	a.listUnavailable = on
	return a
}

// WithSort sets the playlist visiting order.
func (a *Archiver) WithSort(m SortMode) *Archiver {
	a.sort = m
	return a
}

// WithChunkSize sets how many identifiers go into one video lookup. Values
// outside 1..50 use 50.
func (a *Archiver) WithChunkSize(n int) *Archiver {
	if n <= 0 || n > batch.MaxChunkSize {
		n = batch.MaxChunkSize
	}
	a.chunkSize = n
	return a
}

// Run performs one archive pass. Files written before a failure are kept.
func (a *Archiver) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString()}
	log := a.log.With(map[string]any{"run_id": sum.RunID})
	log.Info("archive run started", map[string]any{
		"data_dir":         a.writer.Dir,
		"sort":             a.sort.String(),
		"chunk_size":       a.chunkSize,
		"list_unavailable": a.listUnavailable,
	})

	a.report.Info("Retrieving playlists")
	playlists, err := a.svc.Playlists().Collect(ctx)
	if err != nil {
		return nil, a.fail(log, fmt.Errorf("retrieve playlists: %w", err))
	}
	if err := validateAll(playlists); err != nil {
		return nil, a.fail(log, fmt.Errorf("retrieve playlists: %w", err))
	}
	sum.Playlists = len(playlists)

	a.report.Info(fmt.Sprintf("Archiving list of %d playlists", len(playlists)))
	if err := a.writer.SavePlaylists(playlists); err != nil {
		return nil, a.fail(log, fmt.Errorf("archive playlists: %w", err))
	}

	titles := make(map[string]string, len(playlists))
	for _, pl := range playlists {
		titles[pl.ID] = pl.Title()
	}

	var (
		videoIDs     []string
		firstSeen    = make(map[string]types.PlaylistItem)
		referencedBy = make(map[string]map[string]struct{})
	)
	ordered := sortPlaylists(playlists, a.sort)
	for i, pl := range ordered {
		a.report.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(ordered), pl.Title()))
		items, err := a.svc.PlaylistItems(pl.ID).Collect(ctx)
		if err != nil {
			return nil, a.fail(log, fmt.Errorf("retrieve items of playlist %s: %w", pl.ID, err))
		}
		if err := validateAll(items); err != nil {
			return nil, a.fail(log, fmt.Errorf("retrieve items of playlist %s: %w", pl.ID, err))
		}

		a.report.Detail(fmt.Sprintf("  - Archiving metadata for %d playlist items", len(items)))
		if err := a.writer.SavePlaylistItems(pl.ID, items); err != nil {
			return nil, a.fail(log, fmt.Errorf("archive items of playlist %s: %w", pl.ID, err))
		}

		sum.Items += len(items)
		for _, it := range items {
			id := it.VideoID()
			videoIDs = append(videoIDs, id)
			if _, ok := firstSeen[id]; !ok {
				firstSeen[id] = it
			}
			if referencedBy[id] == nil {
				referencedBy[id] = make(map[string]struct{})
			}
			referencedBy[id][pl.ID] = struct{}{}
		}
		log.Debug("playlist archived", map[string]any{"playlist": pl.ID, "items": len(items)})
	}

	requested := batch.Dedup(videoIDs)
	a.report.Info(fmt.Sprintf("Retrieving video metadata for %d videos", len(requested)))
	videos, err := batch.Fetch(ctx, requested, a.chunkSize, a.svc.Videos, func(v types.Video) string { return v.ID })
	if err != nil {
		return nil, a.fail(log, fmt.Errorf("retrieve videos: %w", err))
	}
	sum.Videos = len(videos)

	a.report.Info(fmt.Sprintf("Archiving video metadata for %d videos", len(videos)))
	for _, id := range slices.Sorted(maps.Keys(videos)) {
		v := videos[id]
		if err := v.Validate(); err != nil {
			return nil, a.fail(log, fmt.Errorf("retrieve videos: %w", err))
		}
		a.report.Detail(fmt.Sprintf("  - [%s] %s", id, textutil.TruncateTitle(v.Title(), titleWidth)))
		written, err := a.writer.SaveVideo(v)
		if err != nil {
			return nil, a.fail(log, fmt.Errorf("archive video %s: %w", id, err))
		}
		if written {
			sum.VideosWritten++
		}
	}

	sum.Unavailable = batch.Unavailable(requested, videos)
	if err := sum.UnavailableErr(); err != nil {
		log.Warn("videos unavailable", map[string]any{"count": len(sum.Unavailable), "error": err.Error()})
	}
	if a.listUnavailable {
		a.report.Info(fmt.Sprintf("Unavailable videos (%d):", len(sum.Unavailable)))
		for _, id := range sum.Unavailable {
			a.report.Detail(unavailableLine(id, firstSeen[id], referencedBy[id], titles))
		}
	}

	a.report.Info(sum.String())
	log.Info("archive run finished", map[string]any{
		"playlists":      sum.Playlists,
		"items":          sum.Items,
		"videos":         sum.Videos,
		"videos_written": sum.VideosWritten,
		"unavailable":    len(sum.Unavailable),
	})
	return sum, nil
}

func (a *Archiver) fail(log *logger.ComponentLogger, err error) error {
	log.Error("archive run failed", map[string]any{"error": err.Error()})
	return err
}

// validateAll rejects the first record missing its identifying key. Records
// decoded by dataapi are already checked; other services may not be.
func validateAll[T types.Validator](records []T) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// unavailableLine describes a video the lookup did not return, using the
// first playlist item that referenced it.
func unavailableLine(id string, item types.PlaylistItem, playlistIDs map[string]struct{}, titles map[string]string) string {
	names := make([]string, 0, len(playlistIDs))
	for plID := range playlistIDs {
		names = append(names, titles[plID])
	}
	slices.Sort(names)
	return fmt.Sprintf("  - [%s] [added %s] %s (%s)", id, item.AddedOn(), item.Snippet.Title, strings.Join(names, ", "))
}

func sortPlaylists(playlists []types.Playlist, mode SortMode) []types.Playlist {
	out := slices.Clone(playlists)
	switch mode {
	case SortByTitle:
		slices.SortStableFunc(out, func(a, b types.Playlist) int {
			return cmp.Or(
				cmp.Compare(textutil.SortKey(a.Title()), textutil.SortKey(b.Title())),
				cmp.Compare(a.ID, b.ID),
			)
		})
	default:
		slices.SortStableFunc(out, func(a, b types.Playlist) int { return cmp.Compare(a.ID, b.ID) })
	}
	return out
}
