package ytarchive

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/ytarchive/archive"
	"github.com/ytget/ytarchive/errs"
	"github.com/ytget/ytarchive/internal/logger"
	"github.com/ytget/ytarchive/internal/report"
	"github.com/ytget/ytarchive/types"
	"github.com/ytget/ytarchive/youtube/pager"
)

// fakeService serves fixed collections from memory, one page per call.
type fakeService struct {
	playlists   []types.Playlist
	items       map[string][]types.PlaylistItem
	videos      map[string]types.Video
	playlistErr error
	chunks      [][]string
}

func (f *fakeService) Playlists() *pager.Pager[types.Playlist] {
	if f.playlistErr != nil {
		return pager.Fail[types.Playlist](f.playlistErr)
	}
	return single(f.playlists)
}

func (f *fakeService) PlaylistItems(id string) *pager.Pager[types.PlaylistItem] {
	return single(f.items[id])
}

func (f *fakeService) Videos(ids []string) *pager.Pager[types.Video] {
	f.chunks = append(f.chunks, slices.Clone(ids))
	var out []types.Video
	for _, id := range ids {
		if v, ok := f.videos[id]; ok {
			out = append(out, v)
		}
	}
	return single(out)
}

func single[T any](items []T) *pager.Pager[T] {
	return pager.New(func(context.Context, string) ([]T, string, error) {
		return items, "", nil
	})
}

func playlist(id, title string) types.Playlist {
	return types.Playlist{ID: id, Snippet: types.PlaylistSnippet{Title: title}}
}

func item(playlistID, videoID, title, added string) types.PlaylistItem {
	return types.PlaylistItem{
		ID:             playlistID + "-" + videoID,
		Snippet:        types.PlaylistItemSnippet{PlaylistID: playlistID, Title: title, PublishedAt: added},
		ContentDetails: types.PlaylistItemContentDetails{VideoID: videoID},
	}
}

func video(id, title string) types.Video {
	return types.Video{ID: id, Snippet: types.VideoSnippet{Title: title}}
}

// scenario: two playlists with 3 and 2 items sharing v3; v4 is never returned.
func scenario() *fakeService {
	return &fakeService{
		playlists: []types.Playlist{playlist("PLb", "Beta"), playlist("PLa", "alpha")},
		items: map[string][]types.PlaylistItem{
			"PLa": {
				item("PLa", "v1", "One", "2024-01-01T10:00:00Z"),
				item("PLa", "v2", "Two", "2024-01-02T10:00:00Z"),
				item("PLa", "v3", "Three", "2024-01-03T10:00:00Z"),
			},
			"PLb": {
				item("PLb", "v3", "Three", "2024-02-03T10:00:00Z"),
				item("PLb", "v4", "Four", "2024-02-04T10:00:00Z"),
			},
		},
		videos: map[string]types.Video{
			"v1": video("v1", "One"),
			"v2": video("v2", "Two"),
			"v3": video("v3", "Three"),
		},
	}
}

func newArchiver(t *testing.T, svc Service) (*Archiver, *report.Recorder, string) {
	t.Helper()
	dir := t.TempDir()
	rec := &report.Recorder{}
	a := New(svc).WithDataDir(dir).WithReporter(rec).WithLogger(logger.Discard())
	return a, rec, dir
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestRunScenario(t *testing.T) {
	a, rec, dir := newArchiver(t, scenario())

	sum, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 2, sum.Playlists)
	assert.Equal(t, 5, sum.Items)
	assert.Equal(t, 3, sum.Videos)
	assert.Equal(t, 3, sum.VideosWritten)
	assert.Equal(t, []string{"v4"}, sum.Unavailable)

	assert.Equal(t, 3, countFiles(t, filepath.Join(dir, "videos")))
	assert.Equal(t, 2, countFiles(t, filepath.Join(dir, "playlists")))

	b, err := os.ReadFile(filepath.Join(dir, "playlists.json"))
	require.NoError(t, err)
	var pls []map[string]any
	require.NoError(t, json.Unmarshal(b, &pls))
	assert.Len(t, pls, 2)

	assert.Equal(t, []string{
		"Retrieving playlists",
		"Archiving list of 2 playlists",
		"[1/2] alpha",
		"  - Archiving metadata for 3 playlist items",
		"[2/2] Beta",
		"  - Archiving metadata for 2 playlist items",
		"Retrieving video metadata for 4 videos",
		"Archiving video metadata for 3 videos",
		"  - [v1] One",
		"  - [v2] Two",
		"  - [v3] Three",
		"Archived metadata for 2 playlists, 3 videos. Skipped 1 unavailable videos.",
	}, rec.Texts())
}

func TestRunListsUnavailable(t *testing.T) {
	svc := scenario()
	delete(svc.videos, "v3")
	svc.videos["v4"] = video("v4", "Four")
	a, rec, _ := newArchiver(t, svc)

	sum, err := a.WithListUnavailable(true).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"v3"}, sum.Unavailable)

	lines := rec.Texts()
	idx := slices.Index(lines, "Unavailable videos (1):")
	require.NotEqual(t, -1, idx, lines)
	assert.Equal(t, "  - [v3] [added 2024-01-03] Three (Beta, alpha)", lines[idx+1])
	assert.True(t, rec.Lines[idx+1].Detail)
	assert.Equal(t, "Archived metadata for 2 playlists, 3 videos. Skipped 1 unavailable videos.", lines[len(lines)-1])
}

func TestRunSortModes(t *testing.T) {
	tests := []struct {
		mode SortMode
		want []string
	}{
		{SortByID, []string{"[1/3] zeta", "[2/3] Alpha", "[3/3] alpha"}},
		{SortByTitle, []string{"[1/3] Alpha", "[2/3] alpha", "[3/3] zeta"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			svc := &fakeService{playlists: []types.Playlist{
				playlist("PL3", "alpha"),
				playlist("PL1", "zeta"),
				playlist("PL2", "Alpha"),
			}}
			a, rec, _ := newArchiver(t, svc)

			_, err := a.WithSort(tt.mode).Run(context.Background())
			require.NoError(t, err)

			var got []string
			for _, l := range rec.Lines {
				if !l.Detail && len(l.Text) > 0 && l.Text[0] == '[' {
					got = append(got, l.Text)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunChunksVideoLookups(t *testing.T) {
	svc := scenario()
	a, _, _ := newArchiver(t, svc)

	_, err := a.WithChunkSize(3).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"v1", "v2", "v3"}, {"v4"}}, svc.chunks)
}

func TestRunKeepsArchivedVideos(t *testing.T) {
	svc := scenario()
	a, _, dir := newArchiver(t, svc)
	path := filepath.Join(dir, archive.VideoPath("v1"))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"v1","old":true}`), 0o644))

	sum, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Videos)
	assert.Equal(t, 2, sum.VideosWritten)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"v1","old":true}`, string(b))

	sum, err = a.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.VideosWritten)
}

func TestRunRefreshesPlaylistItems(t *testing.T) {
	svc := scenario()
	a, _, dir := newArchiver(t, svc)
	_, err := a.Run(context.Background())
	require.NoError(t, err)

	svc.items["PLa"] = svc.items["PLa"][:1]
	_, err = a.Run(context.Background())
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, archive.PlaylistItemsPath("PLa")))
	require.NoError(t, err)
	var items []types.PlaylistItem
	require.NoError(t, json.Unmarshal(b, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "v1", items[0].VideoID())
}

func TestRunPropagatesErrors(t *testing.T) {
	apiErr := &errs.APIError{StatusCode: 401, Err: errs.ErrUnauthorized}
	svc := &fakeService{playlistErr: apiErr}
	a, rec, dir := newArchiver(t, svc)

	sum, err := a.Run(context.Background())
	assert.Nil(t, sum)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
	var target *errs.APIError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, []string{"Retrieving playlists"}, rec.Texts())

	_, statErr := os.Stat(filepath.Join(dir, "playlists.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunRejectsMalformedRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeService)
		files  []string
	}{
		{
			name:   "playlist without id",
			mutate: func(f *fakeService) { f.playlists = append(f.playlists, playlist("", "nameless")) },
		},
		{
			name: "item without video",
			mutate: func(f *fakeService) {
				f.items["PLa"] = append(f.items["PLa"], item("PLa", "", "Ghost", "2024-03-01T00:00:00Z"))
			},
			files: []string{"playlists.json"},
		},
		{
			name:   "video without id",
			mutate: func(f *fakeService) { f.videos["v2"] = video("", "Two") },
			files:  []string{"playlists.json", archive.PlaylistItemsPath("PLa"), archive.PlaylistItemsPath("PLb")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := scenario()
			tt.mutate(svc)
			a, _, dir := newArchiver(t, svc)

			sum, err := a.Run(context.Background())
			assert.Nil(t, sum)
			assert.ErrorIs(t, err, errs.ErrUnexpectedShape)

			var got []string
			_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
				if err == nil && !d.IsDir() {
					rel, _ := filepath.Rel(dir, path)
					got = append(got, rel)
				}
				return nil
			})
			assert.ElementsMatch(t, tt.files, got)
		})
	}
}

func TestRunTwiceAgainstSameService(t *testing.T) {
	svc := scenario()
	a, _, dir := newArchiver(t, svc)

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	sum, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Playlists)
	assert.Equal(t, 5, sum.Items)

	assert.Equal(t, "PLb", svc.playlists[0].ID)
	assert.Equal(t, "v1", svc.items["PLa"][0].VideoID())

	entries, err := os.ReadDir(filepath.Join(dir, "playlists"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"playlist-items-PLa.json", "playlist-items-PLb.json"}, names)
}

func TestRunEmptyAccount(t *testing.T) {
	a, rec, dir := newArchiver(t, &fakeService{})

	sum, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sum.Unavailable)
	assert.Equal(t, "Archived metadata for 0 playlists, 0 videos. Skipped 0 unavailable videos.", rec.Texts()[len(rec.Texts())-1])

	b, err := os.ReadFile(filepath.Join(dir, "playlists.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(b))
}

func TestSummaryUnavailableErr(t *testing.T) {
	assert.NoError(t, (&Summary{}).UnavailableErr())

	err := (&Summary{Unavailable: []string{"v4", "v9"}}).UnavailableErr()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrVideoUnavailable)
	assert.Contains(t, err.Error(), "video v4: video unavailable")
	assert.Contains(t, err.Error(), "video v9")
}

func TestParseSortMode(t *testing.T) {
	m, err := ParseSortMode("Title")
	require.NoError(t, err)
	assert.Equal(t, SortByTitle, m)

	m, err = ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortByID, m)

	_, err = ParseSortMode("date")
	assert.Error(t, err)
}

func TestWithChunkSizeBounds(t *testing.T) {
	a := New(&fakeService{})
	assert.Equal(t, 50, a.WithChunkSize(0).chunkSize)
	assert.Equal(t, 50, a.WithChunkSize(51).chunkSize)
	assert.Equal(t, 7, a.WithChunkSize(7).chunkSize)
}
