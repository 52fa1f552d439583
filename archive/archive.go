// Package archive writes JSON snapshots of playlists, playlist items and video
// metadata under a data directory.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ytget/ytarchive/internal/logger"
	"github.com/ytget/ytarchive/internal/sanitize"
	"github.com/ytget/ytarchive/types"
)

const (
	// DefaultDir is the data directory used when Writer.Dir is empty.
	DefaultDir = "data"

	dirMode  fs.FileMode = 0o755
	fileMode fs.FileMode = 0o644
	indent               = "  "
)

// Writer stores JSON documents below Dir.
type Writer struct {
	Dir string

	log *logger.ComponentLogger
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, log: logger.WithComponent(logger.ComponentArchive)}
}

// PlaylistsPath is the file holding the list of playlists.
func PlaylistsPath() string { return "playlists.json" }

// PlaylistItemsPath is the file holding the items of one playlist.
func PlaylistItemsPath(playlistID string) string {
	return filepath.Join("playlists", "playlist-items-"+sanitize.Component(playlistID)+".json")
}

// VideoPath is the file holding the metadata of one video.
func VideoPath(videoID string) string {
	return filepath.Join("videos", "video-"+sanitize.Component(videoID)+".json")
}

// Resolve returns path as written by the writer: relative paths are joined
// with Dir.
func (w *Writer) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	dir := w.Dir
	if dir == "" {
		dir = DefaultDir
	}
	return filepath.Join(dir, path)
}

// Write encodes v as indented JSON into path. With overwrite false an existing
// file is left untouched and written is false. The destination is replaced in
// one rename, so readers never observe a partial document.
func (w *Writer) Write(v any, path string, overwrite bool) (written bool, err error) {
	target := w.Resolve(path)
	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			w.logger().Trace("keep existing file", map[string]any{"path": target})
			return false, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("stat %s: %w", target, err)
		}
	}

	data, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", target, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return false, err
	}
	if err := writeFileAtomic(dir, target, data); err != nil {
		return false, fmt.Errorf("write %s: %w", target, err)
	}
	w.logger().Debug("wrote file", map[string]any{"path": target, "bytes": len(data)})
	return true, nil
}

func writeFileAtomic(dir, target string, data []byte) (err error) {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(fileMode); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// SavePlaylists replaces the playlists snapshot.
func (w *Writer) SavePlaylists(playlists []types.Playlist) error {
	if playlists == nil {
		playlists = []types.Playlist{}
	}
	_, err := w.Write(playlists, PlaylistsPath(), true)
	return err
}

// SavePlaylistItems replaces the item snapshot of one playlist.
func (w *Writer) SavePlaylistItems(playlistID string, items []types.PlaylistItem) error {
	if items == nil {
		items = []types.PlaylistItem{}
	}
	_, err := w.Write(items, PlaylistItemsPath(playlistID), true)
	return err
}

// SaveVideo stores the metadata of one video unless it was archived before.
func (w *Writer) SaveVideo(v types.Video) (bool, error) {
	return w.Write(v, VideoPath(v.ID), false)
}

func (w *Writer) logger() *logger.ComponentLogger {
	if w.log == nil {
		w.log = logger.WithComponent(logger.ComponentArchive)
	}
	return w.log
}
