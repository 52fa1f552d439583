package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ytget/ytarchive/errs"
)

// Playlist is a playlist owned by the authenticated user.
type Playlist struct {
	ID             string                 `json:"id"`
	Snippet        PlaylistSnippet        `json:"snippet"`
	ContentDetails PlaylistContentDetails `json:"contentDetails"`

	raw json.RawMessage
}

// PlaylistSnippet holds the descriptive playlist fields.
type PlaylistSnippet struct {
	Title        string `json:"title"`
	ChannelID    string `json:"channelId,omitempty"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Description  string `json:"description,omitempty"`
}

// PlaylistContentDetails holds the declared item count.
type PlaylistContentDetails struct {
	ItemCount int `json:"itemCount"`
}

// Title returns the playlist title.
func (p Playlist) Title() string { return p.Snippet.Title }

// Validate rejects playlists without an identifier.
func (p Playlist) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("playlist without id: %w", errs.ErrUnexpectedShape)
	}
	return nil
}

func (p *Playlist) UnmarshalJSON(b []byte) error {
	type plain Playlist
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Playlist(v)
	p.raw = keepRaw(b)
	return nil
}

func (p Playlist) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	type plain Playlist
	return json.Marshal(plain(p))
}

// PlaylistItem is one entry of a playlist. It references exactly one video.
type PlaylistItem struct {
	ID             string                     `json:"id"`
	Snippet        PlaylistItemSnippet        `json:"snippet"`
	ContentDetails PlaylistItemContentDetails `json:"contentDetails"`

	raw json.RawMessage
}

// PlaylistItemSnippet holds position, title and the time the item was added.
type PlaylistItemSnippet struct {
	PlaylistID             string `json:"playlistId"`
	Position               int    `json:"position"`
	PublishedAt            string `json:"publishedAt"`
	Title                  string `json:"title"`
	ChannelTitle           string `json:"channelTitle,omitempty"`
	VideoOwnerChannelTitle string `json:"videoOwnerChannelTitle,omitempty"`
}

// PlaylistItemContentDetails references the video.
type PlaylistItemContentDetails struct {
	VideoID          string `json:"videoId"`
	VideoPublishedAt string `json:"videoPublishedAt,omitempty"`
}

// VideoID returns the referenced video identifier.
func (it PlaylistItem) VideoID() string { return it.ContentDetails.VideoID }

// AddedOn returns the date part (YYYY-MM-DD) of the time the item was added.
func (it PlaylistItem) AddedOn() string {
	date, _, _ := strings.Cut(it.Snippet.PublishedAt, "T")
	return date
}

// Validate rejects items that do not reference a video.
func (it PlaylistItem) Validate() error {
	if strings.TrimSpace(it.ContentDetails.VideoID) == "" {
		return fmt.Errorf("playlist item %q without contentDetails.videoId: %w", it.ID, errs.ErrUnexpectedShape)
	}
	return nil
}

func (it *PlaylistItem) UnmarshalJSON(b []byte) error {
	type plain PlaylistItem
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*it = PlaylistItem(v)
	it.raw = keepRaw(b)
	return nil
}

func (it PlaylistItem) MarshalJSON() ([]byte, error) {
	if len(it.raw) > 0 {
		return it.raw, nil
	}
	type plain PlaylistItem
	return json.Marshal(plain(it))
}
