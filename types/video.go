package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sosodev/duration"

	"github.com/ytget/ytarchive/errs"
)

// Video is the metadata of one video.
type Video struct {
	ID             string              `json:"id"`
	Snippet        VideoSnippet        `json:"snippet"`
	ContentDetails VideoContentDetails `json:"contentDetails"`
	Statistics     VideoStatistics     `json:"statistics"`

	raw json.RawMessage
}

// VideoSnippet holds the descriptive video fields.
type VideoSnippet struct {
	Title        string `json:"title"`
	ChannelID    string `json:"channelId,omitempty"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Description  string `json:"description,omitempty"`
}

// VideoContentDetails holds the ISO-8601 duration, e.g. "PT4M13S".
type VideoContentDetails struct {
	Duration   string `json:"duration"`
	Definition string `json:"definition,omitempty"`
}

// VideoStatistics are sent by the service as decimal strings.
type VideoStatistics struct {
	ViewCount     string `json:"viewCount,omitempty"`
	LikeCount     string `json:"likeCount,omitempty"`
	FavoriteCount string `json:"favoriteCount,omitempty"`
	CommentCount  string `json:"commentCount,omitempty"`
}

// Title returns the video title.
func (v Video) Title() string { return v.Snippet.Title }

// Seconds converts the ISO-8601 duration to total seconds.
func (v Video) Seconds() (float64, error) {
	return DurationSeconds(v.ContentDetails.Duration)
}

// DurationSeconds parses an ISO-8601 duration string into seconds.
func DurationSeconds(iso string) (float64, error) {
	d, err := duration.Parse(iso)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", iso, err)
	}
	return d.ToTimeDuration().Seconds(), nil
}

// Validate rejects videos without an identifier.
func (v Video) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("video without id: %w", errs.ErrUnexpectedShape)
	}
	return nil
}

func (v *Video) UnmarshalJSON(b []byte) error {
	type plain Video
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*v = Video(p)
	v.raw = keepRaw(b)
	return nil
}

func (v Video) MarshalJSON() ([]byte, error) {
	if len(v.raw) > 0 {
		return v.raw, nil
	}
	type plain Video
	return json.Marshal(plain(v))
}
