package types

import "encoding/json"

// PageInfo carries the paging summary the service attaches to list responses.
type PageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

// ListResponse is one page of a list call.
type ListResponse[T any] struct {
	Kind          string   `json:"kind"`
	Etag          string   `json:"etag"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
	PrevPageToken string   `json:"prevPageToken,omitempty"`
	PageInfo      PageInfo `json:"pageInfo"`
	Items         []T      `json:"items"`
}

// Validator is implemented by records that can reject responses missing required keys.
type Validator interface {
	Validate() error
}

func keepRaw(b []byte) json.RawMessage {
	return append(json.RawMessage(nil), b...)
}
