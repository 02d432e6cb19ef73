package instagram

import (
	"encoding/json"
	"fmt"

	"instagraph/pkg/feed"
)

// Post is one feed entry exactly as the upstream returned it
type Post json.RawMessage

// MarshalJSON returns the entry unchanged
func (p Post) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	return p, nil
}

// UnmarshalJSON keeps a copy of the raw entry
func (p *Post) UnmarshalJSON(data []byte) error {
	*p = append((*p)[0:0], data...)
	return nil
}

// Decode unmarshals the entry into v
func (p Post) Decode(v interface{}) error {
	return json.Unmarshal(p, v)
}

// Edge decodes the common fields of the entry
func (p Post) Edge() (Edge, error) {
	var e Edge
	err := p.Decode(&e)
	return e, err
}

// Edge wraps a single media node
type Edge struct {
	Node Node `json:"node"`
}

// Node holds the commonly used fields of a media item
type Node struct {
	ID         string `json:"id"`
	Typename   string `json:"__typename"`
	Shortcode  string `json:"shortcode"`
	DisplayURL string `json:"display_url"`
	IsVideo    bool   `json:"is_video"`
	Timestamp  int64  `json:"taken_at_timestamp"`
	Owner      struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"owner"`
}

const (
	timelineConnection = "edge_web_feed_timeline"
	userFeedConnection = "edge_owner_to_timeline_media"
)

// extractTimeline reads a page of the home timeline
func extractTimeline(payload []byte) (feed.Page[Post], error) {
	return extractConnection(payload, timelineConnection)
}

// extractUserFeed reads a page of an account's media
func extractUserFeed(payload []byte) (feed.Page[Post], error) {
	return extractConnection(payload, userFeedConnection)
}

// extractConnection reads data.user.<name>. Every key along the path, plus
// page_info.has_next_page, page_info.end_cursor and edges, must be present.
func extractConnection(payload []byte, name string) (feed.Page[Post], error) {
	var page feed.Page[Post]

	var root struct {
		Data *struct {
			User map[string]json.RawMessage `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &root); err != nil {
		return page, fmt.Errorf("decode feed payload: %w", err)
	}
	if root.Data == nil || root.Data.User == nil {
		return page, fmt.Errorf("feed payload has no data.user")
	}

	raw, ok := root.Data.User[name]
	if !ok {
		return page, fmt.Errorf("feed payload has no data.user.%s", name)
	}

	var conn struct {
		PageInfo map[string]json.RawMessage `json:"page_info"`
		Edges    *[]Post                    `json:"edges"`
	}
	if err := json.Unmarshal(raw, &conn); err != nil {
		return page, fmt.Errorf("decode %s: %w", name, err)
	}

	hasNext, ok := conn.PageInfo["has_next_page"]
	if !ok {
		return page, fmt.Errorf("%s has no page_info.has_next_page", name)
	}
	endCursor, ok := conn.PageInfo["end_cursor"]
	if !ok {
		return page, fmt.Errorf("%s has no page_info.end_cursor", name)
	}
	if conn.Edges == nil {
		return page, fmt.Errorf("%s has no edges", name)
	}

	if err := json.Unmarshal(hasNext, &page.HasNext); err != nil {
		return feed.Page[Post]{}, fmt.Errorf("decode has_next_page: %w", err)
	}
	var cursor *string
	if err := json.Unmarshal(endCursor, &cursor); err != nil {
		return feed.Page[Post]{}, fmt.Errorf("decode end_cursor: %w", err)
	}
	if cursor != nil {
		page.Cursor = *cursor
	}
	page.Items = *conn.Edges

	return page, nil
}
