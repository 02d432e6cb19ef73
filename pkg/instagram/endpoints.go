package instagram

import (
	"encoding/json"
	"net/url"
	"strings"
)

const (
	// BaseURL is the origin the web client talks to
	BaseURL = "https://www.instagram.com"

	// MainURL is the site root used for the token handshake and the login probe
	MainURL = "https://instagram.com/"

	// LoginURL receives the ajax login form
	LoginURL = "https://instagram.com/accounts/login/ajax/"

	// GraphQLURL is the private query endpoint shared by both feeds
	GraphQLURL = BaseURL + "/graphql/query/"

	// TimelineQueryHash selects the logged-in user's home timeline
	TimelineQueryHash = "dbdfd83895d23a4a0b0f68a85486e91c"

	// UserFeedQueryHash selects an account's own media
	UserFeedQueryHash = "8c2a529969ee035a5063f2fc8602a0fd"

	// TimelinePageSize is the number of timeline items requested per page
	TimelinePageSize = 12

	// UserFeedPageSize is the number of user media items requested per page
	UserFeedPageSize = 30

	// DefaultPostCount is the minimum number of posts collected when the caller has no preference
	DefaultPostCount = 50
)

// timelineVariables serializes in the field order the web client uses
type timelineVariables struct {
	CachedFeedItemIDs    []string `json:"cached_feed_item_ids"`
	FetchMediaItemCount  int      `json:"fetch_media_item_count"`
	FetchMediaItemCursor string   `json:"fetch_media_item_cursor,omitempty"`
	FetchCommentCount    int      `json:"fetch_comment_count"`
	FetchLike            int      `json:"fetch_like"`
	HasStories           bool     `json:"has_stories"`
	HasThreadedComments  bool     `json:"has_threaded_comments"`
}

type userFeedVariables struct {
	ID    string `json:"id"`
	First int    `json:"first"`
	After string `json:"after,omitempty"`
}

// TimelineURL builds the timeline query for the page after cursor.
// An empty cursor selects the first page.
func TimelineURL(cursor string) string {
	q := graphQLQuery(TimelineQueryHash, timelineVariables{
		CachedFeedItemIDs:    []string{},
		FetchMediaItemCount:  TimelinePageSize,
		FetchMediaItemCursor: cursor,
		FetchCommentCount:    4,
		FetchLike:            3,
		HasStories:           false,
		HasThreadedComments:  true,
	})
	if cursor == "" {
		// the first page is requested with unescaped brackets
		q = strings.Replace(q, "%5B%5D", "[]", 1)
	}
	return GraphQLURL + "?" + q
}

// UserFeedURL builds the media query for userID for the page after cursor.
// An empty cursor selects the first page.
func UserFeedURL(userID, cursor string) string {
	return GraphQLURL + "?" + graphQLQuery(UserFeedQueryHash, userFeedVariables{
		ID:    userID,
		First: UserFeedPageSize,
		After: cursor,
	})
}

// ProfileURL returns the HTML profile page for username
func ProfileURL(username string) string {
	return MainURL + username
}

// PostURL returns the permalink for a post shortcode
func PostURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return BaseURL + "/p/" + shortcode + "/"
}

func graphQLQuery(hash string, variables interface{}) string {
	// the variable structs hold only strings, ints and bools
	vars, _ := json.Marshal(variables)

	params := url.Values{}
	params.Set("query_hash", hash)
	params.Set("variables", string(vars))
	return params.Encode()
}

// IsValidUsername checks if a username is valid according to Instagram rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}

	// Instagram usernames can only contain letters, numbers, periods, and underscores
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeUsername strips a leading @ and trailing slashes or spaces
func SanitizeUsername(username string) string {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	return strings.TrimRight(username, "/ ")
}
