package instagram

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graphQL = "https://www.instagram.com/graphql/query/?query_hash="

func TestTimelineURL(t *testing.T) {
	tests := []struct {
		name     string
		cursor   string
		expected string
	}{
		{
			name:   "first page",
			cursor: "",
			expected: graphQL + "dbdfd83895d23a4a0b0f68a85486e91c&variables=" +
				"%7B%22cached_feed_item_ids%22%3A[]%2C" +
				"%22fetch_media_item_count%22%3A12%2C" +
				"%22fetch_comment_count%22%3A4%2C" +
				"%22fetch_like%22%3A3%2C" +
				"%22has_stories%22%3Afalse%2C" +
				"%22has_threaded_comments%22%3Atrue%7D",
		},
		{
			name:   "next page",
			cursor: "KGEAxpEdq6QK",
			expected: graphQL + "dbdfd83895d23a4a0b0f68a85486e91c&variables=" +
				"%7B%22cached_feed_item_ids%22%3A%5B%5D%2C" +
				"%22fetch_media_item_count%22%3A12%2C" +
				"%22fetch_media_item_cursor%22%3A%22KGEAxpEdq6QK%22%2C" +
				"%22fetch_comment_count%22%3A4%2C" +
				"%22fetch_like%22%3A3%2C" +
				"%22has_stories%22%3Afalse%2C" +
				"%22has_threaded_comments%22%3Atrue%7D",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TimelineURL(tt.cursor))
		})
	}
}

func TestTimelineURLEscapesPadding(t *testing.T) {
	u := TimelineURL("QVFCa2==")
	assert.Contains(t, u, "%22fetch_media_item_cursor%22%3A%22QVFCa2%3D%3D%22")

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Contains(t, parsed.Query().Get("variables"), `"fetch_media_item_cursor":"QVFCa2=="`)
}

func TestUserFeedURL(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		cursor   string
		expected string
	}{
		{
			name:   "first page",
			userID: "528817151",
			expected: graphQL + "8c2a529969ee035a5063f2fc8602a0fd&variables=" +
				"%7B%22id%22%3A%22528817151%22%2C%22first%22%3A30%7D",
		},
		{
			name:   "next page",
			userID: "528817151",
			cursor: "QVFDTm9hZ",
			expected: graphQL + "8c2a529969ee035a5063f2fc8602a0fd&variables=" +
				"%7B%22id%22%3A%22528817151%22%2C%22first%22%3A30%2C%22after%22%3A%22QVFDTm9hZ%22%7D",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserFeedURL(tt.userID, tt.cursor))
		})
	}
}

func TestProfileAndPostURL(t *testing.T) {
	assert.Equal(t, "https://instagram.com/nasa", ProfileURL("nasa"))
	assert.Equal(t, "https://www.instagram.com/p/CxYz123/", PostURL("CxYz123"))
	assert.Empty(t, PostURL(""))
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"nasa", true},
		{"john.doe_99", true},
		{"", false},
		{"has space", false},
		{"hyphen-name", false},
		{"emoji😀", false},
		{"abcdefghijklmnopqrstuvwxyz12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidUsername(tt.username))
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	tests := map[string]string{
		"@nasa":      "nasa",
		"nasa/":      "nasa",
		" @nasa// ":  "nasa",
		"john.doe":   "john.doe",
		"":           "",
	}

	for in, want := range tests {
		assert.Equal(t, want, SanitizeUsername(in), "input %q", in)
	}
}
