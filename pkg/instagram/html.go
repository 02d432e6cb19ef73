package instagram

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"instagraph/pkg/errors"
	"instagraph/pkg/logger"
)

const (
	notLoggedInMarker = "not-logged-in"
	sharedDataPrefix  = "window._sharedData"
)

// loggedInFromHTML reads the class list of the <html> element. The site
// marks anonymous pages with not-logged-in; a page without any class
// attribute is treated as logged out.
func loggedInFromHTML(body []byte, log logger.Logger) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.WithError(err).Warn("Login probe returned unreadable HTML")
		return false
	}

	class, ok := doc.Find("html").First().Attr("class")
	if !ok {
		log.Debug("login probe found no class on <html>")
		return false
	}

	return !strings.Contains(strings.ToLower(class), notLoggedInMarker)
}

// profileData is the subset of window._sharedData on a profile page
type profileData struct {
	EntryData struct {
		ProfilePage []struct {
			GraphQL struct {
				User struct {
					ID       json.Number `json:"id"`
					Username string      `json:"username"`
				} `json:"user"`
			} `json:"graphql"`
		} `json:"ProfilePage"`
	} `json:"entry_data"`
}

// sharedData returns the JSON assigned to window._sharedData in a page
func sharedData(body []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeParsing, err, "unreadable profile page")
	}

	var raw string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if !strings.HasPrefix(text, sharedDataPrefix) {
			return true
		}

		text = strings.TrimSpace(strings.TrimPrefix(text, sharedDataPrefix))
		if !strings.HasPrefix(text, "=") {
			return true
		}
		raw = strings.TrimSuffix(strings.TrimSpace(text[1:]), ";")
		return false
	})

	if raw == "" {
		return nil, errors.New(errors.ErrorTypeNotFound, "profile page has no window._sharedData")
	}
	return []byte(raw), nil
}

// userIDFromProfile pulls entry_data.ProfilePage[0].graphql.user.id out of a profile page
func userIDFromProfile(body []byte) (string, error) {
	raw, err := sharedData(body)
	if err != nil {
		return "", err
	}

	var data profileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", errors.Wrap(errors.ErrorTypeParsing, err, "invalid window._sharedData")
	}

	pages := data.EntryData.ProfilePage
	if len(pages) == 0 || pages[0].GraphQL.User.ID == "" {
		return "", errors.New(errors.ErrorTypeNotFound, "window._sharedData has no ProfilePage user id")
	}

	return pages[0].GraphQL.User.ID.String(), nil
}
