package feed

import (
	"context"
	"fmt"

	"instagraph/pkg/logger"
)

// Page is the pagination state carried by one feed response
type Page[T any] struct {
	HasNext bool
	Cursor  string
	Items   []T
}

// Fetcher loads the raw payload for the page at cursor.
// An empty cursor requests the first page.
type Fetcher func(ctx context.Context, cursor string) ([]byte, error)

// Extractor pulls the page info out of a raw payload
type Extractor[T any] func(payload []byte) (Page[T], error)

// Collect fetches pages until at least minimum items have been gathered or
// the feed reports no further pages. The result is never truncated, so it may
// hold more than minimum items.
//
// A failed fetch or an unreadable page ends pagination and keeps whatever was
// gathered so far.
func Collect[T any](ctx context.Context, minimum int, fetch Fetcher, extract Extractor[T], log logger.Logger) []T {
	if log == nil {
		log = logger.NewNopLogger()
	}

	var (
		items   []T
		cursor  string
		hasMore = true
		pages   int
	)

	for len(items) < minimum && hasMore {
		payload, err := fetch(ctx, cursor)
		if err != nil {
			log.WarnWithFields("feed page request failed", map[string]interface{}{
				"page":   pages,
				"cursor": cursor,
				"error":  err.Error(),
			})
			payload = nil
		}
		pages++

		page := safeExtract(extract, payload, log)
		items = append(items, page.Items...)
		hasMore = page.HasNext
		cursor = page.Cursor

		if hasMore && cursor == "" {
			log.WarnWithFields("feed page has no cursor, stopping", map[string]interface{}{
				"page": pages,
			})
			hasMore = false
		}
	}

	log.DebugWithFields("feed pagination finished", map[string]interface{}{
		"pages":    pages,
		"items":    len(items),
		"minimum":  minimum,
		"has_more": hasMore,
	})

	return items
}

// safeExtract turns any extraction failure into an empty final page
func safeExtract[T any](extract Extractor[T], payload []byte, log logger.Logger) (page Page[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.WarnWithFields("feed page extraction panicked", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
			page = Page[T]{}
		}
	}()

	page, err := extract(payload)
	if err != nil {
		log.DebugWithFields("feed page unreadable", map[string]interface{}{
			"error": err.Error(),
		})
		return Page[T]{}
	}
	return page
}
