package inspire

import (
	"context"

	"github.com/Benkendorfer/HEP-paper-graph/internal/metrics"
)

// NoTitle is returned when a title cannot be resolved.
const NoTitle = "No title"

// ResolveTitle returns the title of a record. It never fails: a failed
// lookup or a missing field yields NoTitle.
//
// With useCache, the title log is consulted first and every network result,
// including NoTitle, is appended to it. The search request itself always
// bypasses the response cache.
func (c *Client) ResolveTitle(ctx context.Context, recordID string, useCache bool) string {
	logEnabled := useCache && c.titles != nil
	if logEnabled {
		title, ok, err := c.titles.Lookup(recordID)
		switch {
		case err != nil:
			c.logger.Warn().Err(err).Str("record", recordID).Msg("reading title log failed")
		case ok:
			c.countCache(metrics.CacheTitle, true)
			c.logger.Debug().Str("record", recordID).Msg("title cache hit")
			return title
		}
		c.countCache(metrics.CacheTitle, false)
	}

	title := c.lookupTitle(ctx, recordID)

	if logEnabled {
		if err := c.titles.Append(recordID, title); err != nil {
			c.logger.Warn().Err(err).Str("record", recordID).Msg("caching title failed")
		}
	}
	return title
}

func (c *Client) lookupTitle(ctx context.Context, recordID string) string {
	payload, err := c.Fetch(ctx, c.TitleSearchURL(recordID), false)
	if err != nil {
		c.logger.Warn().Str("record", recordID).Msg("no response during title search")
		return NoTitle
	}
	title, err := ExtractSearchTitle(payload)
	if err != nil {
		c.logger.Warn().Err(err).Str("record", recordID).Msg("no title found")
		return NoTitle
	}
	return title
}
