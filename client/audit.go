package client

import (
	"context"
	"net/url"
	"time"
)

// AuditService handles audit log queries.
type AuditService struct {
	c *Client
}

// Query returns audit log entries matching the given options.
func (s *AuditService) Query(ctx context.Context, opts *AuditQueryOptions) ([]AuditEntry, bool, error) {
	params := url.Values{}
	if opts != nil {
		if opts.EntityID != "" {
			params.Set("entity_id", opts.EntityID)
		}
		if opts.ActorID != "" {
			params.Set("actor_id", opts.ActorID)
		}
		if opts.Action != "" {
			params.Set("action", opts.Action)
		}
		if opts.Since != nil {
			params.Set("since", opts.Since.Format(time.RFC3339))
		}
		params = pageParams(params, opts.Limit, opts.Offset)
	}
	var entries []AuditEntry
	hasMore, err := s.c.get(ctx, "/api/v1/audit", params, &entries)
	if err != nil {
		return nil, false, err
	}
	return entries, hasMore, nil
}
