package client

import (
	"context"
	"net/url"
)

// PropertyService handles property intake and reads.
type PropertyService struct {
	c *Client
}

// List returns properties with optional filtering and pagination.
func (s *PropertyService) List(ctx context.Context, opts *PropertyListOptions) ([]Property, bool, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Status != "" {
			params.Set("status", opts.Status)
		}
		if opts.ListingType != "" {
			params.Set("listing_type", opts.ListingType)
		}
		params = pageParams(params, opts.Limit, opts.Offset)
	}
	var props []Property
	hasMore, err := s.c.get(ctx, "/api/v1/properties", params, &props)
	if err != nil {
		return nil, false, err
	}
	return props, hasMore, nil
}

// Get returns a single property by ID.
func (s *PropertyService) Get(ctx context.Context, id string) (*Property, error) {
	var p Property
	if _, err := s.c.get(ctx, propertyPath(id, ""), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create submits a new property for approval.
func (s *PropertyService) Create(ctx context.Context, req *CreatePropertyRequest) (*Property, error) {
	var p Property
	if err := s.c.post(ctx, "/api/v1/properties", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update edits draft fields of a pending or rejected property.
func (s *PropertyService) Update(ctx context.Context, id string, req *UpdatePropertyRequest) (*Property, error) {
	var p Property
	if err := s.c.patch(ctx, propertyPath(id, ""), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
