package cms

import (
	"context"
)

// categoryService implements the CategoryService interface
type categoryService struct {
	client *Client
}

// List retrieves all categories
func (s *categoryService) List(ctx context.Context) *Response[[]Category] {
	return call[[]Category](ctx, s.client, resource("categories"), nil)
}

// Get retrieves a category by ID or slug
func (s *categoryService) Get(ctx context.Context, categoryID string) *Response[Category] {
	if categoryID == "" {
		return invalid[Category]("category ID is required")
	}
	return call[Category](ctx, s.client, resource("categories", categoryID), nil)
}
