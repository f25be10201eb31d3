package linkding

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nikbrunner/lnk/internal/model"
)

const (
	// allTagsLimit matches what the tag screen requests in one go.
	allTagsLimit = 2000
	// maxTagSuggestions keeps inline autocomplete small.
	maxTagSuggestions = 5
)

// ListTags fetches one page of tags and the total count.
func (c *Client) ListTags(ctx context.Context, limit, offset int) ([]model.Tag, int, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var resp tagListJSON
	if err := c.getJSON(ctx, "/api/tags/", q, &resp); err != nil {
		return nil, 0, err
	}
	tags := make([]model.Tag, 0, len(resp.Results))
	for _, t := range resp.Results {
		tags = append(tags, t.toModel())
	}
	return tags, resp.Count, nil
}

// AllTags fetches every tag, paging when the account exceeds one request.
func (c *Client) AllTags(ctx context.Context) ([]model.Tag, error) {
	var all []model.Tag
	for offset := 0; ; offset += allTagsLimit {
		tags, total, err := c.ListTags(ctx, allTagsLimit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, tags...)
		if len(tags) < allTagsLimit || len(all) >= total {
			break
		}
	}
	if all == nil {
		all = []model.Tag{}
	}
	return all, nil
}

// SearchTags returns at most five tags matching the prefix.
func (c *Client) SearchTags(ctx context.Context, prefix string) ([]model.Tag, error) {
	q := url.Values{}
	q.Set("q", strings.TrimSpace(prefix))
	q.Set("limit", strconv.Itoa(maxTagSuggestions))

	var resp tagListJSON
	if err := c.getJSON(ctx, "/api/tags/", q, &resp); err != nil {
		return nil, err
	}
	results := resp.Results
	if len(results) > maxTagSuggestions {
		results = results[:maxTagSuggestions]
	}
	tags := make([]model.Tag, 0, len(results))
	for _, t := range results {
		tags = append(tags, t.toModel())
	}
	return tags, nil
}

// CreateTag creates a tag. The server returns the existing tag for duplicates.
func (c *Client) CreateTag(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("linkding: tag name is empty")
	}
	var t tagJSON
	payload := map[string]string{"name": name}
	if err := c.sendJSON(ctx, http.MethodPost, "/api/tags/", payload, &t); err != nil {
		return nil, err
	}
	tag := t.toModel()
	return &tag, nil
}

// GetUserProfile fetches account preferences.
func (c *Client) GetUserProfile(ctx context.Context) (*model.UserProfile, error) {
	var p model.UserProfile
	if err := c.getJSON(ctx, "/api/user/profile/", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
