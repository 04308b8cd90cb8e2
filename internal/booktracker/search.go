package booktracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Search queries Google Books through the backend and returns at most five
// hits, keeping the first author and first category of each volume.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	rel := &url.URL{
		Path:    "/api/search/" + query,
		RawPath: "/api/search/" + url.PathEscape(query),
	}
	var payload volumesResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return payload.results(searchLimit), nil
}

func (v volumesResponse) results(limit int) []SearchResult {
	if len(v.Items) == 0 {
		return nil
	}
	n := min(len(v.Items), limit)
	out := make([]SearchResult, 0, n)
	for _, item := range v.Items[:n] {
		info := item.VolumeInfo
		result := SearchResult{
			Title:     info.Title,
			Thumbnail: info.ImageLinks.Thumbnail,
		}
		if len(info.Authors) > 0 {
			result.Author = info.Authors[0]
		}
		if len(info.Categories) > 0 {
			result.Genre = info.Categories[0]
		}
		out = append(out, result)
	}
	return out
}
