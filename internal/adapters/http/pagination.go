package http

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// pageParams reads offset and limit, clamping limit to (0, max].
func pageParams(c *fiber.Ctx, def, max int) (int, int) {
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := c.QueryInt("limit", def)
	if limit <= 0 || limit > max {
		limit = def
	}
	return offset, limit
}

// page returns the window of items selected by p.
func page[T any](items []T, p Pagination) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses,
// keeping the request's other query parameters.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	extra := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		if key := string(k); key != "offset" && key != "limit" {
			extra.Add(key, string(v))
		}
	})
	suffix := ""
	if len(extra) > 0 {
		suffix = "&" + extra.Encode()
	}

	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d%s>; rel="%s"`, base, offset, p.Limit, suffix, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, link(prev, "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	last := p.Total - p.Limit
	if last < 0 {
		last = 0
	}
	links = append(links, link(last, "last"))

	c.Set(fiber.HeaderLink, strings.Join(links, ", "))
}
