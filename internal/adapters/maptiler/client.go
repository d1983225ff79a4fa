// Package maptiler implements ports.CRSSearcher against the MapTiler
// Coordinates search API.
package maptiler

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

const opSearch = "crs search"

// Client searches coordinate systems by free text or code.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *fasthttp.Client
}

// New creates a client for baseURL (https://api.maptiler.com).
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		http: &fasthttp.Client{
			Name:         "siteloc",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}

// Search returns the raw hits for query, deprecated ones included.
func (c *Client) Search(ctx context.Context, query string) ([]domain.RemoteCRS, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	uri := c.baseURL + "/coordinates/search/" + url.PathEscape(query) + ".json?" + url.Values{
		"key":     {c.apiKey},
		"exports": {"false"},
	}.Encode()

	body, err := c.get(ctx, uri)
	if err != nil {
		return nil, err
	}

	results := gjson.GetBytes(body, "results").Array()
	out := make([]domain.RemoteCRS, 0, len(results))
	for _, r := range results {
		code := r.Get("id.code")
		if code.Type != gjson.Number || code.Int() <= 0 {
			continue
		}
		hit := domain.RemoteCRS{
			Authority:  strings.ToUpper(r.Get("id.authority").String()),
			Code:       int(code.Int()),
			Name:       r.Get("name").String(),
			Kind:       r.Get("kind").String(),
			Area:       r.Get("area").String(),
			Unit:       r.Get("unit").String(),
			Deprecated: r.Get("deprecated").Bool(),
		}
		if bbox := r.Get("bbox").Array(); len(bbox) == 4 {
			hit.BBox = make([]float64, 4)
			for i, v := range bbox {
				hit.BBox[i] = v.Float()
			}
		}
		if hit.Authority == "" {
			hit.Authority = "EPSG"
		}
		out = append(out, hit)
	}
	return out, nil
}

// LookupCode fetches a single system by numeric code.
func (c *Client) LookupCode(ctx context.Context, code int) (*domain.RemoteCRS, error) {
	hits, err := c.Search(ctx, "code:"+strconv.Itoa(code))
	if err != nil {
		return nil, err
	}
	for i := range hits {
		if hits[i].Code == code {
			return &hits[i], nil
		}
	}
	return nil, nil
}

func (c *Client) get(ctx context.Context, uri string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	if err := ctx.Err(); err != nil {
		return nil, &domain.RemoteServiceError{Op: opSearch, Err: err}
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, &domain.RemoteServiceError{Op: opSearch, Err: err}
	}

	body := append([]byte(nil), resp.Body()...)
	if status := resp.StatusCode(); status >= 400 {
		return nil, &domain.RemoteServiceError{
			Op:      opSearch,
			Status:  status,
			Message: gjson.GetBytes(body, "message").String(),
		}
	}
	if !gjson.ValidBytes(body) {
		return nil, &domain.RemoteServiceError{Op: opSearch, Message: "invalid JSON response"}
	}
	return body, nil
}
