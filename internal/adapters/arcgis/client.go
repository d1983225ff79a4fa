// Package arcgis implements ports.Projector against an ArcGIS REST
// GeometryServer.
package arcgis

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/pkg/metrics"
	"github.com/samirrijal/siteloc/internal/pkg/telemetry"
)

const opProject = "project"

// Client calls the GeometryServer project operation.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
}

// New creates a client for a GeometryServer root such as
// https://utility.arcgisonline.com/arcgis/rest/services/Geometry/GeometryServer.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "siteloc",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type geometries struct {
	GeometryType string  `json:"geometryType"`
	Geometries   []point `json:"geometries"`
}

// Project converts points from fromCode to toCode. The result is parallel
// to points; a slot whose input was non-finite or whose output failed
// validation holds the zero GeoPoint, which is never Valid.
func (c *Client) Project(ctx context.Context, points []domain.ProjectedPoint, fromCode, toCode int) ([]domain.GeoPoint, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanProject)
	defer span.End()

	start := time.Now()
	out, err := c.project(ctx, points, fromCode, toCode)
	metrics.ProjectionDuration.Observe(time.Since(start).Seconds())

	span.SetAttributes(attribute.Int(telemetry.AttrPoints, len(points)))
	if err != nil {
		metrics.ProjectionRequests.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.ProjectionRequests.WithLabelValues("ok").Inc()
	return out, nil
}

func (c *Client) project(ctx context.Context, points []domain.ProjectedPoint, fromCode, toCode int) ([]domain.GeoPoint, error) {
	in := geometries{GeometryType: "esriGeometryPoint"}
	var sent []int
	for i, p := range points {
		if p.Finite() {
			in.Geometries = append(in.Geometries, point{X: p.X, Y: p.Y})
			sent = append(sent, i)
		}
	}
	if len(sent) == 0 {
		return nil, &domain.RemoteServiceError{Op: opProject, Message: "no finite input points"}
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, &domain.RemoteServiceError{Op: opProject, Err: err}
	}

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("geometries", string(payload))
	args.Set("inSR", strconv.Itoa(fromCode))
	args.Set("outSR", strconv.Itoa(toCode))
	args.Set("f", "json")

	body, err := c.do(ctx, fasthttp.MethodPost, c.baseURL+"/project", args.QueryString())
	if err != nil {
		return nil, err
	}

	// Output geometries come back in request order.
	out := make([]domain.GeoPoint, len(points))
	usable := 0
	for j, g := range gjson.GetBytes(body, "geometries").Array() {
		if j >= len(sent) {
			break
		}
		x, y := g.Get("x"), g.Get("y")
		if x.Type != gjson.Number || y.Type != gjson.Number {
			continue
		}
		p := domain.GeoPoint{Lat: y.Float(), Lon: x.Float()}
		if p.Valid() {
			out[sent[j]] = p
			usable++
		}
	}
	if usable == 0 {
		return nil, &domain.RemoteServiceError{Op: opProject, Message: "no usable output points"}
	}
	return out, nil
}

// Ping checks that the GeometryServer answers its service description.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, fasthttp.MethodGet, c.baseURL+"?f=json", nil)
	return err
}

// do performs the request and returns a JSON body that carries no service
// error object.
func (c *Client) do(ctx context.Context, method, uri string, form []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if form != nil {
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBody(form)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := ctx.Err(); err != nil {
		return nil, &domain.RemoteServiceError{Op: opProject, Err: err}
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, &domain.RemoteServiceError{Op: opProject, Err: err}
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	if status >= 400 {
		return nil, &domain.RemoteServiceError{Op: opProject, Status: status, Message: snippet(body)}
	}
	if !gjson.ValidBytes(body) {
		return nil, &domain.RemoteServiceError{Op: opProject, Status: status, Message: "invalid JSON response"}
	}
	// ArcGIS reports failures in-band with HTTP 200.
	if e := gjson.GetBytes(body, "error"); e.Exists() {
		return nil, &domain.RemoteServiceError{
			Op:      opProject,
			Status:  int(e.Get("code").Int()),
			Message: e.Get("message").String(),
		}
	}
	return body, nil
}

func snippet(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "empty body"
	}
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
