package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/siteloc/internal/core/domain"
	"github.com/samirrijal/siteloc/internal/core/usecases"
	"github.com/samirrijal/siteloc/internal/crs"
)

const (
	maxQueryLength     = 200
	maxProjectedPoints = 1000
)

// GetLocationHandler returns the stored resolution for a job, resolving it
// on first request or when ?refresh=true.
func GetLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		job := c.Params("job")
		res, err := deps.Locations.Get(c.UserContext(), job, c.QueryBool("refresh", false))
		if errors.Is(err, usecases.ErrInvalidJobID) {
			return errBadRequest(c, "job id must be 1-64 characters of letters, digits, '.', '_' or '-'")
		}
		if err != nil {
			return errInternal(c, "resolve failed", err)
		}
		return c.JSON(res)
	}
}

// ResolveJobHandler forces a new resolution. With ?async=true the job is
// queued for the resolver worker and 202 is returned.
func ResolveJobHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		job := c.Params("job")
		if !usecases.ValidJobID(job) {
			return errBadRequest(c, "job id must be 1-64 characters of letters, digits, '.', '_' or '-'")
		}

		if c.QueryBool("async", false) {
			if err := deps.Locations.RequestResolve(c.UserContext(), job); err != nil {
				LoggerFromCtx(c.UserContext()).Warn("queue resolve failed", "job_id", job, "error", err)
				return errUnavailable(c, "resolve queue unavailable")
			}
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued", "job_id": job})
		}

		res, err := deps.Locations.Get(c.UserContext(), job, true)
		if err != nil {
			return errInternal(c, "resolve failed", err)
		}
		return c.JSON(res)
	}
}

// RecentResolutionsHandler lists the latest stored resolutions.
func RecentResolutionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := deps.Locations.Recent(c.UserContext(), c.QueryInt("limit", 20))
		if err != nil {
			return errInternal(c, "list resolutions failed", err)
		}
		return c.JSON(list)
	}
}

type projectionRequest struct {
	// From is "EPSG:2229", "2229" or 2229; empty when unknown.
	From   any                     `json:"from"`
	Points []domain.ProjectedPoint `json:"points"`
}

type projectionResult struct {
	Lat    *float64               `json:"lat,omitempty"`
	Lon    *float64               `json:"lon,omitempty"`
	Method domain.Method          `json:"method,omitempty"`
	Class  domain.CoordinateClass `json:"class"`
}

// ProjectHandler converts a batch of raw coordinate pairs to WGS84.
func ProjectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req projectionRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Points) == 0 {
			return errBadRequest(c, "points must not be empty")
		}
		if len(req.Points) > maxProjectedPoints {
			return errBadRequest(c, "too many points (max 1000)")
		}

		from := 0
		if req.From != nil && req.From != "" {
			code, ok := crs.NormalizeCode(req.From)
			if !ok {
				return errBadRequest(c, "from must be an EPSG code such as \"EPSG:2229\" or 2229")
			}
			from = code
		}

		convs := deps.Conversion.ConvertBatch(c.UserContext(), req.Points, from)
		out := make([]projectionResult, len(convs))
		for i, cv := range convs {
			out[i].Class = cv.Class
			if !cv.OK {
				continue
			}
			lat, lon := cv.Point.Lat, cv.Point.Lon
			out[i].Lat, out[i].Lon, out[i].Method = &lat, &lon, cv.Method
		}
		return c.JSON(fiber.Map{"points": out})
	}
}

// ListCRSHandler returns the bundled catalog by section.
func ListCRSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Catalog.GetAll())
	}
}

// SearchCRSHandler searches coordinate systems. An empty q lists every
// horizontal system.
func SearchCRSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if len(q) > maxQueryLength {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		entries := deps.Catalog.Search(c.UserContext(), q)

		offset, limit := pageParams(c, 50, 200)
		pg := Pagination{Offset: offset, Limit: limit, Total: len(entries)}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page(entries, pg), Pagination: pg})
	}
}

// GetCRSHandler looks up one coordinate system by code.
func GetCRSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := strings.TrimSpace(c.Params("code"))
		if code == "" || len(code) > maxQueryLength {
			return errBadRequest(c, "code is required")
		}
		entry, ok := deps.Catalog.Lookup(c.UserContext(), code)
		if !ok {
			return errNotFound(c, "coordinate system not found")
		}
		return c.JSON(entry)
	}
}

// ValidateCRSHandler checks a CRS declaration against the catalog.
func ValidateCRSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var decl domain.CRSDeclaration
		if err := c.BodyParser(&decl); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		problems := deps.Catalog.Validate(c.UserContext(), decl)
		return c.JSON(fiber.Map{"valid": len(problems) == 0, "problems": problems})
	}
}

// RefreshCRSHandler reloads the bundled catalog and forgets remote entries.
func RefreshCRSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		static := crs.Bundled()
		deps.Catalog.Refresh(static)
		return c.JSON(fiber.Map{"status": "refreshed", "horizontal": len(static.Horizontal())})
	}
}
