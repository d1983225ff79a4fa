package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services. Object
// fields resolve through the domain types' json tags.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	crsDeclarationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CRSDeclaration",
		Fields: graphql.Fields{
			"horizontal":  &graphql.Field{Type: graphql.String},
			"vertical":    &graphql.Field{Type: graphql.String},
			"geoid_model": &graphql.Field{Type: graphql.String},
		},
	})

	projectedPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProjectedPoint",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ResolvedLocation",
		Fields: graphql.Fields{
			"latitude":   &graphql.Field{Type: graphql.Float},
			"longitude":  &graphql.Field{Type: graphql.Float},
			"source":     &graphql.Field{Type: graphql.String},
			"confidence": &graphql.Field{Type: graphql.String},
			"method":     &graphql.Field{Type: graphql.String},
			"raw":        &graphql.Field{Type: projectedPointType},
		},
	})

	attemptType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AttemptLog",
		Fields: graphql.Fields{
			"source":  &graphql.Field{Type: graphql.String},
			"outcome": &graphql.Field{Type: graphql.String},
			"detail":  &graphql.Field{Type: graphql.String},
		},
	})

	resolutionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Resolution",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"job_id":       &graphql.Field{Type: graphql.String},
			"display_name": &graphql.Field{Type: graphql.String},
			"location":     &graphql.Field{Type: locationType},
			"crs":          &graphql.Field{Type: crsDeclarationType},
			"confidence":   &graphql.Field{Type: graphql.String},
			"attempts":     &graphql.Field{Type: graphql.NewList(attemptType)},
			"resolved_at":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	crsEntryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CRSEntry",
		Fields: graphql.Fields{
			"code":         &graphql.Field{Type: graphql.String},
			"name":         &graphql.Field{Type: graphql.String},
			"type":         &graphql.Field{Type: graphql.String},
			"recommended":  &graphql.Field{Type: graphql.Boolean},
			"description":  &graphql.Field{Type: graphql.String},
			"bounding_box": &graphql.Field{Type: graphql.NewList(graphql.Float)},
			"unit":         &graphql.Field{Type: graphql.String},
		},
	})

	catalogType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CRSCatalog",
		Fields: graphql.Fields{
			"horizontal": &graphql.Field{Type: graphql.NewList(crsEntryType)},
			"vertical":   &graphql.Field{Type: graphql.NewList(crsEntryType)},
			"geoid":      &graphql.Field{Type: graphql.NewList(crsEntryType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"location": &graphql.Field{
				Type:        resolutionType,
				Description: "Resolved location and CRS of a job",
				Args: graphql.FieldConfigArgument{
					"job":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"refresh": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					job := p.Args["job"].(string)
					refresh, _ := p.Args["refresh"].(bool)
					return deps.Locations.Get(p.Context, job, refresh)
				},
			},
			"recentResolutions": &graphql.Field{
				Type:        graphql.NewList(resolutionType),
				Description: "Most recently stored resolutions",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, _ := p.Args["limit"].(int)
					return deps.Locations.Recent(p.Context, limit)
				},
			},
			"searchCRS": &graphql.Field{
				Type:        graphql.NewList(crsEntryType),
				Description: "Search coordinate systems, recommended first",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := strings.TrimSpace(p.Args["query"].(string))
					if len(q) > maxQueryLength {
						return nil, errors.New("query too long (max 200 characters)")
					}
					return deps.Catalog.Search(p.Context, q), nil
				},
			},
			"crs": &graphql.Field{
				Type:        crsEntryType,
				Description: "Look up a coordinate system by code",
				Args: graphql.FieldConfigArgument{
					"code": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					code := p.Args["code"].(string)
					if e, ok := deps.Catalog.Lookup(p.Context, code); ok {
						return e, nil
					}
					return nil, fmt.Errorf("coordinate system %q not found", code)
				},
			},
			"crsCatalog": &graphql.Field{
				Type:        catalogType,
				Description: "Bundled catalog by section",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.GetAll(), nil
				},
			},
			"validateCRS": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Problems with a CRS declaration; empty when valid",
				Args: graphql.FieldConfigArgument{
					"horizontal":  &graphql.ArgumentConfig{Type: graphql.String},
					"vertical":    &graphql.ArgumentConfig{Type: graphql.String},
					"geoid_model": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					decl := domain.CRSDeclaration{}
					decl.Horizontal, _ = p.Args["horizontal"].(string)
					decl.Vertical, _ = p.Args["vertical"].(string)
					decl.GeoidModel, _ = p.Args["geoid_model"].(string)
					return deps.Catalog.Validate(p.Context, decl), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Query) == "" {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
