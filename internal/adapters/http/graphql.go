package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

var errInvalidID = errors.New("id must be a UUID")

// buildSchema creates the read-only GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	textType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "LocalizedText",
		Description: "Burmese/English text pair",
		Fields: graphql.Fields{
			"mm": &graphql.Field{Type: graphql.String},
			"en": &graphql.Field{Type: graphql.String},
		},
	})

	placeFields := func() graphql.Fields {
		return graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: textType},
			"address":     &graphql.Field{Type: textType},
			"description": &graphql.Field{Type: textType},
			"image_urls":  &graphql.Field{Type: graphql.NewList(graphql.String)},
			"geometry":    &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"is_active":   &graphql.Field{Type: graphql.Boolean},
		}
	}

	cityType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "City",
		Fields: placeFields(),
	})

	locationFields := placeFields()
	locationFields["city_id"] = &graphql.Field{Type: graphql.String}
	locationFields["location_type"] = &graphql.Field{Type: graphql.String}
	locationFields["distance"] = &graphql.Field{Type: graphql.Float}
	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Location",
		Fields: locationFields,
	})

	roadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Road",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"city_id":        &graphql.Field{Type: graphql.String},
			"name":           &graphql.Field{Type: textType},
			"road_type":      &graphql.Field{Type: graphql.String},
			"is_oneway":      &graphql.Field{Type: graphql.Boolean},
			"is_active":      &graphql.Field{Type: graphql.Boolean},
			"geometry":       &graphql.Field{Type: graphql.String},
			"length_m":       &graphql.Field{Type: graphql.NewList(graphql.Float)},
			"total_length_m": &graphql.Field{Type: graphql.Float},
			"total_length_formatted": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if r, ok := p.Source.(domain.Road); ok {
						return geospatial.FormatDistance(r.TotalLength), nil
					}
					return nil, nil
				},
			},
			"encoded_polyline": &graphql.Field{Type: graphql.String},
			"coordinates": &graphql.Field{
				Type:        graphql.NewList(graphql.NewList(graphql.Float)),
				Description: "[lon, lat] pairs",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					r, ok := p.Source.(domain.Road)
					if !ok {
						return nil, nil
					}
					out := make([][]float64, len(r.Coordinates))
					for i, c := range r.Coordinates {
						out[i] = []float64{c.Lon(), c.Lat()}
					}
					return out, nil
				},
			},
		},
	})

	distanceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Distance",
		Fields: graphql.Fields{
			"meters":    &graphql.Field{Type: graphql.Float},
			"formatted": &graphql.Field{Type: graphql.String},
		},
	})

	pageArgs := graphql.FieldConfigArgument{
		"city_id": &graphql.ArgumentConfig{Type: graphql.String},
		"limit":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultPageLimit},
		"offset":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
	}
	idArgs := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"cities": &graphql.Field{
				Type: graphql.NewList(cityType),
				Args: pageArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					f, err := gqlFilter(p)
					if err != nil {
						return nil, err
					}
					page, err := deps.Cities.List(p.Context, f)
					return page.Items, err
				},
			},
			"city": &graphql.Field{
				Type: cityType,
				Args: idArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := gqlID(p)
					if err != nil {
						return nil, err
					}
					return deps.Cities.GetByID(p.Context, id)
				},
			},
			"locations": &graphql.Field{
				Type: graphql.NewList(locationType),
				Args: pageArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					f, err := gqlFilter(p)
					if err != nil {
						return nil, err
					}
					page, err := deps.Locations.List(p.Context, f)
					return page.Items, err
				},
			},
			"location": &graphql.Field{
				Type: locationType,
				Args: idArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := gqlID(p)
					if err != nil {
						return nil, err
					}
					return deps.Locations.GetByID(p.Context, id)
				},
			},
			"locationsNearby": &graphql.Field{
				Type: graphql.NewList(locationType),
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Locations.FindNearby(p.Context,
						p.Args["lat"].(float64),
						p.Args["lon"].(float64),
						p.Args["radius"].(float64),
						p.Args["limit"].(int),
					)
				},
			},
			"roads": &graphql.Field{
				Type: graphql.NewList(roadType),
				Args: pageArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					f, err := gqlFilter(p)
					if err != nil {
						return nil, err
					}
					page, err := deps.Roads.List(p.Context, f)
					return page.Items, err
				},
			},
			"road": &graphql.Field{
				Type: roadType,
				Args: idArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := gqlID(p)
					if err != nil {
						return nil, err
					}
					road, err := deps.Roads.GetByID(p.Context, id)
					if err != nil {
						return nil, err
					}
					return *road, nil
				},
			},
			"distance": &graphql.Field{
				Type:        distanceType,
				Description: "Great-circle distance in meters, rounded to two decimals",
				Args: graphql.FieldConfigArgument{
					"startLon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"startLat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"endLon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"endLat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					start := geospatial.NewCoordinate(p.Args["startLon"].(float64), p.Args["startLat"].(float64))
					end := geospatial.NewCoordinate(p.Args["endLon"].(float64), p.Args["endLat"].(float64))
					return deps.Geometry.Distance(start, end), nil
				},
			},
			"formatDistance": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"meters": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Geometry.Format(p.Args["meters"].(float64)), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func gqlID(p graphql.ResolveParams) (string, error) {
	id, _ := p.Args["id"].(string)
	if !isUUID(id) {
		return "", errInvalidID
	}
	return id, nil
}

func gqlFilter(p graphql.ResolveParams) (ports.ListFilter, error) {
	f := ports.ListFilter{}
	f.Limit, _ = p.Args["limit"].(int)
	f.Offset, _ = p.Args["offset"].(int)
	f.Offset = max(f.Offset, 0)
	if cityID, ok := p.Args["city_id"].(string); ok && cityID != "" {
		if !isUUID(cityID) {
			return f, fmt.Errorf("city_id: %w", errInvalidID)
		}
		f.CityID = cityID
	}
	return f, nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})
		if result.HasErrors() {
			LoggerFromCtx(c.UserContext()).Debug("graphql errors", "errors", result.Errors)
		}

		return c.JSON(result)
	}
}
