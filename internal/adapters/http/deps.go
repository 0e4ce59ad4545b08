package http

import (
	"github.com/nats-io/nats.go"

	"github.com/yangonmaps/citymap/internal/adapters/postgres"
	"github.com/yangonmaps/citymap/internal/adapters/valkey"
	"github.com/yangonmaps/citymap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Cities      *usecases.CityService
	CityDetails *usecases.CityDetailService
	Locations   *usecases.LocationService
	Roads       *usecases.RoadService
	Geometry    *usecases.GeometryService
	Routes      *usecases.RouteService
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
}
