package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/yangonmaps/citymap/internal/adapters/http"
	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
	"github.com/yangonmaps/citymap/internal/core/usecases"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

const (
	cityID = "2f1c6b55-6f7c-4c0e-9a40-0d3b5d6c1a01"
	roadID = "7a0e7c1e-3b7f-4a43-8f0e-5d2f4e9b2c11"
	locID  = "c3d0f1a2-1b2c-4d3e-8f4a-5b6c7d8e9f00"
)

// ---- Mock repositories ----

type mockCityRepo struct {
	createFn  func(ctx context.Context, city *domain.City) error
	getByIDFn func(ctx context.Context, id string) (*domain.City, error)
	listFn    func(ctx context.Context, f ports.ListFilter) (ports.Page[domain.City], error)
}

func (m *mockCityRepo) Create(ctx context.Context, city *domain.City) error {
	if m.createFn != nil {
		return m.createFn(ctx, city)
	}
	city.ID = cityID
	return nil
}
func (m *mockCityRepo) Update(ctx context.Context, city *domain.City) error { return nil }
func (m *mockCityRepo) Delete(ctx context.Context, id string) error         { return nil }
func (m *mockCityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockCityRepo) List(ctx context.Context, f ports.ListFilter) (ports.Page[domain.City], error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return ports.Page[domain.City]{}, nil
}

type mockCityDetailRepo struct{}

func (m *mockCityDetailRepo) Create(ctx context.Context, d *domain.CityDetail) error { return nil }
func (m *mockCityDetailRepo) Update(ctx context.Context, d *domain.CityDetail) error { return nil }
func (m *mockCityDetailRepo) Delete(ctx context.Context, id string) error            { return nil }
func (m *mockCityDetailRepo) GetByID(ctx context.Context, id string) (*domain.CityDetail, error) {
	return nil, domain.ErrNotFound
}
func (m *mockCityDetailRepo) List(ctx context.Context, f ports.ListFilter) (ports.Page[domain.CityDetail], error) {
	return ports.Page[domain.CityDetail]{}, nil
}

type mockLocationRepo struct {
	createFn     func(ctx context.Context, loc *domain.Location) error
	listFn       func(ctx context.Context, f ports.ListFilter) (ports.Page[domain.Location], error)
	findNearbyFn func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Location, error)
}

func (m *mockLocationRepo) Create(ctx context.Context, loc *domain.Location) error {
	if m.createFn != nil {
		return m.createFn(ctx, loc)
	}
	loc.ID = locID
	return nil
}
func (m *mockLocationRepo) Update(ctx context.Context, loc *domain.Location) error { return nil }
func (m *mockLocationRepo) Delete(ctx context.Context, id string) error            { return nil }
func (m *mockLocationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	return nil, domain.ErrNotFound
}
func (m *mockLocationRepo) List(ctx context.Context, f ports.ListFilter) (ports.Page[domain.Location], error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return ports.Page[domain.Location]{}, nil
}
func (m *mockLocationRepo) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Location, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}

type mockRoadRepo struct {
	createFn  func(ctx context.Context, road *domain.Road) error
	deleteFn  func(ctx context.Context, id string) error
	getByIDFn func(ctx context.Context, id string) (*domain.Road, error)
	listFn    func(ctx context.Context, f ports.ListFilter) (ports.Page[domain.Road], error)
}

func (m *mockRoadRepo) Create(ctx context.Context, road *domain.Road) error {
	if m.createFn != nil {
		return m.createFn(ctx, road)
	}
	road.ID = roadID
	return nil
}
func (m *mockRoadRepo) Update(ctx context.Context, road *domain.Road) error { return nil }
func (m *mockRoadRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
func (m *mockRoadRepo) GetByID(ctx context.Context, id string) (*domain.Road, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockRoadRepo) List(ctx context.Context, f ports.ListFilter) (ports.Page[domain.Road], error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return ports.Page[domain.Road]{}, nil
}
func (m *mockRoadRepo) UpdateLengths(ctx context.Context, id string, lengths []float64) error {
	return nil
}

type mockRouteGraphRepo struct {
	roads []domain.Road
}

func (m *mockRouteGraphRepo) ListRoutable(ctx context.Context) ([]domain.Road, error) {
	return m.roads, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	d := &handler.Dependencies{
		Cities:      usecases.NewCityService(&mockCityRepo{}, nil, nil),
		CityDetails: usecases.NewCityDetailService(&mockCityDetailRepo{}, nil),
		Locations:   usecases.NewLocationService(&mockLocationRepo{}, nil, nil),
		Roads:       usecases.NewRoadService(&mockRoadRepo{}, nil, nil),
		Geometry:    usecases.NewGeometryService(),
		Routes:      usecases.NewRouteService(&mockRouteGraphRepo{}, nil),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

func decodeError(t *testing.T, body []byte) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("decode error body %s: %v", body, err)
	}
	return apiErr
}

// ---- City handler tests ----

func TestListCities_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Cities = usecases.NewCityService(&mockCityRepo{
			listFn: func(ctx context.Context, f ports.ListFilter) (ports.Page[domain.City], error) {
				return ports.Page[domain.City]{
					Items: []domain.City{
						{ID: "c1", Name: domain.LocalizedText{EN: "Yangon"}},
						{ID: "c2", Name: domain.LocalizedText{EN: "Mandalay"}},
					},
					Total: 2,
				}, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/cities", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.City `json:"data"`
		Pagination struct {
			Total int `json:"total"`
			Limit int `json:"limit"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 2 || len(result.Data) != 2 {
		t.Errorf("expected 2 cities, got %+v", result)
	}
	if result.Pagination.Limit != 50 {
		t.Errorf("expected default limit 50, got %d", result.Pagination.Limit)
	}
}

func TestListCities_LinkHeader(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Cities = usecases.NewCityService(&mockCityRepo{
			listFn: func(ctx context.Context, f ports.ListFilter) (ports.Page[domain.City], error) {
				return ports.Page[domain.City]{Items: make([]domain.City, f.Limit), Total: 10}, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/cities?offset=3&limit=3&active=true", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	link := resp.Header.Get("Link")
	for _, rel := range []string{`rel="first"`, `rel="prev"`, `rel="next"`, `rel="last"`} {
		if !strings.Contains(link, rel) {
			t.Errorf("expected %s in Link header, got %s", rel, link)
		}
	}
	if !strings.Contains(link, "active=true") {
		t.Errorf("expected extra query params to be kept, got %s", link)
	}
}

func TestGetCity_InvalidID(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "GET", "/v1/cities/not-a-uuid", "")
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if e := decodeError(t, body); e.Code != "bad_request" {
		t.Errorf("expected bad_request, got %+v", e)
	}
}

func TestGetCity_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "GET", "/v1/cities/"+cityID, "")
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
	if e := decodeError(t, body); e.Message != "city not found" {
		t.Errorf("unexpected message %q", e.Message)
	}
}

func TestCreateCity_Success(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/cities",
		`{"name":{"mm":"ရန်ကုန်","en":"Yangon"},"lon":96.1561,"lat":16.8409}`)
	if status != 201 {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}

	var city domain.City
	if err := json.Unmarshal(body, &city); err != nil {
		t.Fatal(err)
	}
	if city.ID != cityID {
		t.Errorf("expected id %s, got %s", cityID, city.ID)
	}
	if city.Geometry != "SRID=4326;POINT(96.1561 16.8409)" {
		t.Errorf("unexpected geometry %q", city.Geometry)
	}
}

func TestCreateCity_GeoJSONGeometry(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/cities",
		`{"name":{"en":"Yangon"},"geometry":{"type":"Point","coordinates":[96.1561,16.8409]}}`)
	if status != 201 {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}

	var city domain.City
	if err := json.Unmarshal(body, &city); err != nil {
		t.Fatal(err)
	}
	if city.Geometry != "SRID=4326;POINT(96.1561 16.8409)" {
		t.Errorf("unexpected geometry %q", city.Geometry)
	}

	status, body = doJSON(t, app, "POST", "/v1/cities",
		`{"name":{"en":"Yangon"},"geometry":{"type":"Point","coordinates":[96.1561]}}`)
	if status != 400 {
		t.Fatalf("expected 400 for short GeoJSON point, got %d", status)
	}
	if e := decodeError(t, body); e.Message != usecases.ErrInvalidGeometry.Error() {
		t.Errorf("unexpected message %q", e.Message)
	}
}

func TestCreateCity_Validation(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/cities", `{"geometry":"POINT(96.1 16.8)"}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if e := decodeError(t, body); e.Message != usecases.ErrNameRequired.Error() {
		t.Errorf("unexpected message %q", e.Message)
	}

	status, _ = doJSON(t, app, "POST", "/v1/cities", `{not json`)
	if status != 400 {
		t.Errorf("expected 400 for malformed body, got %d", status)
	}
}

func TestUpdateCity_NoChanges(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Cities = usecases.NewCityService(&mockCityRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.City, error) {
				return &domain.City{ID: id, Name: domain.LocalizedText{EN: "Bago"}}, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	status, _ := doJSON(t, app, "PUT", "/v1/cities/"+cityID, `{}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestCityRoads_ScopedToPathID(t *testing.T) {
	var got ports.ListFilter
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Roads = usecases.NewRoadService(&mockRoadRepo{
			listFn: func(ctx context.Context, f ports.ListFilter) (ports.Page[domain.Road], error) {
				got = f
				return ports.Page[domain.Road]{
					Items: []domain.Road{{ID: roadID, Geometry: "LINESTRING(0 0, 0 1)"}},
					Total: 1,
				}, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	status, body := doJSON(t, app, "GET", "/v1/cities/"+cityID+"/roads?city_id=ignored", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if got.CityID != cityID {
		t.Errorf("expected filter on %s, got %q", cityID, got.CityID)
	}

	var result struct {
		Data []domain.Road `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Data) != 1 || len(result.Data[0].Coordinates) != 2 {
		t.Errorf("expected decorated road, got %+v", result.Data)
	}
}

// ---- Location handler tests ----

func TestListLocations_InvalidCityID(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := doJSON(t, app, "GET", "/v1/locations?city_id=yangon", "")
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestCreateLocation_UnknownCity(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Locations = usecases.NewLocationService(&mockLocationRepo{
			createFn: func(ctx context.Context, loc *domain.Location) error {
				return domain.ErrUnknownCity
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	status, body := doJSON(t, app, "POST", "/v1/locations",
		`{"city_id":"`+cityID+`","name":{"en":"Sule Pagoda"},"geometry":"POINT(96.1561 16.7746)"}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d: %s", status, body)
	}
}

func TestCreateLocation_BadCityID(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/locations",
		`{"city_id":"abc","name":{"en":"Sule Pagoda"},"geometry":"POINT(96.1561 16.7746)"}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if e := decodeError(t, body); e.Message != "city_id must be a UUID" {
		t.Errorf("unexpected message %q", e.Message)
	}
}

func TestNearbyLocations_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Locations = usecases.NewLocationService(&mockLocationRepo{
			findNearbyFn: func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Location, error) {
				if radius != 500 {
					t.Errorf("expected radius 500, got %v", radius)
				}
				dist := 120.5
				return []domain.Location{{ID: locID, Distance: &dist}}, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/locations/nearby?lat=16.78&lon=96.15&radius=500", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=60" {
		t.Errorf("expected Cache-Control public, max-age=60, got %q", cc)
	}

	var locs []domain.Location
	if err := json.NewDecoder(resp.Body).Decode(&locs); err != nil {
		t.Fatal(err)
	}
	if len(locs) != 1 || locs[0].Distance == nil {
		t.Errorf("expected one location with distance, got %+v", locs)
	}
}

func TestNearbyLocations_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	for _, target := range []string{
		"/v1/locations/nearby",
		"/v1/locations/nearby?lat=16.8",
		"/v1/locations/nearby?lat=100&lon=96",
		"/v1/locations/nearby?lat=16.8&lon=96.1&radius=0",
	} {
		status, _ := doJSON(t, app, "GET", target, "")
		if status != 400 {
			t.Errorf("%s: expected 400, got %d", target, status)
		}
	}
}

// ---- Road handler tests ----

func TestCreateRoad_EncodedPolyline(t *testing.T) {
	var stored domain.Road
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Roads = usecases.NewRoadService(&mockRoadRepo{
			createFn: func(ctx context.Context, road *domain.Road) error {
				road.ID = roadID
				stored = *road
				return nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	status, body := doJSON(t, app, "POST", "/v1/roads", fmt.Sprintf(
		`{"city_id":%q,"name":{"en":"Pacific Route"},"road_type":"primary","encoded_polyline":%q}`,
		cityID, "_p~iF~ps|U_ulLnnqC_mqNvxq`@"))
	if status != 201 {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	if !strings.HasPrefix(stored.Geometry, "SRID=4326;LINESTRING(-120.2 38.5") {
		t.Errorf("unexpected geometry %q", stored.Geometry)
	}
	if len(stored.SegmentLengths) != 2 {
		t.Errorf("expected 2 segments, got %v", stored.SegmentLengths)
	}
}

func TestCreateRoad_ObjectAndBrokenCoordinates(t *testing.T) {
	var stored domain.Road
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Roads = usecases.NewRoadService(&mockRoadRepo{
			createFn: func(ctx context.Context, road *domain.Road) error {
				road.ID = roadID
				stored = *road
				return nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	status, body := doJSON(t, app, "POST", "/v1/roads", fmt.Sprintf(
		`{"city_id":%q,"name":{"en":"Strand Road"},"coordinates":[{"lon":96.1,"lat":16.8},null,[96.2],{"longitude":96.2,"latitude":16.9}]}`,
		cityID))
	if status != 201 {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	if stored.Geometry != "SRID=4326;LINESTRING(96.1 16.8, 96.2 16.9)" {
		t.Errorf("unexpected geometry %q", stored.Geometry)
	}
	if len(stored.SegmentLengths) != 1 {
		t.Errorf("expected 1 segment, got %v", stored.SegmentLengths)
	}
}

func TestCreateRoad_BadPolyline(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/roads",
		`{"city_id":"`+cityID+`","name":{"en":"x"},"encoded_polyline":"_p~iF~ps|U_"}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if e := decodeError(t, body); e.Message != "invalid encoded_polyline" {
		t.Errorf("unexpected message %q", e.Message)
	}
}

func TestCreateRoad_TooFewCoordinates(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := doJSON(t, app, "POST", "/v1/roads",
		`{"city_id":"`+cityID+`","name":{"en":"x"},"coordinates":[[96.1,16.8]]}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestDeleteRoad(t *testing.T) {
	var deleted string
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Roads = usecases.NewRoadService(&mockRoadRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Road, error) {
				return &domain.Road{ID: id, CityID: cityID}, nil
			},
			deleteFn: func(ctx context.Context, id string) error {
				deleted = id
				return nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	status, _ := doJSON(t, app, "DELETE", "/v1/roads/"+roadID, "")
	if status != 204 {
		t.Fatalf("expected 204, got %d", status)
	}
	if deleted != roadID {
		t.Errorf("expected %s deleted, got %q", roadID, deleted)
	}
}

func TestDeleteRoad_NotFound(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Roads = usecases.NewRoadService(&mockRoadRepo{
			deleteFn: func(ctx context.Context, id string) error {
				t.Error("delete should not run for a missing road")
				return nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	status, _ := doJSON(t, app, "DELETE", "/v1/roads/"+roadID, "")
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
}

// ---- Route handler tests ----

// routeDeps wires a one-way road running east from 96.100 to 96.102.
func routeDeps() *handler.Dependencies {
	coords := []geospatial.Coordinate{
		geospatial.NewCoordinate(96.100, 16.800),
		geospatial.NewCoordinate(96.101, 16.800),
		geospatial.NewCoordinate(96.102, 16.800),
	}
	wkt, _ := geospatial.LineStringWKT(coords)
	road := domain.Road{
		ID: roadID, Name: domain.LocalizedText{EN: "Strand Road"}, IsOneway: true,
		Geometry: wkt, SegmentLengths: geospatial.SegmentLengths(coords),
	}
	return makeDeps(func(d *handler.Dependencies) {
		d.Routes = usecases.NewRouteService(&mockRouteGraphRepo{roads: []domain.Road{road}}, nil)
	})
}

func TestPlanRoute_Success(t *testing.T) {
	app := setupApp(routeDeps())

	status, body := doJSON(t, app, "POST", "/v1/routes",
		`{"start_lon":96.100,"start_lat":16.800,"end_lon":96.102,"end_lat":16.800}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var route domain.Route
	if err := json.Unmarshal(body, &route); err != nil {
		t.Fatal(err)
	}
	if len(route.Segments) != 1 || route.Segments[0].RoadID != roadID || route.Segments[0].Name.EN != "Strand Road" {
		t.Errorf("unexpected segments %+v", route.Segments)
	}
	if route.TotalDistance <= 0 || route.EstimatedSeconds <= route.TotalDistance/2 {
		t.Errorf("unexpected distance/time %v / %v", route.TotalDistance, route.EstimatedSeconds)
	}
	if len(route.Coordinates) != 3 {
		t.Errorf("expected 3 coordinates, got %v", route.Coordinates)
	}
}

func TestPlanRoute_AgainstOneway(t *testing.T) {
	app := setupApp(routeDeps())

	status, body := doJSON(t, app, "POST", "/v1/routes",
		`{"start_lon":96.102,"start_lat":16.800,"end_lon":96.100,"end_lat":16.800}`)
	if status != 404 {
		t.Fatalf("expected 404, got %d: %s", status, body)
	}
	if e := decodeError(t, body); e.Message != usecases.ErrNoRoute.Error() {
		t.Errorf("unexpected message %q", e.Message)
	}
}

func TestPlanRoute_NoNodeNearby(t *testing.T) {
	app := setupApp(routeDeps())

	status, _ := doJSON(t, app, "POST", "/v1/routes",
		`{"start_lon":96.100,"start_lat":16.800,"end_lon":96.2,"end_lat":16.9}`)
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestPlanRoute_BadInput(t *testing.T) {
	app := setupApp(routeDeps())

	for _, body := range []string{
		`{"start_lon":96.100,"start_lat":16.800,"end_lon":96.102}`,
		`{"start_lon":"east","start_lat":16.8,"end_lon":96.1,"end_lat":16.8}`,
		`{"start_lon":196.1,"start_lat":16.8,"end_lon":96.1,"end_lat":16.8}`,
	} {
		status, _ := doJSON(t, app, "POST", "/v1/routes", body)
		if status != 400 {
			t.Errorf("%s: expected 400, got %d", body, status)
		}
	}
}

func TestPlanRoute_LegacyAlias(t *testing.T) {
	app := setupApp(routeDeps())

	req := httptest.NewRequest("POST", "/routes",
		strings.NewReader(`{"start_lon":96.100,"start_lat":16.800,"end_lon":96.102,"end_lat":16.800}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header on the unversioned alias")
	}
}

func TestPlanRoute_Unavailable(t *testing.T) {
	app := setupApp(makeDeps(func(d *handler.Dependencies) { d.Routes = nil }))

	status, _ := doJSON(t, app, "POST", "/v1/routes",
		`{"start_lon":96.1,"start_lat":16.8,"end_lon":96.2,"end_lat":16.8}`)
	if status != 503 {
		t.Errorf("expected 503, got %d", status)
	}
}

// ---- Geometry handler tests ----

func TestGeometryDistance(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/geometry/distance", `{"start":[0,0],"end":[0,1]}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var result usecases.DistanceResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if result.Meters != 111194.93 {
		t.Errorf("expected 111194.93, got %v", result.Meters)
	}
	if result.Formatted != "111.2 km" {
		t.Errorf("expected 111.2 km, got %q", result.Formatted)
	}
}

func TestGeometryDistance_MissingEnd(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := doJSON(t, app, "POST", "/v1/geometry/distance", `{"start":[0,0]}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestGeometrySegments(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/geometry/segments", `{"coordinates":[[0,0],[0,1],[1,1]]}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var sum usecases.PolylineSummary
	if err := json.Unmarshal(body, &sum); err != nil {
		t.Fatal(err)
	}
	if len(sum.SegmentLengths) != 2 || sum.SegmentLengths[0] != 111194.93 {
		t.Errorf("unexpected lengths %v", sum.SegmentLengths)
	}
	if sum.WKT == "" || sum.EncodedPolyline == "" {
		t.Errorf("expected wkt and polyline, got %+v", sum)
	}
}

func TestGeometrySegments_DropsNullAndShortPairs(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/geometry/segments",
		`{"coordinates":[[96.1,16.8],null,[96.2],[96.2,16.9]]}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var sum usecases.PolylineSummary
	if err := json.Unmarshal(body, &sum); err != nil {
		t.Fatal(err)
	}
	if len(sum.SegmentLengths) != 1 {
		t.Errorf("expected 1 segment, got %v", sum.SegmentLengths)
	}
	if sum.Dropped != 2 {
		t.Errorf("expected 2 dropped, got %d", sum.Dropped)
	}
}

func TestGeometryDistance_ShortPair(t *testing.T) {
	app := setupApp(makeDeps())

	for _, body := range []string{
		`{"start":[96.2],"end":[96.2,16.9]}`,
		`{"start":[96.1,16.8],"end":{"lon":96.2}}`,
	} {
		status, _ := doJSON(t, app, "POST", "/v1/geometry/distance", body)
		if status != 400 {
			t.Errorf("%s: expected 400, got %d", body, status)
		}
	}
}

func TestGeometryFormat(t *testing.T) {
	app := setupApp(makeDeps())

	cases := map[string]string{
		"/v1/geometry/format?meters=999.4": "999 m",
		"/v1/geometry/format?meters=1500":  "1.50 km",
		"/v1/geometry/format?meters=abc":   "—",
		"/v1/geometry/format":              "—",
	}
	for target, want := range cases {
		status, body := doJSON(t, app, "GET", target, "")
		if status != 200 {
			t.Fatalf("%s: expected 200, got %d", target, status)
		}
		var out struct {
			Formatted string `json:"formatted"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatal(err)
		}
		if out.Formatted != want {
			t.Errorf("%s: expected %q, got %q", target, want, out.Formatted)
		}
	}
}

func TestGeometryPointWKT(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/geometry/wkt/point", `{"wkt":"SRID=4326;point( 96.15  16.84 )"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var out struct {
		Lon  string `json:"lon"`
		Lat  string `json:"lat"`
		EWKT string `json:"ewkt"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Lon != "96.15" || out.Lat != "16.84" {
		t.Errorf("unexpected point %+v", out)
	}
	if !strings.HasPrefix(out.EWKT, "SRID=4326;POINT(") {
		t.Errorf("unexpected ewkt %q", out.EWKT)
	}
}

func TestGeometryParseCoordinates_DropsBadLines(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/v1/geometry/coordinates/parse",
		`{"text":"96.1,16.8\nnot a pair\n96.2,16.9"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var sum usecases.PolylineSummary
	if err := json.Unmarshal(body, &sum); err != nil {
		t.Fatal(err)
	}
	if len(sum.Coordinates) != 2 || sum.Dropped != 1 {
		t.Errorf("expected 2 coordinates and 1 dropped, got %+v", sum)
	}
}

// ---- Export, legacy aliases, GraphQL ----

func TestExportCityKML(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Cities = usecases.NewCityService(&mockCityRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.City, error) {
				return &domain.City{
					ID:       id,
					Name:     domain.LocalizedText{EN: "Yangon"},
					Geometry: "POINT(96.1561 16.8409)",
				}, nil
			},
		}, nil, nil)
		d.Roads = usecases.NewRoadService(&mockRoadRepo{
			listFn: func(ctx context.Context, f ports.ListFilter) (ports.Page[domain.Road], error) {
				return ports.Page[domain.Road]{
					Items: []domain.Road{{ID: roadID, Name: domain.LocalizedText{EN: "Pyay Road"}, Geometry: "LINESTRING(96.13 16.80, 96.13 16.85)"}},
					Total: 1,
				}, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/cities/"+cityID+"/export.kml", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.google-earth.kml+xml" {
		t.Errorf("unexpected content type %q", ct)
	}

	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, "<name>Yangon</name>") || !strings.Contains(body, "<name>Pyay Road</name>") {
		t.Errorf("expected city and road placemarks, got %s", body)
	}
}

func TestLegacyAlias_DeprecationHeaders(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/cities", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header")
	}
	if resp.Header.Get("Sunset") == "" {
		t.Error("expected Sunset header")
	}
}

func TestGraphQL_Distance(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := doJSON(t, app, "POST", "/graphql",
		`{"query":"{ distance(startLon: 0, startLat: 0, endLon: 0, endLat: 1) { meters formatted } formatDistance(meters: 42.42) }"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var out struct {
		Data struct {
			Distance struct {
				Meters    float64 `json:"meters"`
				Formatted string  `json:"formatted"`
			} `json:"distance"`
			FormatDistance string `json:"formatDistance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Data.Distance.Meters != 111194.93 {
		t.Errorf("unexpected distance %+v", out.Data.Distance)
	}
	if out.Data.FormatDistance != "42.4 m" {
		t.Errorf("expected 42.4 m, got %q", out.Data.FormatDistance)
	}
}

// ---- Health ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if v := resp.Header.Get("X-API-Version"); v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

func TestReady_NoDB(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503 without a database, got %d", resp.StatusCode)
	}
}

func TestETag_NotModified(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/geometry/format?meters=5", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/v1/geometry/format?meters=5", nil)
	req.Header.Set("If-None-Match", `"other", `+etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

// TestAccessLogMiddleware verifies structured access logging is emitted.
func TestAccessLogMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(handler.AccessLogMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "ok") {
		t.Errorf("expected response body to contain 'ok', got %s", string(body))
	}
}
