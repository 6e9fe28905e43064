package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"ulascansenturk/kayak-pipeline/internal/failure"
	"ulascansenturk/kayak-pipeline/internal/models"
)

const (
	DefaultGeocodingURL = "https://nominatim.openstreetmap.org/search"
	userAgent           = "kayak-pipeline/1.0"
)

type GeocodingService interface {
	Geocode(ctx context.Context, city string) (*models.GeoPoint, error)
	GetHTTPClient() *http.Client
}

type nominatimService struct {
	baseURL string
	client  *http.Client
}

func NewGeocodingService(baseURL string, timeout time.Duration) GeocodingService {
	if baseURL == "" {
		baseURL = DefaultGeocodingURL
	}
	return &nominatimService{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves the first match for city. Every failure is an ErrGeocoding.
func (s *nominatimService) Geocode(ctx context.Context, city string) (*models.GeoPoint, error) {
	query := url.Values{}
	query.Set("city", city)
	query.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocoding request for %q: %v: %w", city, err, failure.ErrGeocoding)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request for %q failed: %v: %w", city, err, failure.ErrGeocoding)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding returned status code %d for %q: %w", resp.StatusCode, city, failure.ErrGeocoding)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("geocoding returned malformed JSON for %q: %v: %w", city, err, failure.ErrGeocoding)
	}

	if len(places) == 0 {
		return nil, fmt.Errorf("no match for %q: %w", city, failure.ErrGeocoding)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("bad latitude %q for %q: %w", places[0].Lat, city, failure.ErrGeocoding)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("bad longitude %q for %q: %w", places[0].Lon, city, failure.ErrGeocoding)
	}

	return &models.GeoPoint{Lat: lat, Lon: lon}, nil
}

func (s *nominatimService) GetHTTPClient() *http.Client {
	return s.client
}
