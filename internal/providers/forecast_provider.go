package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"ulascansenturk/kayak-pipeline/internal/models"
)

const DefaultForecastURL = "https://api.openweathermap.org/data/2.5/forecast"

type ForecastService interface {
	Forecast(ctx context.Context, point models.GeoPoint) (*ForecastResponse, error)
	GetHTTPClient() *http.Client
}

type openWeatherService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewForecastService(baseURL, apiKey string, timeout time.Duration) ForecastService {
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}
	return &openWeatherService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ForecastResponse is the subset of the 5 day / 3 hour forecast that the pipeline keeps.
type ForecastResponse struct {
	List []ForecastStep `json:"list"`
	City struct {
		Name    string `json:"name"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"city"`
}

type ForecastStep struct {
	DtTxt string `json:"dt_txt"`
	Main  struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// Condition is the label of the first weather entry, empty when the step has none.
func (f ForecastStep) Condition() string {
	if len(f.Weather) == 0 {
		return ""
	}
	return f.Weather[0].Main
}

type openWeatherError struct {
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
}

func (s *openWeatherService) Forecast(ctx context.Context, point models.GeoPoint) (*ForecastResponse, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(point.Lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(point.Lon, 'f', -1, 64))
	query.Set("appid", s.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr openWeatherError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("forecast returned status code %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("forecast returned status code %d", resp.StatusCode)
	}

	var forecast ForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("forecast returned malformed JSON: %w", err)
	}

	return &forecast, nil
}

func (s *openWeatherService) GetHTTPClient() *http.Client {
	return s.client
}
