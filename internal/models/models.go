package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

type City string

// Slug is the listing-page form of the city name.
func (c City) Slug() string {
	return strings.ReplaceAll(strings.TrimSpace(string(c)), " ", "-")
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type WeatherSample struct {
	City      string  `json:"city"`
	Weather   string  `json:"weather"`
	Temps     float64 `json:"temps"`
	FeelsLike float64 `json:"feels_like"`
	Sunrise   int64   `json:"sunrise"`
	Sunset    int64   `json:"sunset"`
	DtText    string  `json:"dt_text"`
}

type HotelListing struct {
	URL  string
	City string
}

// HotelRecord is one crawled hotel. SubRatings holds the per-listing scores whose
// labels come from the page; on the wire they are merged into the top-level object.
type HotelRecord struct {
	Name        string
	City        string
	Rating      *string
	Description *string
	Reviews     *string
	Coordinates *string
	URL         string
	SubRatings  map[string]string
}

var hotelFixedKeys = map[string]struct{}{
	"name": {}, "city": {}, "rating": {}, "description": {},
	"reviews": {}, "coordinates": {}, "url": {},
}

func IsFixedHotelKey(key string) bool {
	_, ok := hotelFixedKeys[key]
	return ok
}

func (h HotelRecord) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"name":        h.Name,
		"city":        h.City,
		"rating":      h.Rating,
		"description": h.Description,
		"reviews":     h.Reviews,
		"coordinates": h.Coordinates,
		"url":         h.URL,
	}
	for label, value := range h.SubRatings {
		if IsFixedHotelKey(label) {
			continue
		}
		out[label] = value
	}
	return json.Marshal(out)
}

func (h *HotelRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*h = HotelRecord{}
	for key, value := range raw {
		switch key {
		case "name":
			s, err := decodeOptionalString(value)
			if err != nil {
				return err
			}
			if s != nil {
				h.Name = *s
			}
		case "city":
			s, err := decodeOptionalString(value)
			if err != nil {
				return err
			}
			if s != nil {
				h.City = *s
			}
		case "url":
			s, err := decodeOptionalString(value)
			if err != nil {
				return err
			}
			if s != nil {
				h.URL = *s
			}
		case "rating":
			s, err := decodeOptionalString(value)
			if err != nil {
				return err
			}
			h.Rating = s
		case "description":
			s, err := decodeOptionalString(value)
			if err != nil {
				return err
			}
			h.Description = s
		case "reviews":
			s, err := decodeOptionalString(value)
			if err != nil {
				return err
			}
			h.Reviews = s
		case "coordinates":
			s, err := decodeOptionalString(value)
			if err != nil {
				return err
			}
			h.Coordinates = s
		default:
			s, err := decodeOptionalString(value)
			if err != nil {
				return err
			}
			if s == nil {
				continue
			}
			if h.SubRatings == nil {
				h.SubRatings = make(map[string]string)
			}
			h.SubRatings[key] = *s
		}
	}
	return nil
}

// decodeOptionalString accepts a JSON string, number or null. Numbers keep their
// literal text so that later coercion sees exactly what was scraped.
func decodeOptionalString(value json.RawMessage) (*string, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	s := string(trimmed)
	return &s, nil
}
