package etl

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"ulascansenturk/kayak-pipeline/internal/db/warehouse"
	"ulascansenturk/kayak-pipeline/internal/models"

	"github.com/rs/zerolog"
)

const (
	PartitionLayout = "2006-01-02"
	DtTextLayout    = "2006-01-02 15:04:05"
)

// Daylight is the whole number of hours between sunrise and sunset, rounded
// towards negative infinity.
func Daylight(sunrise, sunset int64) int64 {
	diff := sunset - sunrise
	q := diff / 3600
	if diff%3600 != 0 && diff < 0 {
		q--
	}
	return q
}

func TransformWeather(samples []models.WeatherSample, partition string) ([]warehouse.Weather, error) {
	rows := make([]warehouse.Weather, 0, len(samples))
	for _, s := range samples {
		dt, err := time.ParseInLocation(DtTextLayout, s.DtText, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("weather sample for %s: bad dt_text %q: %w", s.City, s.DtText, err)
		}
		rows = append(rows, warehouse.Weather{
			City:        s.City,
			Weather:     s.Weather,
			Temps:       s.Temps,
			FeelsLike:   s.FeelsLike,
			Sunrise:     time.Unix(s.Sunrise, 0).UTC(),
			Sunset:      time.Unix(s.Sunset, 0).UTC(),
			Daylight:    Daylight(s.Sunrise, s.Sunset),
			DtText:      dt,
			DtPartition: partition,
		})
	}
	return rows, nil
}

// ParseReviewCount reads counts such as "1,234 reviews" or
// "1 234 expériences vécues": trailing words are dropped and the remaining
// digit groups joined.
func ParseReviewCount(raw string) (int64, bool) {
	tokens := strings.Fields(raw)
	switch {
	case len(tokens) > 2:
		tokens = tokens[:len(tokens)-2]
	case len(tokens) == 2:
		tokens = tokens[:1]
	}

	var digits strings.Builder
	for _, tok := range tokens {
		for _, r := range tok {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}

	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func ParseCoordinates(raw string) (lat, lon float64, ok bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// CoerceDecimal turns comma-decimal strings into float64. Anything else,
// including values that are already numbers, is returned unchanged.
func CoerceDecimal(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return v
	}
	return f
}

func asFloat(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	default:
		return nil
	}
}

var subRatingColumns = map[string]string{
	"personnel":                "staff",
	"staff":                    "staff",
	"équipements":              "facilities",
	"facilities":               "facilities",
	"propreté":                 "cleanliness",
	"cleanliness":              "cleanliness",
	"confort":                  "comfort",
	"comfort":                  "comfort",
	"rapport qualité/prix":     "value",
	"value for money":          "value",
	"situation géographique":   "location",
	"location":                 "location",
	"connexion wi-fi gratuite": "wifi",
	"free wifi":                "wifi",
	"free wi-fi":               "wifi",
}

// SubRatingColumn maps a sub-rating label as published on the page to its
// column in the hotels table.
func SubRatingColumn(label string) (string, bool) {
	col, ok := subRatingColumns[strings.ToLower(strings.TrimSpace(label))]
	return col, ok
}

func setSubRating(row *warehouse.Hotel, column string, value *float64) {
	switch column {
	case "staff":
		row.Staff = value
	case "facilities":
		row.Facilities = value
	case "cleanliness":
		row.Cleanliness = value
	case "comfort":
		row.Comfort = value
	case "value":
		row.Value = value
	case "location":
		row.Location = value
	case "wifi":
		row.Wifi = value
	}
}

// coerce applies CoerceDecimal. A value that stays raw is added to raw under
// label and yields nil.
func coerce(logger zerolog.Logger, raw map[string]string, label, value string) *float64 {
	f := asFloat(CoerceDecimal(value))
	if f == nil {
		logger.Debug().Str("field", label).Str("value", value).Msg("value kept raw")
		raw[label] = value
	}
	return f
}

// TransformHotels never fails on a single bad field: unparseable values load
// as NULL and the row is kept. Scores that stayed raw go to raw_scores.
func TransformHotels(records []models.HotelRecord, partition string, logger zerolog.Logger) []warehouse.Hotel {
	rows := make([]warehouse.Hotel, 0, len(records))
	for _, rec := range records {
		log := logger.With().Str("hotel", rec.Name).Logger()

		row := warehouse.Hotel{
			Name:        rec.Name,
			City:        rec.City,
			Description: rec.Description,
			URL:         rec.URL,
			DtPartition: partition,
		}

		raw := make(map[string]string)
		if rec.Rating != nil {
			row.Rating = coerce(log, raw, "rating", *rec.Rating)
		}

		if rec.Reviews != nil {
			if n, ok := ParseReviewCount(*rec.Reviews); ok {
				row.Reviews = &n
			} else {
				log.Warn().Str("reviews", *rec.Reviews).Msg("unparseable review count")
			}
		}

		if rec.Coordinates != nil {
			if lat, lon, ok := ParseCoordinates(*rec.Coordinates); ok {
				row.Latitude, row.Longitude = &lat, &lon
			} else {
				log.Warn().Str("coordinates", *rec.Coordinates).Msg("unparseable coordinates")
			}
		}

		for label, value := range rec.SubRatings {
			column, ok := SubRatingColumn(label)
			if !ok {
				continue
			}
			setSubRating(&row, column, coerce(log, raw, label, value))
		}

		if len(raw) > 0 {
			if data, err := json.Marshal(raw); err == nil {
				scores := string(data)
				row.RawScores = &scores
			}
		}

		rows = append(rows, row)
	}
	return rows
}
