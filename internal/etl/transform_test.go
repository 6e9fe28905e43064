package etl_test

import (
	"testing"
	"time"
	"ulascansenturk/kayak-pipeline/internal/etl"
	"ulascansenturk/kayak-pipeline/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestDaylightUsesFloorDivision(t *testing.T) {
	cases := []struct {
		sunrise, sunset, want int64
	}{
		{1714537800, 1714590000, 14},
		{0, 3599, 0},
		{0, 3600, 1},
		{3600, 0, -1},
		{3601, 0, -2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, etl.Daylight(c.sunrise, c.sunset), "%d -> %d", c.sunrise, c.sunset)
	}
}

func TestTransformWeather(t *testing.T) {
	rows, err := etl.TransformWeather([]models.WeatherSample{{
		City:      "Paris",
		Weather:   "Clouds",
		Temps:     18.2,
		FeelsLike: 17.5,
		Sunrise:   1714537800,
		Sunset:    1714590000,
		DtText:    "2024-05-01 12:00:00",
	}}, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, int64(14), row.Daylight)
	assert.Equal(t, time.Date(2024, 5, 1, 4, 30, 0, 0, time.UTC), row.Sunrise)
	assert.Equal(t, time.UTC, row.Sunset.Location())
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), row.DtText)
	assert.Equal(t, "2024-05-01", row.DtPartition)
	assert.Equal(t, "Clouds", row.Weather)

	_, err = etl.TransformWeather([]models.WeatherSample{{City: "Paris", DtText: "tomorrow"}}, "2024-05-01")
	assert.ErrorContains(t, err, "tomorrow")
}

func TestParseReviewCount(t *testing.T) {
	cases := map[string]int64{
		"1,234 reviews":            1234,
		"1 234 expériences vécues": 1234,
		"358 commentaires":         358,
		"57":                       57,
		"2 087 expériences vécues": 2087,
	}
	for in, want := range cases {
		got, ok := etl.ParseReviewCount(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "reviews", "no reviews yet"} {
		_, ok := etl.ParseReviewCount(in)
		assert.False(t, ok, in)
	}
}

func TestParseCoordinates(t *testing.T) {
	lat, lon, ok := etl.ParseCoordinates("48.8566,2.3522")
	assert.True(t, ok)
	assert.Equal(t, 48.8566, lat)
	assert.Equal(t, 2.3522, lon)

	lat, lon, ok = etl.ParseCoordinates(" 43.2965 , 5.3698 ")
	assert.True(t, ok)
	assert.Equal(t, 43.2965, lat)
	assert.Equal(t, 5.3698, lon)

	for _, in := range []string{"", "48.8", "a,b", "1,2,3"} {
		_, _, ok := etl.ParseCoordinates(in)
		assert.False(t, ok, in)
	}
}

func TestCoerceDecimal(t *testing.T) {
	assert.Equal(t, 8.5, etl.CoerceDecimal("8,5"))
	assert.Equal(t, 9.0, etl.CoerceDecimal("9.0"))
	assert.Equal(t, 10.0, etl.CoerceDecimal("10"))
	assert.Equal(t, "n/a", etl.CoerceDecimal("n/a"))
	assert.Equal(t, 7.5, etl.CoerceDecimal(7.5))
	assert.Nil(t, etl.CoerceDecimal(nil))
}

func TestSubRatingColumn(t *testing.T) {
	cases := map[string]string{
		"Personnel":                "staff",
		"Équipements":              "facilities",
		"Propreté":                 "cleanliness",
		"Confort":                  "comfort",
		"Rapport qualité/prix":     "value",
		"Situation géographique":   "location",
		"Connexion Wi-Fi gratuite": "wifi",
		"Free WiFi":                "wifi",
		" Staff ":                  "staff",
	}
	for label, want := range cases {
		got, ok := etl.SubRatingColumn(label)
		assert.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}

	_, ok := etl.SubRatingColumn("Petit-déjeuner")
	assert.False(t, ok)
}

func TestTransformHotelsKeepsRowsWithBadFields(t *testing.T) {
	rows := etl.TransformHotels([]models.HotelRecord{
		{
			Name:        "Hôtel Alpha",
			City:        "Paris",
			Rating:      strPtr("8,5"),
			Description: strPtr("Close to the river."),
			Reviews:     strPtr("1 234 expériences vécues"),
			Coordinates: strPtr("48.8566,2.3522"),
			URL:         "https://example.test/alpha",
			SubRatings: map[string]string{
				"Personnel":      "9,1",
				"Propreté":       "n/a",
				"Petit-déjeuner": "7,0",
			},
		},
		{
			Name:        "Beta Inn",
			City:        "Paris",
			Rating:      strPtr("Exceptionnel"),
			Reviews:     strPtr("beaucoup"),
			Coordinates: strPtr("somewhere"),
		},
	}, "2024-05-01", zerolog.Nop())
	require.Len(t, rows, 2)

	alpha := rows[0]
	require.NotNil(t, alpha.Rating)
	assert.Equal(t, 8.5, *alpha.Rating)
	require.NotNil(t, alpha.Reviews)
	assert.Equal(t, int64(1234), *alpha.Reviews)
	require.NotNil(t, alpha.Latitude)
	assert.Equal(t, 48.8566, *alpha.Latitude)
	assert.Equal(t, 2.3522, *alpha.Longitude)
	require.NotNil(t, alpha.Staff)
	assert.Equal(t, 9.1, *alpha.Staff)
	assert.Nil(t, alpha.Cleanliness)
	assert.Nil(t, alpha.Wifi)
	require.NotNil(t, alpha.RawScores)
	assert.JSONEq(t, `{"Propreté":"n/a"}`, *alpha.RawScores)
	assert.Equal(t, "Close to the river.", *alpha.Description)
	assert.Equal(t, "2024-05-01", alpha.DtPartition)

	beta := rows[1]
	assert.Equal(t, "Beta Inn", beta.Name)
	assert.Nil(t, beta.Rating)
	assert.Nil(t, beta.Reviews)
	assert.Nil(t, beta.Latitude)
	assert.Nil(t, beta.Longitude)
	assert.Nil(t, beta.Description)
	require.NotNil(t, beta.RawScores)
	assert.JSONEq(t, `{"rating":"Exceptionnel"}`, *beta.RawScores)
}

func TestTransformHotelsLeavesRawScoresEmptyWhenAllNumeric(t *testing.T) {
	rows := etl.TransformHotels([]models.HotelRecord{{
		Name:       "Gamma",
		City:       "Lyon",
		Rating:     strPtr("9,0"),
		SubRatings: map[string]string{"Confort": "8,8"},
	}}, "2024-05-01", zerolog.Nop())
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].RawScores)
	assert.Equal(t, 8.8, *rows[0].Comfort)
}
