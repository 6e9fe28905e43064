package models_test

import (
	"encoding/json"
	"testing"
	"ulascansenturk/kayak-pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCitySlug(t *testing.T) {
	assert.Equal(t, "Mont-Saint-Michel", models.City("Mont Saint Michel").Slug())
	assert.Equal(t, "Paris", models.City(" Paris ").Slug())
}

func TestHotelRecordMergesSubRatingsOnTheWire(t *testing.T) {
	record := models.HotelRecord{
		Name:        "Hôtel du Louvre",
		City:        "Paris",
		Rating:      strPtr("8,7"),
		Reviews:     strPtr("1 234 commentaires"),
		Coordinates: strPtr("48.86,2.33"),
		URL:         "https://www.booking.com/hotel/fr/louvre.fr.html",
		SubRatings: map[string]string{
			"Personnel": "9,1",
			"name":      "should not override",
		},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "Hôtel du Louvre", flat["name"])
	assert.Equal(t, "9,1", flat["Personnel"])
	assert.Nil(t, flat["description"])

	var decoded models.HotelRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, record.Name, decoded.Name)
	assert.Equal(t, "8,7", *decoded.Rating)
	assert.Nil(t, decoded.Description)
	assert.Equal(t, map[string]string{"Personnel": "9,1"}, decoded.SubRatings)
}

func TestHotelRecordAcceptsNumericSubRatings(t *testing.T) {
	var decoded models.HotelRecord
	require.NoError(t, json.Unmarshal([]byte(`{"name":"A","Wifi":8.5,"Confort":null}`), &decoded))

	assert.Equal(t, "A", decoded.Name)
	assert.Equal(t, map[string]string{"Wifi": "8.5"}, decoded.SubRatings)
}
