package warehouse

import (
	"time"
)

// Hotel is one row of the hotels partition. Score columns are the fixed
// superset of sub-ratings the listing site publishes; a hotel without a given
// score leaves it NULL. A score that is not numeric is NULL in its column and
// kept verbatim in RawScores, a JSON object of label to published text.
type Hotel struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	Name        string   `json:"name" gorm:"column:name;index:idx_hotels_natural_key,priority:1"`
	City        string   `json:"city" gorm:"column:city;index:idx_hotels_city"`
	Rating      *float64 `json:"rating" gorm:"column:rating"`
	Description *string  `json:"description" gorm:"column:description"`
	Reviews     *int64   `json:"reviews" gorm:"column:reviews"`
	Latitude    *float64 `json:"lat" gorm:"column:lat"`
	Longitude   *float64 `json:"lon" gorm:"column:lon"`
	URL         string   `json:"url" gorm:"column:url"`
	Staff       *float64 `json:"staff" gorm:"column:staff"`
	Facilities  *float64 `json:"facilities" gorm:"column:facilities"`
	Cleanliness *float64 `json:"cleanliness" gorm:"column:cleanliness"`
	Comfort     *float64 `json:"comfort" gorm:"column:comfort"`
	Value       *float64 `json:"value" gorm:"column:value"`
	Location    *float64 `json:"location" gorm:"column:location"`
	Wifi        *float64 `json:"wifi" gorm:"column:wifi"`
	RawScores   *string  `json:"raw_scores" gorm:"column:raw_scores;type:text"`
	DtPartition string   `json:"dt_partition" gorm:"column:dt_partition;size:10;index:idx_hotels_natural_key,priority:2"`
}

func (Hotel) TableName() string {
	return "hotels"
}

type Weather struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	City        string    `json:"city" gorm:"column:city;index:idx_weather_natural_key,priority:1"`
	Weather     string    `json:"weather" gorm:"column:weather"`
	Temps       float64   `json:"temps" gorm:"column:temps"`
	FeelsLike   float64   `json:"feels_like" gorm:"column:feels_like"`
	Sunrise     time.Time `json:"sunrise" gorm:"column:sunrise"`
	Sunset      time.Time `json:"sunset" gorm:"column:sunset"`
	Daylight    int64     `json:"daylight" gorm:"column:daylight"`
	DtText      time.Time `json:"dt_text" gorm:"column:dt_text;index:idx_weather_natural_key,priority:2"`
	DtPartition string    `json:"dt_partition" gorm:"column:dt_partition;size:10;index:idx_weather_natural_key,priority:3"`
}

func (Weather) TableName() string {
	return "weather"
}
