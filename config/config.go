package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// DefaultCities is the fixed destination list the pipeline runs over.
var DefaultCities = []string{
	"Mont Saint Michel", "St Malo", "Bayeux", "Le Havre", "Rouen", "Paris", "Amiens",
	"Lille", "Strasbourg", "Chateau du Haut Koenigsbourg", "Colmar", "Eguisheim",
	"Besancon", "Dijon", "Annecy", "Grenoble", "Lyon", "Gorges du Verdon",
	"Bormes les Mimosas", "Cassis", "Marseille", "Aix en Provence", "Avignon", "Uzes",
	"Nimes", "Aigues Mortes", "Saintes Maries de la mer", "Collioure", "Carcassonne",
	"Ariege", "Toulouse", "Montauban", "Biarritz", "Bayonne", "La Rochelle",
}

type Config struct {
	ServiceName   string
	ServerAddress string

	DatabaseURL string
	DBName      string
	DBPassword  string
	DBUser      string
	DBPort      string
	DBHost      string

	Env         string
	LogLevel    string
	LogFile     string
	HTTPTimeout int32

	Cities []string

	OpenWeatherAPIKey  string
	GeocodingBaseURL   string
	ForecastBaseURL    string
	ListingURLTemplate string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3UseSSL    bool

	LedgerPath string
	DataDir    string

	CrawlConcurrency   int
	CrawlRatePerSecond float64
	CrawlRetries       int

	WeatherConcurrency      int
	WeatherSkipFailedCities bool

	LoadMode        string
	MetricsTextfile string
}

func LoadConfig() (*Config, error) {
	return load(".")
}

func load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVICE_NAME", "kayak-pipeline")

	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:3000")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_TIMEOUT", 30)
	v.SetDefault("CITIES", strings.Join(DefaultCities, ","))
	v.SetDefault("GEOCODING_BASE_URL", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("FORECAST_BASE_URL", "https://api.openweathermap.org/data/2.5/forecast")
	v.SetDefault("LISTING_URL_TEMPLATE", "https://www.booking.com/city/fr/%s.fr.html")
	v.SetDefault("S3_ENDPOINT", "s3.amazonaws.com")
	v.SetDefault("S3_BUCKET", "kayak-snapshots")
	v.SetDefault("S3_REGION", "eu-west-3")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("LEDGER_PATH", "s3_files.log")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("CRAWL_CONCURRENCY", 8)
	v.SetDefault("CRAWL_RATE_PER_SECOND", 4.0)
	v.SetDefault("CRAWL_RETRIES", 2)
	v.SetDefault("WEATHER_CONCURRENCY", 5)
	v.SetDefault("WEATHER_SKIP_FAILED_CITIES", false)
	v.SetDefault("LOAD_MODE", "append")

	v.AutomaticEnv()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Warn().Msg("No .env file found, using environment variables only")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Config file loaded")
	}

	config := &Config{
		ServiceName:             v.GetString("SERVICE_NAME"),
		ServerAddress:           v.GetString("SERVER_ADDRESS"),
		DatabaseURL:             v.GetString("DATABASE_URL"),
		DBName:                  v.GetString("DATABASE_NAME"),
		DBPassword:              v.GetString("DATABASE_PASSWORD"),
		DBUser:                  v.GetString("DATABASE_USER"),
		DBPort:                  v.GetString("DATABASE_PORT"),
		DBHost:                  v.GetString("DATABASE_HOST"),
		Env:                     v.GetString("ENV"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		LogFile:                 v.GetString("LOG_FILE"),
		HTTPTimeout:             v.GetInt32("HTTP_TIMEOUT"),
		Cities:                  splitList(v.GetString("CITIES")),
		OpenWeatherAPIKey:       v.GetString("OPENWEATHER_API_KEY"),
		GeocodingBaseURL:        v.GetString("GEOCODING_BASE_URL"),
		ForecastBaseURL:         v.GetString("FORECAST_BASE_URL"),
		ListingURLTemplate:      v.GetString("LISTING_URL_TEMPLATE"),
		S3Endpoint:              v.GetString("S3_ENDPOINT"),
		S3AccessKey:             v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:             v.GetString("S3_SECRET_KEY"),
		S3Bucket:                v.GetString("S3_BUCKET"),
		S3Region:                v.GetString("S3_REGION"),
		S3UseSSL:                v.GetBool("S3_USE_SSL"),
		LedgerPath:              v.GetString("LEDGER_PATH"),
		DataDir:                 v.GetString("DATA_DIR"),
		CrawlConcurrency:        v.GetInt("CRAWL_CONCURRENCY"),
		CrawlRatePerSecond:      v.GetFloat64("CRAWL_RATE_PER_SECOND"),
		CrawlRetries:            v.GetInt("CRAWL_RETRIES"),
		WeatherConcurrency:      v.GetInt("WEATHER_CONCURRENCY"),
		WeatherSkipFailedCities: v.GetBool("WEATHER_SKIP_FAILED_CITIES"),
		LoadMode:                v.GetString("LOAD_MODE"),
		MetricsTextfile:         v.GetString("METRICS_TEXTFILE"),
	}

	return config, nil
}

func (c *Config) HTTPTimeoutDuration() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// DSN prefers DATABASE_URL and falls back to the discrete DATABASE_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
