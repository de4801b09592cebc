// Package config loads and validates the credentials for a run.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the credentials read from the environment.
type Config struct {
	FinnhubAPIKey         string
	TwitterConsumerKey    string
	TwitterConsumerSecret string
	TwitterAccessToken    string
	TwitterAccessSecret   string
}

// requiredVars must all be present before any network call is made.
var requiredVars = []string{
	"FINNHUB_API_KEY",
	"TWITTER_CONSUMER_KEY",
	"TWITTER_CONSUMER_SECRET",
	"TWITTER_ACCESS_TOKEN",
	"TWITTER_ACCESS_SECRET",
	"DB_HOST",
	"DB_PORT",
	"DB_USERNAME",
	"DB_PASSWORD",
	"DB_NAME",
}

// Load reads the credentials, failing with the full list of missing variables.
func Load() (*Config, error) {
	var missing []string

	for _, name := range requiredVars {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf(
			"missing required environment variables: %s",
			strings.Join(missing, ", "),
		)
	}

	return &Config{
		FinnhubAPIKey:         os.Getenv("FINNHUB_API_KEY"),
		TwitterConsumerKey:    os.Getenv("TWITTER_CONSUMER_KEY"),
		TwitterConsumerSecret: os.Getenv("TWITTER_CONSUMER_SECRET"),
		TwitterAccessToken:    os.Getenv("TWITTER_ACCESS_TOKEN"),
		TwitterAccessSecret:   os.Getenv("TWITTER_ACCESS_SECRET"),
	}, nil
}
