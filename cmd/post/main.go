// Post the current SPY price in sats and record the run
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spysats/spysats/internal/compose"
	"github.com/spysats/spysats/internal/config"
	"github.com/spysats/spysats/internal/database"
	"github.com/spysats/spysats/internal/env"
	"github.com/spysats/spysats/internal/feed"
	"github.com/spysats/spysats/internal/history"
	"github.com/spysats/spysats/internal/quote"
	"github.com/spysats/spysats/internal/run"
)

func main() {
	env.LoadEnvironmentVariables()

	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		os.Exit(1)
	}

	composer, err := compose.Load("template/post.tmpl")

	if err != nil {
		fmt.Fprintf(os.Stderr, "Template error: %s\n", err)
		os.Exit(1)
	}

	conn, err := database.Connect()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = conn.Close()
	}()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	err = run.Run(run.Options{
		Crypto:   quote.NewCoinbaseClient(),
		Equity:   quote.NewFinnhubClient(cfg.FinnhubAPIKey),
		History:  history.NewStore(conn),
		Composer: composer,
		Publisher: feed.NewTwitterClient(
			cfg.TwitterConsumerKey,
			cfg.TwitterConsumerSecret,
			cfg.TwitterAccessToken,
			cfg.TwitterAccessSecret,
		),
		Log: log,
	})

	if err != nil {
		fmt.Fprintf(os.Stderr, "Run error: %s\n", err)
		os.Exit(1)
	}
}
