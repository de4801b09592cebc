// Package run performs one fetch, compare, publish, persist cycle.
package run

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spysats/spysats/internal/change"
	"github.com/spysats/spysats/internal/feed"
	"github.com/spysats/spysats/internal/history"
	"github.com/spysats/spysats/internal/model"
	"github.com/spysats/spysats/internal/sats"
)

const (
	// BitcoinProduct is the Coinbase product pair used for the exchange rate.
	BitcoinProduct = "BTC-USD"
	// BitcoinTicker names the exchange rate asset in the ledger.
	BitcoinTicker = "BTC"
	// EquityTicker is the instrument priced in sats.
	EquityTicker = "SPY"

	// DailyLookback is how far back the daily comparison reaches.
	DailyLookback = 24 * time.Hour
	// DailyTolerance absorbs scheduler drift when picking the daily baseline.
	DailyTolerance = 5 * time.Minute
)

// CryptoSource returns a spot price for a product pair.
type CryptoSource interface {
	SpotPrice(product string) (decimal.Decimal, error)
}

// EquitySource returns the current price for an equity ticker.
type EquitySource interface {
	Quote(symbol string) (decimal.Decimal, error)
}

// Publisher delivers a post to the feed.
type Publisher interface {
	Publish(text string) (feed.Result, error)
}

// Composer renders the post text for a data bundle.
type Composer interface {
	Render(data model.PostData) (string, error)
}

// History is the snapshot ledger a run reads and appends.
type History interface {
	EnsureAssets(tickers []string) error
	Asset(ticker string) (model.Asset, error)
	Latest(assetID int) (*model.Snapshot, error)
	NearestTo(assetID int, target time.Time, tolerance time.Duration) (*model.Snapshot, error)
	SaveRun(record history.RunRecord) error
}

// Options wires the collaborators for one run.
type Options struct {
	Crypto    CryptoSource
	Equity    EquitySource
	History   History
	Composer  Composer
	Publisher Publisher
	Now       func() time.Time
	Log       *logrus.Logger
}

// Run performs one collection cycle.
//
// Quote or storage failures abort the run before anything is written. A
// publish failure still persists the price snapshots, since the ledger stays
// useful without the post, but no announcement row is recorded for a message
// that never reached the feed.
func Run(options Options) error {
	now := options.Now

	if now == nil {
		now = time.Now
	}

	log := options.Log

	if log == nil {
		log = logrus.New()
	}

	btcPrice, err := options.Crypto.SpotPrice(BitcoinProduct)

	if err != nil {
		return fmt.Errorf("bitcoin price: %w", err)
	}

	spyPrice, err := options.Equity.Quote(EquityTicker)

	if err != nil {
		return fmt.Errorf("equity quote: %w", err)
	}

	spyInSats, err := sats.ToSats(spyPrice, sats.PerBitcoin, btcPrice)

	if err != nil {
		return fmt.Errorf("sats conversion: %w", err)
	}

	log.WithFields(logrus.Fields{
		"btc_usd":  btcPrice,
		"spy_usd":  spyPrice,
		"spy_sats": spyInSats,
	}).Info("prices collected")

	if err := options.History.EnsureAssets([]string{BitcoinTicker, EquityTicker}); err != nil {
		return fmt.Errorf("seed assets: %w", err)
	}

	spy, err := options.History.Asset(EquityTicker)

	if err != nil {
		return fmt.Errorf("load %s asset: %w", EquityTicker, err)
	}

	btc, err := options.History.Asset(BitcoinTicker)

	if err != nil {
		return fmt.Errorf("load %s asset: %w", BitcoinTicker, err)
	}

	runTime := now()

	hourlyBaseline, err := options.History.Latest(spy.ID)

	if err != nil {
		return fmt.Errorf("hourly baseline: %w", err)
	}

	dailyBaseline, err := options.History.NearestTo(
		spy.ID,
		runTime.Add(-DailyLookback),
		DailyTolerance,
	)

	if err != nil {
		return fmt.Errorf("daily baseline: %w", err)
	}

	data := model.PostData{
		SpyInSats: spyInSats,
		Hourly:    computeWindow(log, "hourly", spyInSats, hourlyBaseline),
		Daily:     computeWindow(log, "daily", spyInSats, dailyBaseline),
		BtcPrice:  btcPrice,
		SpyPrice:  spyPrice,
	}

	text, err := options.Composer.Render(data)

	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}

	record := history.RunRecord{
		Snapshots: []model.Snapshot{
			{AssetID: spy.ID, Price: spyPrice, PriceSats: spyInSats},
			{AssetID: btc.ID, Price: btcPrice, PriceSats: sats.PerBitcoin},
		},
	}

	result, publishErr := options.Publisher.Publish(text)

	if publishErr != nil {
		log.WithError(publishErr).Error("publish failed")
	} else {
		log.WithField("external_id", result.ID).Info("post published")
		record.Announcement = &model.Announcement{
			ExternalID: result.ID,
			Content:    text,
			Data:       data,
		}
	}

	if err := options.History.SaveRun(record); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	if publishErr != nil {
		return fmt.Errorf("publish: %w", publishErr)
	}

	return nil
}

// computeWindow folds a zero baseline into "no baseline" for that window
// only, so one bad window never blocks the other or the publish step.
func computeWindow(log *logrus.Logger, window string, current int64, baseline *model.Snapshot) model.WindowChange {
	result, err := change.Compute(current, baseline)

	if err != nil {
		log.WithError(err).WithField("window", window).Warn("baseline unusable")

		return model.WindowChange{}
	}

	if !result.Available {
		return model.WindowChange{}
	}

	return model.WindowChange{
		Available:  true,
		Percent:    result.Percent,
		Symbol:     result.Symbol,
		Difference: result.Difference,
	}
}
