package run

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spysats/spysats/internal/compose"
	"github.com/spysats/spysats/internal/feed"
	"github.com/spysats/spysats/internal/history"
	"github.com/spysats/spysats/internal/model"
)

type fakeCrypto struct {
	price decimal.Decimal
	err   error
}

func (source *fakeCrypto) SpotPrice(product string) (decimal.Decimal, error) {
	return source.price, source.err
}

type fakeEquity struct {
	price decimal.Decimal
	err   error
}

func (source *fakeEquity) Quote(symbol string) (decimal.Decimal, error) {
	return source.price, source.err
}

type fakePublisher struct {
	result feed.Result
	err    error
	texts  []string
}

func (publisher *fakePublisher) Publish(text string) (feed.Result, error) {
	publisher.texts = append(publisher.texts, text)

	return publisher.result, publisher.err
}

type fakeHistory struct {
	latest           *model.Snapshot
	nearest          *model.Snapshot
	nearestTarget    time.Time
	nearestTolerance time.Duration
	saved            []history.RunRecord
}

func (store *fakeHistory) EnsureAssets(tickers []string) error {
	return nil
}

func (store *fakeHistory) Asset(ticker string) (model.Asset, error) {
	if ticker == BitcoinTicker {
		return model.Asset{ID: 1, Ticker: ticker}, nil
	}

	return model.Asset{ID: 2, Ticker: ticker}, nil
}

func (store *fakeHistory) Latest(assetID int) (*model.Snapshot, error) {
	return store.latest, nil
}

func (store *fakeHistory) NearestTo(assetID int, target time.Time, tolerance time.Duration) (*model.Snapshot, error) {
	store.nearestTarget = target
	store.nearestTolerance = tolerance

	return store.nearest, nil
}

func (store *fakeHistory) SaveRun(record history.RunRecord) error {
	store.saved = append(store.saved, record)

	return nil
}

func testComposer(t *testing.T) *compose.Composer {
	t.Helper()
	composer, err := compose.Load("../../template/post.tmpl")

	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	return composer
}

var fixedTime = time.Date(2023, 4, 2, 13, 0, 0, 0, time.UTC)

// runOptions returns a working setup: BTC at $25,000 gives 4,000 sats per
// dollar, and SPY at $0.275 lands on exactly 1,100 sats.
func runOptions(t *testing.T, store *fakeHistory, publisher *fakePublisher) Options {
	return Options{
		Crypto:    &fakeCrypto{price: decimal.RequireFromString("25000")},
		Equity:    &fakeEquity{price: decimal.RequireFromString("0.275")},
		History:   store,
		Composer:  testComposer(t),
		Publisher: publisher,
		Now:       func() time.Time { return fixedTime },
	}
}

func TestRunWithHourlyBaseline(t *testing.T) {
	store := &fakeHistory{
		latest: &model.Snapshot{
			ID:        1,
			AssetID:   2,
			PriceSats: 1000,
			Timestamp: fixedTime.Add(-time.Hour),
		},
	}
	publisher := &fakePublisher{result: feed.Result{ID: "42"}}

	if err := Run(runOptions(t, store, publisher)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("SaveRun called %d times, want 1", len(store.saved))
	}

	record := store.saved[0]

	if record.Announcement == nil {
		t.Fatal("no announcement recorded for a published post")
	}

	hourly := record.Announcement.Data.Hourly

	if !hourly.Available {
		t.Fatal("hourly window unavailable, want available")
	}
	if hourly.Symbol != "+" || hourly.Difference != 100 || hourly.Percent != "10.00" {
		t.Errorf("hourly = %+v, want +100 sats at 10.00%%", hourly)
	}

	if record.Announcement.Data.Daily.Available {
		t.Error("daily window available without a daily baseline")
	}

	if record.Announcement.ExternalID != "42" {
		t.Errorf("ExternalID = %q, want %q", record.Announcement.ExternalID, "42")
	}
}

func TestRunSnapshots(t *testing.T) {
	store := &fakeHistory{}
	publisher := &fakePublisher{result: feed.Result{ID: "42"}}

	if err := Run(runOptions(t, store, publisher)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	snapshots := store.saved[0].Snapshots

	if len(snapshots) != 2 {
		t.Fatalf("saved %d snapshots, want 2", len(snapshots))
	}

	if snapshots[0].AssetID != 2 || snapshots[0].PriceSats != 1100 {
		t.Errorf("equity snapshot = %+v, want asset 2 at 1100 sats", snapshots[0])
	}

	// The bitcoin row always records one whole coin in sats.
	if snapshots[1].AssetID != 1 || snapshots[1].PriceSats != 100000000 {
		t.Errorf("bitcoin snapshot = %+v, want asset 1 at 100000000 sats", snapshots[1])
	}
}

func TestRunDailyWindowLookup(t *testing.T) {
	store := &fakeHistory{}
	publisher := &fakePublisher{result: feed.Result{ID: "42"}}

	if err := Run(runOptions(t, store, publisher)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if store.nearestTarget != fixedTime.Add(-DailyLookback) {
		t.Errorf("daily target = %v, want %v", store.nearestTarget, fixedTime.Add(-DailyLookback))
	}
	if store.nearestTolerance != DailyTolerance {
		t.Errorf("daily tolerance = %v, want %v", store.nearestTolerance, DailyTolerance)
	}
}

func TestRunWithoutAnyBaseline(t *testing.T) {
	store := &fakeHistory{}
	publisher := &fakePublisher{result: feed.Result{ID: "42"}}

	if err := Run(runOptions(t, store, publisher)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data := store.saved[0].Announcement.Data

	if data.Hourly.Available || data.Daily.Available {
		t.Errorf("windows = %+v / %+v, want both unavailable", data.Hourly, data.Daily)
	}
}

func TestRunWithZeroBaseline(t *testing.T) {
	store := &fakeHistory{
		latest: &model.Snapshot{ID: 1, AssetID: 2, PriceSats: 0},
		nearest: &model.Snapshot{
			ID:        2,
			AssetID:   2,
			PriceSats: 1100,
			Timestamp: fixedTime.Add(-DailyLookback),
		},
	}
	publisher := &fakePublisher{result: feed.Result{ID: "42"}}

	if err := Run(runOptions(t, store, publisher)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data := store.saved[0].Announcement.Data

	if data.Hourly.Available {
		t.Error("hourly window available with a zero baseline")
	}

	// The broken hourly baseline must not block the daily window.
	if !data.Daily.Available {
		t.Fatal("daily window unavailable, want available")
	}
	if data.Daily.Percent != "0.00" || data.Daily.Symbol != "+" {
		t.Errorf("daily = %+v, want an unchanged price", data.Daily)
	}
}

func TestRunPublishFailure(t *testing.T) {
	store := &fakeHistory{}
	publisher := &fakePublisher{err: errors.New("feed unavailable")}

	err := Run(runOptions(t, store, publisher))

	if err == nil {
		t.Fatal("Run did not surface the publish failure")
	}

	if len(store.saved) != 1 {
		t.Fatalf("SaveRun called %d times, want 1 despite the publish failure", len(store.saved))
	}

	if store.saved[0].Announcement != nil {
		t.Error("announcement recorded for a post that never reached the feed")
	}

	if len(store.saved[0].Snapshots) != 2 {
		t.Errorf("saved %d snapshots, want the full pair", len(store.saved[0].Snapshots))
	}
}

func TestRunQuoteFailure(t *testing.T) {
	store := &fakeHistory{}
	setup := runOptions(t, store, &fakePublisher{})
	setup.Equity = &fakeEquity{err: errors.New("provider down")}

	if err := Run(setup); err == nil {
		t.Fatal("Run did not fail for a missing quote")
	}

	if len(store.saved) != 0 {
		t.Error("SaveRun called after a quote failure")
	}
}
