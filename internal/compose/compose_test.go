package compose

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spysats/spysats/internal/model"
)

func TestRender(t *testing.T) {
	composer, err := Load("../../template/post.tmpl")

	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	text, err := composer.Render(model.PostData{
		SpyInSats: 1501516,
		Hourly: model.WindowChange{
			Available:  true,
			Percent:    "0.50",
			Symbol:     "+",
			Difference: 7500,
		},
		Daily: model.WindowChange{
			Available:  true,
			Percent:    "1.25",
			Symbol:     "-",
			Difference: 19000,
		},
		BtcPrice: decimal.RequireFromString("25000"),
		SpyPrice: decimal.RequireFromString("450.5"),
	})

	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := `SPY is worth 1501516 sats

1h: +0.50% (+7500 sats)
24h: -1.25% (-19000 sats)

BTC $25000 | SPY $450.5
`

	if text != want {
		t.Errorf("Render = %q, want %q", text, want)
	}
}

func TestRenderWithoutBaselines(t *testing.T) {
	composer, err := Load("../../template/post.tmpl")

	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	text, err := composer.Render(model.PostData{
		SpyInSats: 1501516,
		BtcPrice:  decimal.RequireFromString("25000"),
		SpyPrice:  decimal.RequireFromString("450.5"),
	})

	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.Contains(text, "1h: no baseline yet") {
		t.Errorf("Render missing the hourly fallback: %q", text)
	}
	if !strings.Contains(text, "24h: no baseline yet") {
		t.Errorf("Render missing the daily fallback: %q", text)
	}
}

func TestRenderLengthCap(t *testing.T) {
	composer, err := New(strings.Repeat("x", MaxLength+1))

	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := composer.Render(model.PostData{}); err != ErrTooLong {
		t.Errorf("Render returned %v, want ErrTooLong", err)
	}
}
