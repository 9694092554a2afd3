package common

import (
	"fmt"

	"github.com/Rhymond/go-money"

	"github.com/ternarybob/barsi/internal/models"
)

const notAvailable = "N/A"

// FormatPrice renders a price in reais using the BRL currency format (R$1.234,56).
func FormatPrice(v models.Value) string {
	f, ok := v.Get()
	if !ok {
		return notAvailable
	}
	return money.NewFromFloat(f, money.BRL).Display()
}

// FormatCurrency renders an amount in reais, compacted to K/M/B above a thousand.
func FormatCurrency(v models.Value) string {
	f, ok := v.Get()
	if !ok {
		return notAvailable
	}
	switch {
	case f >= 1e9:
		return fmt.Sprintf("R$ %.2fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("R$ %.2fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("R$ %.2fK", f/1e3)
	default:
		return money.NewFromFloat(f, money.BRL).Display()
	}
}

// FormatMarketCap renders a market capitalization with one decimal and a T/B/M/K suffix.
func FormatMarketCap(v models.Value) string {
	f, ok := v.Get()
	if !ok {
		return notAvailable
	}
	switch {
	case f >= 1e12:
		return fmt.Sprintf("R$ %.1fT", f/1e12)
	case f >= 1e9:
		return fmt.Sprintf("R$ %.1fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("R$ %.1fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("R$ %.1fK", f/1e3)
	default:
		return money.NewFromFloat(f, money.BRL).Display()
	}
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(v models.Value) string {
	f, ok := v.Get()
	if !ok {
		return notAvailable
	}
	return fmt.Sprintf("%.2f%%", f)
}

// FormatChange renders a signed percentage change.
func FormatChange(v models.Value) string {
	f, ok := v.Get()
	if !ok {
		return notAvailable
	}
	if f > 0 {
		return fmt.Sprintf("+%.2f%%", f)
	}
	return fmt.Sprintf("%.2f%%", f)
}

// FormatRatio renders a plain multiple such as P/E.
func FormatRatio(v models.Value) string {
	f, ok := v.Get()
	if !ok {
		return notAvailable
	}
	return fmt.Sprintf("%.2f", f)
}
