package feedback

import (
	"fmt"

	"daily-report-go/internal/types"
)

// Palette used by the form.
const (
	ColorGreen   = "#34c759"
	ColorOrange  = "#ff9500"
	ColorRed     = "#ff3b30"
	ColorNeutral = "#e0e0e0"
)

type Card struct {
	Conversion string            `json:"conversion"`
	Color      string            `json:"color"`
	Hint       string            `json:"hint"`
	Borders    map[string]string `json:"borders"`
}

// Generate maps a summary and verdict onto display hints.
func Generate(s types.Summary, v types.Verdict) Card {
	card := Card{
		Conversion: fmt.Sprintf("%d%%", s.ConversionPercent),
		Borders:    make(map[string]string, len(types.Fields)),
	}
	switch s.Tier {
	case types.TierHigh:
		card.Color = ColorGreen
		card.Hint = "Отличная конверсия"
	case types.TierMedium:
		card.Color = ColorOrange
		card.Hint = "Конверсия в норме"
	default:
		card.Color = ColorRed
		card.Hint = "Низкая конверсия"
	}
	for _, f := range types.Fields {
		card.Borders[string(f)] = FieldColor(v.Status(f))
	}
	return card
}

// FieldColor is the input border color for a field status.
func FieldColor(s types.FieldStatus) string {
	switch s {
	case types.StatusInvalid:
		return ColorRed
	case types.StatusWarning:
		return ColorOrange
	}
	return ColorNeutral
}
