package feedback

import (
	"testing"

	"daily-report-go/internal/types"
)

func TestGenerate(t *testing.T) {
	v := types.Verdict{
		FieldStatus: map[types.Field]types.FieldStatus{
			types.FieldCalls:  types.StatusOk,
			types.FieldKPPlus: types.StatusWarning,
			types.FieldKP:     types.StatusInvalid,
		},
	}
	card := Generate(types.Summary{ConversionPercent: 20, Tier: types.TierHigh}, v)

	if card.Conversion != "20%" {
		t.Errorf("Conversion = %q, want 20%%", card.Conversion)
	}
	if card.Color != ColorGreen {
		t.Errorf("Color = %q, want %q", card.Color, ColorGreen)
	}
	want := map[string]string{
		"callsCount": ColorNeutral,
		"kpPlus":     ColorOrange,
		"kp":         ColorRed,
		"rejections": ColorNeutral,
		"inadequate": ColorNeutral,
	}
	for field, color := range want {
		if got := card.Borders[field]; got != color {
			t.Errorf("Borders[%s] = %q, want %q", field, got, color)
		}
	}
}

func TestTierColors(t *testing.T) {
	cases := []struct {
		tier types.ConversionTier
		want string
	}{
		{types.TierHigh, ColorGreen},
		{types.TierMedium, ColorOrange},
		{types.TierLow, ColorRed},
	}
	for _, c := range cases {
		card := Generate(types.Summary{Tier: c.tier}, types.Verdict{})
		if card.Color != c.want {
			t.Errorf("tier %s: color %q, want %q", c.tier, card.Color, c.want)
		}
		if card.Hint == "" {
			t.Errorf("tier %s: empty hint", c.tier)
		}
	}
}
