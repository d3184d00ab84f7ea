package validator

import (
	"math"

	"daily-report-go/internal/types"
)

// User-facing reasons, matching the messages the bot sends back.
const (
	MsgInvalidNumber = "Некорректные данные. Все поля должны содержать числа."
	MsgNegative      = "Все значения должны быть положительными числами."
	MsgZeroCalls     = "Количество звонков не может быть равно 0."
	MsgOverflow      = "Количество результативных звонков не может превышать общее количество."
)

// ComputeVerdict checks fs against the submission rules. A field gets the
// status of the first rule it breaks:
//
//  1. not an integer or negative: invalid
//  2. zero calls: warning on calls
//  3. KP+ plus KP above a positive call count: warning on both
//
// The overflow rule looks at the coerced values the summary shows, so an
// empty KP next to an oversized KP+ still flags KP+.
func ComputeVerdict(fs types.FieldSet) types.Verdict {
	v := types.Verdict{FieldStatus: make(map[types.Field]types.FieldStatus, len(types.Fields)), FormValid: true}

	values := make(map[types.Field]int, len(types.Fields))
	for _, f := range types.Fields {
		n, err := types.ParseCount(fs.Get(f))
		if err != nil {
			n = 0
		}
		values[f] = n
		if err != nil || n < 0 {
			v.FieldStatus[f] = types.StatusInvalid
			v.FormValid = false
			continue
		}
		v.FieldStatus[f] = types.StatusOk
	}

	calls := values[types.FieldCalls]
	if v.FieldStatus[types.FieldCalls] == types.StatusOk && calls == 0 {
		v.FieldStatus[types.FieldCalls] = types.StatusWarning
		v.FormValid = false
	}

	if calls > 0 && exceeds(values[types.FieldKPPlus], values[types.FieldKP], calls) {
		for _, f := range []types.Field{types.FieldKPPlus, types.FieldKP} {
			if v.FieldStatus[f] == types.StatusOk {
				v.FieldStatus[f] = types.StatusWarning
			}
		}
		v.FormValid = false
	}
	return v
}

// Message returns the reason v blocks submission of fs, or "" when the
// form is valid. Rules are reported in precedence order.
func Message(fs types.FieldSet, v types.Verdict) string {
	if v.FormValid {
		return ""
	}
	for _, f := range types.Fields {
		if v.Status(f) != types.StatusInvalid {
			continue
		}
		if _, err := types.ParseCount(fs.Get(f)); err == nil {
			return MsgNegative
		}
		return MsgInvalidNumber
	}
	if v.Status(types.FieldCalls) == types.StatusWarning {
		return MsgZeroCalls
	}
	return MsgOverflow
}

// exceeds reports kpPlus+kp > calls without overflowing.
func exceeds(kpPlus, kp, calls int) bool {
	switch {
	case kp > 0 && kpPlus > math.MaxInt-kp:
		return true
	case kp < 0 && kpPlus < math.MinInt-kp:
		return false
	}
	return kpPlus+kp > calls
}
