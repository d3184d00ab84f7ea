package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field identifies one of the five numeric report inputs.
type Field string

const (
	FieldCalls      Field = "callsCount"
	FieldKPPlus     Field = "kpPlus"
	FieldKP         Field = "kp"
	FieldRejections Field = "rejections"
	FieldInadequate Field = "inadequate"
)

// Fields lists the report inputs in form order.
var Fields = []Field{FieldCalls, FieldKPPlus, FieldKP, FieldRejections, FieldInadequate}

// Label returns the on-screen caption of the field.
func (f Field) Label() string {
	switch f {
	case FieldCalls:
		return "Звонки"
	case FieldKPPlus:
		return "КП+"
	case FieldKP:
		return "КП"
	case FieldRejections:
		return "Отказы"
	case FieldInadequate:
		return "Неадекв"
	}
	return string(f)
}

// Key is the field's name in the submitted report payload.
func (f Field) Key() string {
	switch f {
	case FieldCalls:
		return "calls_count"
	case FieldKPPlus:
		return "kp_plus"
	}
	return string(f)
}

// FieldSet holds the raw, unparsed form values exactly as typed.
type FieldSet struct {
	CallsCount string `json:"callsCount"`
	KPPlus     string `json:"kpPlus"`
	KP         string `json:"kp"`
	Rejections string `json:"rejections"`
	Inadequate string `json:"inadequate"`
}

func (fs FieldSet) Get(f Field) string {
	switch f {
	case FieldCalls:
		return fs.CallsCount
	case FieldKPPlus:
		return fs.KPPlus
	case FieldKP:
		return fs.KP
	case FieldRejections:
		return fs.Rejections
	case FieldInadequate:
		return fs.Inadequate
	}
	return ""
}

// With returns a copy of fs with f set to raw.
func (fs FieldSet) With(f Field, raw string) FieldSet {
	switch f {
	case FieldCalls:
		fs.CallsCount = raw
	case FieldKPPlus:
		fs.KPPlus = raw
	case FieldKP:
		fs.KP = raw
	case FieldRejections:
		fs.Rejections = raw
	case FieldInadequate:
		fs.Inadequate = raw
	}
	return fs
}

// UnmarshalJSON accepts each field as a string or a JSON number. Keys that
// are absent or null leave the current value in place.
func (fs *FieldSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	for _, f := range Fields {
		if v, ok := raw[string(f)]; ok && v != nil {
			*fs = fs.With(f, FieldValue(v))
		}
	}
	return nil
}

// FieldValue renders a decoded JSON value the way a form field would hold it.
// Numbers keep their literal text so 1.5 or 1e3 fail integer parsing.
func FieldValue(v interface{}) string {
	switch t := v.(type) {
	case json.Number:
		return t.String()
	case string:
		return t
	}
	return fmt.Sprint(v)
}

type ConversionTier string

const (
	TierHigh   ConversionTier = "high"
	TierMedium ConversionTier = "medium"
	TierLow    ConversionTier = "low"
)

type Summary struct {
	TotalCalls        int            `json:"total_calls"`
	ResultativeCalls  int            `json:"resultative_calls"`
	ConversionPercent int            `json:"conversion_percent"`
	Tier              ConversionTier `json:"conversion_tier"`
}

type FieldStatus string

const (
	StatusOk      FieldStatus = "ok"
	StatusInvalid FieldStatus = "invalid"
	StatusWarning FieldStatus = "warning"
)

type Verdict struct {
	FieldStatus map[Field]FieldStatus `json:"field_status"`
	FormValid   bool                  `json:"form_valid"`
}

// Status returns the status of f, treating an absent entry as ok.
func (v Verdict) Status(f Field) FieldStatus {
	if s, ok := v.FieldStatus[f]; ok {
		return s
	}
	return StatusOk
}

// ParseCount parses a raw field value as a base-10 integer. Surrounding
// whitespace is ignored; anything else that is not an integer is an error.
func ParseCount(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}
