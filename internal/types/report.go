// internal/types/report.go
package types

import (
	"strings"
	"time"
)

// --------------------------------------------
// Payload handed to the host transport on submit
// --------------------------------------------
type Report struct {
	CallsCount   int    `json:"calls_count"`
	KPPlus       int    `json:"kp_plus"`
	KP           int    `json:"kp"`
	Rejections   int    `json:"rejections"`
	Inadequate   int    `json:"inadequate"`
	ReportDate   string `json:"report_date"` // YYYY-MM-DD
	EmployeeName string `json:"employee_name"`
}

// Resultative is the number of KP+ and KP calls.
func (r Report) Resultative() int {
	return r.KPPlus + r.KP
}

// --------------------------------------------
// Server-side confirmation of an accepted report
// --------------------------------------------
type Receipt struct {
	Report      Report    `json:"report"`
	Resultative int       `json:"resultative_calls"`
	Conversion  float64   `json:"conversion"` // percent, one decimal
	Updated     bool      `json:"updated"`    // an earlier report for the same day was replaced
	SubmittedAt time.Time `json:"submitted_at"`
}

// DateLayout is the ISO date format used for report_date.
const DateLayout = "2006-01-02"

// --------------------------------------------
// Identity supplied by the host platform
// --------------------------------------------
type Identity struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DefaultEmployeeName is shown when the host provides no user.
const DefaultEmployeeName = "Пользователь"

// FullName joins first and last name; nil or blank identities fall back
// to DefaultEmployeeName.
func (id *Identity) FullName() string {
	if id == nil {
		return DefaultEmployeeName
	}
	name := strings.TrimSpace(id.FirstName + " " + id.LastName)
	if name == "" {
		return DefaultEmployeeName
	}
	return name
}

// --------------------------------------------
// Submission lifecycle
// --------------------------------------------
type SubmissionState string

const (
	StateEditing    SubmissionState = "editing"
	StateSubmitting SubmissionState = "submitting"
	StateSuccess    SubmissionState = "success"
	StateError      SubmissionState = "error"
)
