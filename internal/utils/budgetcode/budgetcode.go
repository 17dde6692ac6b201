// Package budgetcode composes and parses the 11-part unique transaction code.
// External systems (treasury export among them) key off the exact composition,
// so the widths and ordering here must never change within a fiscal year.
package budgetcode

import (
	"fmt"
	"strings"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
)

// Separator joins the code parts on the wire.
const Separator = "-"

// Fixed zero-padded width of each part, in composition order.
var partWidths = [11]int{2, 2, 2, 8, 4, 4, 4, 6, 4, 8, 3}

var partNames = [11]string{
	"zone", "department", "section", "budget", "costCenter",
	"continuousActivity", "specialActivity", "beneficiary",
	"event", "date", "occurrence",
}

// Parts holds the raw components of a unique code. All values are numeric
// strings; Date is YYYYMMDD. Values shorter than their fixed width are
// zero-padded on composition.
type Parts struct {
	Zone               string `json:"zone"`
	Department         string `json:"department"`
	Section            string `json:"section"`
	Budget             string `json:"budget"`
	CostCenter         string `json:"costCenter"`
	ContinuousActivity string `json:"continuousActivity"`
	SpecialActivity    string `json:"specialActivity"`
	Beneficiary        string `json:"beneficiary"`
	Event              string `json:"event"`
	Date               string `json:"date"`
	Occurrence         string `json:"occurrence"`
}

func (p Parts) ordered() [11]string {
	return [11]string{
		p.Zone, p.Department, p.Section, p.Budget, p.CostCenter,
		p.ContinuousActivity, p.SpecialActivity, p.Beneficiary,
		p.Event, p.Date, p.Occurrence,
	}
}

// Compose builds the dash-joined, zero-padded unique code. Every part must be
// non-empty, numeric and no wider than its fixed width.
func Compose(p Parts) (string, error) {
	raw := p.ordered()
	padded := make([]string, len(raw))
	for i, v := range raw {
		if v == "" {
			return "", fmt.Errorf("%w: unique code part %s is empty", apperrors.ErrValidation, partNames[i])
		}
		if !isDigits(v) {
			return "", fmt.Errorf("%w: unique code part %s must be numeric, got %q", apperrors.ErrValidation, partNames[i], v)
		}
		if len(v) > partWidths[i] {
			return "", fmt.Errorf("%w: unique code part %s exceeds width %d, got %q", apperrors.ErrValidation, partNames[i], partWidths[i], v)
		}
		padded[i] = strings.Repeat("0", partWidths[i]-len(v)) + v
	}
	return strings.Join(padded, Separator), nil
}

// Parse splits a composed code back into its parts, validating widths.
func Parse(code string) (Parts, error) {
	segments := strings.Split(code, Separator)
	if len(segments) != len(partWidths) {
		return Parts{}, fmt.Errorf("%w: unique code must have %d parts, got %d", apperrors.ErrValidation, len(partWidths), len(segments))
	}
	for i, s := range segments {
		if len(s) != partWidths[i] || !isDigits(s) {
			return Parts{}, fmt.Errorf("%w: unique code part %s must be %d digits, got %q", apperrors.ErrValidation, partNames[i], partWidths[i], s)
		}
	}
	return Parts{
		Zone:               segments[0],
		Department:         segments[1],
		Section:            segments[2],
		Budget:             segments[3],
		CostCenter:         segments[4],
		ContinuousActivity: segments[5],
		SpecialActivity:    segments[6],
		Beneficiary:        segments[7],
		Event:              segments[8],
		Date:               segments[9],
		Occurrence:         segments[10],
	}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
