package budgetcode_test

import (
	"testing"

	"github.com/shahrfin/municipal_budget_app/internal/utils/budgetcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParts() budgetcode.Parts {
	return budgetcode.Parts{
		Zone:               "3",
		Department:         "12",
		Section:            "7",
		Budget:             "10203",
		CostCenter:         "44",
		ContinuousActivity: "5",
		SpecialActivity:    "118",
		Beneficiary:        "90012",
		Event:              "21",
		Date:               "20240611",
		Occurrence:         "2",
	}
}

func TestComposeZeroPadsEveryPart(t *testing.T) {
	code, err := budgetcode.Compose(validParts())
	require.NoError(t, err)
	assert.Equal(t, "03-12-07-00010203-0044-0005-0118-090012-0021-20240611-002", code)
}

func TestComposeParseRoundTrip(t *testing.T) {
	code, err := budgetcode.Compose(validParts())
	require.NoError(t, err)

	parts, err := budgetcode.Parse(code)
	require.NoError(t, err)

	// Round-tripping the parsed (padded) parts must yield the same code.
	again, err := budgetcode.Compose(parts)
	require.NoError(t, err)
	assert.Equal(t, code, again)
}

func TestComposeRejectsBadParts(t *testing.T) {
	p := validParts()
	p.Zone = ""
	_, err := budgetcode.Compose(p)
	assert.Error(t, err)

	p = validParts()
	p.Beneficiary = "12AB"
	_, err = budgetcode.Compose(p)
	assert.Error(t, err)

	p = validParts()
	p.Occurrence = "1234" // width 3
	_, err = budgetcode.Compose(p)
	assert.Error(t, err)
}

func TestParseRejectsMalformedCodes(t *testing.T) {
	_, err := budgetcode.Parse("01-02-03")
	assert.Error(t, err)

	// Wrong width in one segment.
	_, err = budgetcode.Parse("3-12-07-00010203-0044-0005-0118-090012-0021-20240611-002")
	assert.Error(t, err)

	// Non-numeric segment.
	_, err = budgetcode.Parse("0a-12-07-00010203-0044-0005-0118-090012-0021-20240611-002")
	assert.Error(t, err)
}
