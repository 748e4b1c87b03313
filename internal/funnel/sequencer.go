package funnel

import "github.com/mesh-intelligence/leadfunnel/pkg/types"

// highDebtThreshold is the credit-card balance at which the debt branch fires.
const highDebtThreshold = 10000

var seniorAgeBrackets = map[string]bool{
	"65-70": true,
	"71-75": true,
	"76+":   true,
}

var lowIncomeBrackets = map[string]bool{
	"0_15000":     true,
	"15000_30000": true,
	"30000_45000": true,
}

// NextStep maps the current step and the record collected so far to the
// step that follows. The result is not clamped; callers keep it in range.
func NextStep(current int, record types.FormRecord) int {
	next := current + 1

	switch current {
	case types.StepCreditCardDebt:
		// Both arms lead to personal loans. Kept as observed.
		if debt, ok := record.Number("creditCardDebt"); ok && debt >= highDebtThreshold {
			next = types.StepPersonalLoans
		} else {
			next = types.StepPersonalLoans
		}
	case types.StepGovernmentBenefits:
		if seniorAgeBrackets[record.String("age")] {
			next = types.StepHealthcare
		} else if lowIncomeBrackets[record.String("annualIncome")] {
			next = types.StepHealthcare
		}
	}

	return next
}

// PrevStep returns the step before current. It does not clamp.
func PrevStep(current int) int {
	return current - 1
}
