package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

func TestNextStep(t *testing.T) {
	tests := []struct {
		name    string
		current int
		record  types.FormRecord
		want    int
	}{
		{"initial to verification", types.StepInitial, types.FormRecord{}, types.StepVerification},
		{"verification to job qualifier", types.StepVerification, types.FormRecord{}, types.StepJobQualifier},
		{"auto insurance to debt", types.StepAutoInsurance, types.FormRecord{}, types.StepCreditCardDebt},
		{"high debt goes to loans", types.StepCreditCardDebt, types.FormRecord{"creditCardDebt": 15000.0}, types.StepPersonalLoans},
		{"low debt goes to loans", types.StepCreditCardDebt, types.FormRecord{"creditCardDebt": 500.0}, types.StepPersonalLoans},
		{"debt as string", types.StepCreditCardDebt, types.FormRecord{"creditCardDebt": "10000"}, types.StepPersonalLoans},
		{"senior goes to healthcare", types.StepGovernmentBenefits, types.FormRecord{"age": "65-70"}, types.StepHealthcare},
		{"oldest bracket", types.StepGovernmentBenefits, types.FormRecord{"age": "76+"}, types.StepHealthcare},
		{"low income goes to healthcare", types.StepGovernmentBenefits, types.FormRecord{"annualIncome": "15000_30000"}, types.StepHealthcare},
		{"no rule matches", types.StepGovernmentBenefits, types.FormRecord{"age": "26-35", "annualIncome": "75000_plus"}, types.StepHealthcare},
		{"cell phone to final", types.StepCellPhoneSavings, types.FormRecord{}, types.StepFinal},
		{"final is not clamped", types.StepFinal, types.FormRecord{}, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStep(tt.current, tt.record))
		})
	}
}

func TestPrevStep(t *testing.T) {
	assert.Equal(t, 4, PrevStep(5))
	assert.Equal(t, 0, PrevStep(1), "PrevStep does not clamp")
}
