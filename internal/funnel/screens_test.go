package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

func TestScreens_CoverEverySubmittableStep(t *testing.T) {
	screens := Screens()
	for step := types.StepInitial; step < types.StepFinal; step++ {
		s, ok := screens[step]
		if assert.True(t, ok, "step %d", step) {
			assert.Equal(t, step, s.Step)
		}
	}
	assert.NotContains(t, screens, types.StepFinal)
}

func TestInitialScreen_EmailValidation(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"", "Email is required"},
		{"   ", "Email is required"},
		{"jane", "Email is invalid"},
		{"jane@example", "Email is invalid"},
		{"jane@example.com", ""},
	}

	screen := Screens()[types.StepInitial]
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			rec := validInitialFields()
			rec["email"] = tt.email
			errs, _ := screen.Evaluate(rec)
			assert.Equal(t, tt.want, errs["email"])
		})
	}
}

func TestInitialScreen_Fields(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
		want  string
	}{
		{"missing first name", "firstName", "", "First name is required"},
		{"missing last name", "lastName", " ", "Last name is required"},
		{"missing phone", "phone", "", "Phone number is required"},
		{"short phone", "phone", "555-1234", "Phone number must be 10 digits"},
		{"missing zip", "zipCode", "", "ZIP code is required"},
		{"short zip", "zipCode", "9021", "ZIP code is invalid"},
		{"zip plus four", "zipCode", "90210-1234", ""},
		{"declined terms", "tcpaConsent", false, "You must agree to the terms"},
		{"accepted terms", "tcpaConsent", true, ""},
	}

	screen := Screens()[types.StepInitial]
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validInitialFields()
			rec[tt.field] = tt.value
			errs, declined := screen.Evaluate(rec)
			assert.False(t, declined)
			assert.Equal(t, tt.want, errs[tt.field])
		})
	}
}

func TestInitialScreen_ApplyDefaultsConsent(t *testing.T) {
	applied := Screens()[types.StepInitial].Apply(validInitialFields())
	assert.Equal(t, true, applied["tcpaConsent"])
	assert.Equal(t, "5551234567", applied["phone"])
	assert.Equal(t, "(555) 123-4567", applied["formattedPhone"])
}

func TestGatedScreens(t *testing.T) {
	screens := Screens()

	tests := []struct {
		name     string
		step     int
		record   types.FormRecord
		wantErrs map[string]string
		declined bool
	}{
		{
			name:     "unanswered gate",
			step:     types.StepAutoInsurance,
			record:   types.FormRecord{},
			wantErrs: map[string]string{"wantsInsuranceSavings": "Please select an option"},
		},
		{
			name:     "declined gate",
			step:     types.StepAutoInsurance,
			record:   types.FormRecord{"wantsInsuranceSavings": false},
			declined: true,
		},
		{
			name:   "insured without provider",
			step:   types.StepAutoInsurance,
			record: types.FormRecord{"wantsInsuranceSavings": true, "hasAutoInsurance": true, "lastCompared": "never"},
			wantErrs: map[string]string{
				"insuranceProvider": "Please select your current provider",
			},
		},
		{
			name:   "uninsured needs no provider",
			step:   types.StepAutoInsurance,
			record: types.FormRecord{"wantsInsuranceSavings": true, "hasAutoInsurance": false, "lastCompared": "never"},
		},
		{
			name:   "debt amounts required",
			step:   types.StepCreditCardDebt,
			record: types.FormRecord{"hasDebt": true},
			wantErrs: map[string]string{
				"creditCardDebt": "Please enter your credit card debt amount",
				"cardCount":      "Please select the number of cards",
			},
		},
		{
			name:   "loan details required",
			step:   types.StepPersonalLoans,
			record: types.FormRecord{"wantsPersonalLoan": true, "loanAmount": "5000"},
			wantErrs: map[string]string{
				"loanPurpose":      "Please select a loan purpose",
				"creditScoreRange": "Please select your credit score range",
			},
		},
		{
			name:   "disability details",
			step:   types.StepDisability,
			record: types.FormRecord{"hasDisability": true},
			wantErrs: map[string]string{
				"conditionType":     "Please select your condition type",
				"conditionDuration": "Please select how long you've had the condition",
			},
		},
		{
			name:     "no tax debt",
			step:     types.StepTaxRelief,
			record:   types.FormRecord{"hasTaxDebt": false},
			declined: true,
		},
		{
			name:   "phone savings details",
			step:   types.StepCellPhoneSavings,
			record: types.FormRecord{"wantsPhoneSavings": true, "currentPhoneProvider": "att"},
			wantErrs: map[string]string{
				"monthlyPhoneBill": "Please select your monthly bill amount",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, declined := screens[tt.step].Evaluate(tt.record)
			assert.Equal(t, tt.declined, declined)
			if len(tt.wantErrs) == 0 {
				assert.Empty(t, errs)
			} else {
				assert.Equal(t, tt.wantErrs, errs)
			}
		})
	}
}

func TestHealthcareScreen(t *testing.T) {
	screen := Screens()[types.StepHealthcare]

	errs, _ := screen.Evaluate(types.FormRecord{})
	assert.Equal(t, "Please select your age", errs["age"])
	assert.Contains(t, errs, "healthcareZipCode")

	errs, _ = screen.Evaluate(types.FormRecord{"age": "26-35", "healthcareZipCode": "90210", "householdSize": "2"})
	assert.Empty(t, errs)

	errs, _ = screen.Evaluate(types.FormRecord{"age": "26-35", "healthcareZipCode": "90210"})
	assert.Equal(t, map[string]string{"healthcareHouseholdSize": "Please select your household size"}, errs)

	errs, _ = screen.Evaluate(types.FormRecord{"age": "65-70"})
	assert.Equal(t, map[string]string{"medicareStatus": "Please select your Medicare status"}, errs)

	typ, text := screen.Consent(types.FormRecord{"age": "71-75"}, "")
	assert.Equal(t, "medicare_request", typ)
	assert.Equal(t, "User requested Medicare information", text)

	typ, text = screen.Consent(types.FormRecord{"age": "36-45"}, "")
	assert.Equal(t, "aca_health_insurance_request", typ)
	assert.Equal(t, "User requested ACA health insurance information", text)
}

func TestIsOver65(t *testing.T) {
	tests := []struct {
		age  string
		want bool
	}{
		{"", false},
		{"18-25", false},
		{"56-64", false},
		{"65-70", true},
		{"76+", true},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.age, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOver65(types.FormRecord{"age": tt.age}))
		})
	}
}

func TestRequireFields(t *testing.T) {
	errs := map[string]string{}
	rec := types.FormRecord{"address": "1 Main St", "city": ""}
	requireFields(rec, errs,
		"address", "Address is required",
		"city", "City is required",
		"state", "State is required")
	assert.Equal(t, map[string]string{
		"city":  "City is required",
		"state": "State is required",
	}, errs)
}
