package types

// Funnel steps in presentation order.
const (
	StepInitial            = 1
	StepVerification       = 2
	StepJobQualifier       = 3
	StepAutoInsurance      = 4
	StepCreditCardDebt     = 5
	StepPersonalLoans      = 6
	StepGovernmentBenefits = 7
	StepHealthcare         = 8
	StepDisability         = 9
	StepTaxRelief          = 10
	StepCellPhoneSavings   = 11
	StepFinal              = 12
)

// TotalSteps is the number of screens in the funnel.
const TotalSteps = StepFinal

// stepNames maps each step to a short identifier used in logs and output.
var stepNames = map[int]string{
	StepInitial:            "initial",
	StepVerification:       "verification",
	StepJobQualifier:       "job_qualifier",
	StepAutoInsurance:      "auto_insurance",
	StepCreditCardDebt:     "credit_card_debt",
	StepPersonalLoans:      "personal_loans",
	StepGovernmentBenefits: "government_benefits",
	StepHealthcare:         "healthcare",
	StepDisability:         "disability_assistance",
	StepTaxRelief:          "tax_relief",
	StepCellPhoneSavings:   "cell_phone_savings",
	StepFinal:              "final",
}

// ValidStep reports whether step is within [1, TotalSteps].
func ValidStep(step int) bool {
	return step >= StepInitial && step <= TotalSteps
}

// StepName returns the identifier for step, or "unknown".
func StepName(step int) string {
	if name, ok := stepNames[step]; ok {
		return name
	}
	return "unknown"
}
