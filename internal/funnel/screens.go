package funnel

import (
	"regexp"
	"strconv"

	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// Screen describes what one step collects and what happens when it is
// submitted.
type Screen struct {
	Step int

	// Gate is the yes/no field that opts the user into the screen's
	// questions. Empty when the screen always asks.
	Gate string

	// ResetOnDecline lists fields cleared when the gate is declined.
	ResetOnDecline []string

	// Validate returns field errors for the record. Gated screens only
	// validate after the gate is accepted.
	Validate func(rec types.FormRecord) map[string]string

	// Apply returns extra fields written after validation passes.
	Apply func(rec types.FormRecord) types.FormRecord

	// Consent returns the consent event logged on a successful submit.
	// disclosure is the region's TCPA text.
	Consent func(rec types.FormRecord, disclosure string) (consentType, text string)
}

// Evaluate runs the gate and validation. declined is true when a gated
// screen was answered "no".
func (s Screen) Evaluate(rec types.FormRecord) (errs map[string]string, declined bool) {
	if s.Gate != "" {
		accepted, ok := rec.Bool(s.Gate)
		if !ok {
			return map[string]string{s.Gate: "Please select an option"}, false
		}
		if !accepted {
			return nil, true
		}
	}
	if s.Validate == nil {
		return nil, false
	}
	errs = s.Validate(rec)
	if len(errs) == 0 {
		return nil, false
	}
	return errs, false
}

// requireFields adds message for each field in pairs that is not filled.
func requireFields(rec types.FormRecord, errs map[string]string, pairs ...string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		if !rec.Filled(pairs[i]) {
			errs[pairs[i]] = pairs[i+1]
		}
	}
}

func fixedConsent(consentType, text string) func(types.FormRecord, string) (string, string) {
	return func(types.FormRecord, string) (string, string) {
		return consentType, text
	}
}

// leadingInt parses the digits at the start of s, so "65-70" reads as 65.
func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}

// IsOver65 reports whether the age bracket starts at 65 or above.
func IsOver65(rec types.FormRecord) bool {
	n, ok := leadingInt(rec.String("age"))
	return ok && n >= 65
}

// Screens returns the submit behavior for steps 1 through 11. The final
// step has no submit.
func Screens() map[int]Screen {
	return map[int]Screen{
		types.StepInitial: {
			Step:     types.StepInitial,
			Validate: validateInitial,
			Apply: func(rec types.FormRecord) types.FormRecord {
				consent, ok := rec.Bool("tcpaConsent")
				if !ok {
					consent = true
				}
				return types.FormRecord{
					"tcpaConsent":    consent,
					"phone":          RawPhoneNumber(rec.String("phone")),
					"formattedPhone": FormatPhoneNumber(rec.String("phone")),
				}
			},
			Consent: func(_ types.FormRecord, disclosure string) (string, string) {
				return "initial_form_submit", disclosure
			},
		},
		types.StepVerification: {
			Step: types.StepVerification,
			Validate: func(rec types.FormRecord) map[string]string {
				errs := map[string]string{}
				requireFields(rec, errs,
					"address", "Address is required",
					"city", "City is required",
					"state", "State is required")
				return errs
			},
		},
		types.StepJobQualifier: {
			Step: types.StepJobQualifier,
			Validate: func(rec types.FormRecord) map[string]string {
				errs := map[string]string{}
				requireFields(rec, errs,
					"employmentStatus", "Please select your current employment status",
					"desiredIndustry", "Please select your desired industry",
					"experienceLevel", "Please select your experience level")
				return errs
			},
		},
		types.StepAutoInsurance: {
			Step: types.StepAutoInsurance,
			Gate: "wantsInsuranceSavings",
			Validate: func(rec types.FormRecord) map[string]string {
				errs := map[string]string{}
				insured, ok := rec.Bool("hasAutoInsurance")
				if !ok {
					errs["hasAutoInsurance"] = "Please select an option"
				}
				if insured && !rec.Filled("insuranceProvider") {
					errs["insuranceProvider"] = "Please select your current provider"
				}
				requireFields(rec, errs, "lastCompared", "Please select when you last compared rates")
				return errs
			},
			Consent: fixedConsent("insurance_quote_request", "User requested auto insurance quotes"),
		},
		types.StepCreditCardDebt: {
			Step: types.StepCreditCardDebt,
			Gate: "hasDebt",
			ResetOnDecline: []string{
				"creditCardDebt", "cardCount", "interestRates", "minimumPayments", "missedPayments",
			},
			Validate: func(rec types.FormRecord) map[string]string {
				errs := map[string]string{}
				requireFields(rec, errs,
					"creditCardDebt", "Please enter your credit card debt amount",
					"cardCount", "Please select the number of cards")
				return errs
			},
			Consent: fixedConsent("debt_relief_request", "User requested debt relief information"),
		},
		types.StepPersonalLoans: {
			Step: types.StepPersonalLoans,
			Gate: "wantsPersonalLoan",
			Validate: func(rec types.FormRecord) map[string]string {
				errs := map[string]string{}
				requireFields(rec, errs,
					"loanAmount", "Please select a loan amount",
					"loanPurpose", "Please select a loan purpose",
					"creditScoreRange", "Please select your credit score range")
				return errs
			},
			Consent: fixedConsent("personal_loan_request", "User requested personal loan information"),
		},
		types.StepGovernmentBenefits: {
			Step: types.StepGovernmentBenefits,
			Validate: func(rec types.FormRecord) map[string]string {
				errs := map[string]string{}
				requireFields(rec, errs,
					"householdSize", "Please select your household size",
					"annualIncome", "Please select your annual income range")
				return errs
			},
			Consent: fixedConsent("government_benefits_check", "User checked eligibility for government benefits"),
		},
		types.StepHealthcare: {
			Step:     types.StepHealthcare,
			Validate: validateHealthcare,
			Consent: func(rec types.FormRecord, _ string) (string, string) {
				if IsOver65(rec) {
					return "medicare_request", "User requested Medicare information"
				}
				return "aca_health_insurance_request", "User requested ACA health insurance information"
			},
		},
		types.StepDisability: {
			Step: types.StepDisability,
			Gate: "hasDisability",
			Validate: func(rec types.FormRecord) map[string]string {
				errs := map[string]string{}
				requireFields(rec, errs,
					"conditionType", "Please select your condition type",
					"conditionDuration", "Please select how long you've had the condition")
				return errs
			},
			Consent: fixedConsent("disability_assistance_request", "User requested disability assistance information"),
		},
		types.StepTaxRelief: {
			Step: types.StepTaxRelief,
			Gate: "hasTaxDebt",
			Validate: func(rec types.FormRecord) map[string]string {
				errs := map[string]string{}
				requireFields(rec, errs,
					"taxDebtAmount", "Please select your tax debt amount",
					"taxYearsOwed", "Please select the years you owe taxes")
				return errs
			},
			Consent: fixedConsent("tax_relief_request", "User requested tax relief information"),
		},
		types.StepCellPhoneSavings: {
			Step: types.StepCellPhoneSavings,
			Gate: "wantsPhoneSavings",
			Validate: func(rec types.FormRecord) map[string]string {
				errs := map[string]string{}
				requireFields(rec, errs,
					"currentPhoneProvider", "Please select your current provider",
					"monthlyPhoneBill", "Please select your monthly bill amount")
				return errs
			},
			Consent: fixedConsent("cell_phone_savings_request", "User requested cell phone savings information"),
		},
	}
}

func validateInitial(rec types.FormRecord) map[string]string {
	errs := map[string]string{}
	requireFields(rec, errs,
		"firstName", "First name is required",
		"lastName", "Last name is required")

	if !rec.Filled("email") {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(rec.String("email")) {
		errs["email"] = "Email is invalid"
	}

	if !rec.Filled("phone") {
		errs["phone"] = "Phone number is required"
	} else if !IsValidPhoneNumber(rec.String("phone")) {
		errs["phone"] = "Phone number must be 10 digits"
	}

	if !rec.Filled("zipCode") {
		errs["zipCode"] = "ZIP code is required"
	} else if !zipPattern.MatchString(rec.String("zipCode")) {
		errs["zipCode"] = "ZIP code is invalid"
	}

	if consent, ok := rec.Bool("tcpaConsent"); ok && !consent {
		errs["tcpaConsent"] = "You must agree to the terms"
	}
	return errs
}

func validateHealthcare(rec types.FormRecord) map[string]string {
	errs := map[string]string{}
	requireFields(rec, errs, "age", "Please select your age")

	if IsOver65(rec) {
		requireFields(rec, errs, "medicareStatus", "Please select your Medicare status")
		return errs
	}
	requireFields(rec, errs, "healthcareZipCode", "Please enter your ZIP code")
	if !rec.Filled("householdSize") && !rec.Filled("healthcareHouseholdSize") {
		errs["healthcareHouseholdSize"] = "Please select your household size"
	}
	return errs
}
