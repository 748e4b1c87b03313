package types

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Field kinds determine what values a form field accepts.
const (
	KindText    = "text"
	KindBoolean = "boolean"
	KindNumber  = "number"
	KindList    = "list"
)

// FieldKinds declares the kind of every field a funnel screen writes.
// Fields not listed here are accepted with any kind.
var FieldKinds = map[string]string{
	// Contact and address.
	"firstName":      KindText,
	"lastName":       KindText,
	"email":          KindText,
	"phone":          KindText,
	"formattedPhone": KindText,
	"zipCode":        KindText,
	"address":        KindText,
	"city":           KindText,
	"state":          KindText,
	"tcpaConsent":    KindBoolean,

	// Job qualifier.
	"employmentStatus":   KindText,
	"desiredIndustry":    KindText,
	"experienceLevel":    KindText,
	"educationLevel":     KindText,
	"timeline":           KindText,
	"salaryExpectations": KindText,
	"resumeStatus":       KindText,
	"jobChallenges":      KindList,

	// Auto insurance.
	"wantsInsuranceSavings":     KindBoolean,
	"hasAutoInsurance":          KindBoolean,
	"insuranceProvider":         KindText,
	"lastCompared":              KindText,
	"vehicleYear":               KindText,
	"vehicleCount":              KindNumber,
	"vehicleDetails":            KindText,
	"accidentsInLastThreeYears": KindBoolean,

	// Credit-card debt.
	"hasDebt":         KindBoolean,
	"creditCardDebt":  KindNumber,
	"cardCount":       KindNumber,
	"creditScore":     KindText,
	"homeownerStatus": KindText,
	"interestRates":   KindText,
	"minimumPayments": KindNumber,
	"missedPayments":  KindBoolean,

	// Personal loans.
	"wantsPersonalLoan": KindBoolean,
	"loanAmount":        KindText,
	"loanPurpose":       KindText,
	"creditScoreRange":  KindText,
	"monthlyIncome":     KindText,

	// Government benefits and healthcare.
	"householdSize":           KindText,
	"annualIncome":            KindText,
	"age":                     KindText,
	"healthcareZipCode":       KindText,
	"healthcareHouseholdSize": KindText,
	"healthcareIncome":        KindText,
	"medicareStatus":          KindText,

	// Disability, tax relief, cell phone.
	"hasDisability":        KindBoolean,
	"conditionType":        KindText,
	"conditionDuration":    KindText,
	"previousApplication":  KindText,
	"hasTaxDebt":           KindBoolean,
	"taxDebtAmount":        KindText,
	"taxYearsOwed":         KindText,
	"filedAllReturns":      KindText,
	"wantsPhoneSavings":    KindBoolean,
	"currentPhoneProvider": KindText,
	"monthlyPhoneBill":     KindText,

	// Bookkeeping.
	"formCompleted": KindBoolean,
	"sessionId":     KindText,
	"lastUpdated":   KindText,
}

// Form record errors.
var (
	ErrInvalidFieldName  = errors.New("invalid field name")
	ErrInvalidFieldValue = errors.New("unsupported field value")
	ErrTypeMismatch      = errors.New("type mismatch")
)

// FormRecord maps field names to user-entered values: strings, booleans,
// float64 numbers, string lists, or nil for a reset value.
type FormRecord map[string]any

// DefaultFormRecord returns the record a fresh funnel starts from.
func DefaultFormRecord() FormRecord {
	return FormRecord{
		"firstName": "",
		"lastName":  "",
		"email":     "",
		"phone":     "",
		"zipCode":   "",
	}
}

// Clone returns a shallow copy; list values are copied.
func (r FormRecord) Clone() FormRecord {
	out := make(FormRecord, len(r))
	for k, v := range r {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}

// String returns the field as a string. Numbers are formatted; other kinds
// and missing fields yield "".
func (r FormRecord) String(name string) string {
	switch v := r[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Bool returns the boolean value of a field and whether it is set to a boolean.
func (r FormRecord) Bool(name string) (value bool, ok bool) {
	value, ok = r[name].(bool)
	return value, ok
}

// Number returns the numeric value of a field. Numeric strings are parsed.
func (r FormRecord) Number(name string) (float64, bool) {
	switch v := r[name].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Filled reports whether a field holds a non-empty value: a non-blank
// string, any boolean, any number, or a non-empty list.
func (r FormRecord) Filled(name string) bool {
	switch v := r[name].(type) {
	case string:
		return strings.TrimSpace(v) != ""
	case bool, float64:
		return true
	case []string:
		return len(v) > 0
	default:
		return false
	}
}

// NormalizeValue checks value against the declared kind of field name and
// returns it in canonical form. Integers become float64, numeric strings are
// accepted for number fields, "yes"/"no" for boolean fields, and []any of
// strings becomes []string. nil is always accepted as a reset.
func NormalizeValue(name string, value any) (any, error) {
	if name == "" {
		return nil, ErrInvalidFieldName
	}
	if value == nil {
		return nil, nil
	}
	v, err := canonical(value)
	if err != nil {
		return nil, err
	}
	kind, known := FieldKinds[name]
	if !known {
		return v, nil
	}
	switch kind {
	case KindText:
		if _, ok := v.(string); ok {
			return v, nil
		}
	case KindBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			if parsed, ok := parseBool(b); ok {
				return parsed, nil
			}
		}
	case KindNumber:
		switch n := v.(type) {
		case float64:
			return n, nil
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f, nil
			}
		}
	case KindList:
		if _, ok := v.([]string); ok {
			return v, nil
		}
	}
	return nil, ErrTypeMismatch
}

// ParseFieldValue converts a raw command-line or form string into the kind
// declared for name. Lists are comma separated. Unknown fields stay strings.
func ParseFieldValue(name, raw string) (any, error) {
	switch FieldKinds[name] {
	case KindBoolean:
		b, ok := parseBool(raw)
		if !ok {
			return nil, ErrTypeMismatch
		}
		return b, nil
	case KindNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, ErrTypeMismatch
		}
		return f, nil
	case KindList:
		if strings.TrimSpace(raw) == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	default:
		return raw, nil
	}
}

func canonical(value any) (any, error) {
	switch v := value.(type) {
	case string, bool, float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, ErrInvalidFieldValue
		}
		return f, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, ErrInvalidFieldValue
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, ErrInvalidFieldValue
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on":
		return true, true
	case "false", "no", "n", "0", "off":
		return false, true
	default:
		return false, false
	}
}
