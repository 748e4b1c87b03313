package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   any
		want    any
		wantErr error
	}{
		{name: "text field accepts string", field: "firstName", value: "Jane", want: "Jane"},
		{name: "text field rejects bool", field: "firstName", value: true, wantErr: ErrTypeMismatch},
		{name: "boolean field accepts bool", field: "hasDebt", value: false, want: false},
		{name: "boolean field accepts yes", field: "hasAutoInsurance", value: "yes", want: true},
		{name: "boolean field rejects word", field: "hasDebt", value: "maybe", wantErr: ErrTypeMismatch},
		{name: "number field accepts int", field: "cardCount", value: 3, want: float64(3)},
		{name: "number field accepts numeric string", field: "creditCardDebt", value: "10000", want: float64(10000)},
		{name: "number field accepts json.Number", field: "cardCount", value: json.Number("2"), want: float64(2)},
		{name: "number field rejects text", field: "creditCardDebt", value: "lots", wantErr: ErrTypeMismatch},
		{name: "list field accepts []any of strings", field: "jobChallenges", value: []any{"resume", "salary"}, want: []string{"resume", "salary"}},
		{name: "list field rejects mixed list", field: "jobChallenges", value: []any{"resume", 1}, wantErr: ErrInvalidFieldValue},
		{name: "list field rejects string", field: "jobChallenges", value: "resume", wantErr: ErrTypeMismatch},
		{name: "nil resets any field", field: "cardCount", value: nil, want: nil},
		{name: "unknown field accepts number", field: "receivesSnap", value: 1, want: float64(1)},
		{name: "unknown field rejects map", field: "nested", value: map[string]any{"a": 1}, wantErr: ErrInvalidFieldValue},
		{name: "empty name rejected", field: "", value: "x", wantErr: ErrInvalidFieldName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeValue(tt.field, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFieldValue(t *testing.T) {
	v, err := ParseFieldValue("tcpaConsent", "no")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = ParseFieldValue("cardCount", " 4 ")
	require.NoError(t, err)
	assert.Equal(t, float64(4), v)

	v, err = ParseFieldValue("jobChallenges", "resume, interviews,,")
	require.NoError(t, err)
	assert.Equal(t, []string{"resume", "interviews"}, v)

	v, err = ParseFieldValue("age", "65-70")
	require.NoError(t, err)
	assert.Equal(t, "65-70", v)

	_, err = ParseFieldValue("hasDebt", "perhaps")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFormRecordAccessors(t *testing.T) {
	r := FormRecord{
		"firstName":      "Jane",
		"creditCardDebt": float64(12000),
		"cardCount":      "3",
		"hasDebt":        true,
		"jobChallenges":  []string{"resume"},
		"blank":          "   ",
	}

	assert.Equal(t, "Jane", r.String("firstName"))
	assert.Equal(t, "12000", r.String("creditCardDebt"))
	assert.Equal(t, "", r.String("missing"))

	n, ok := r.Number("cardCount")
	assert.True(t, ok)
	assert.Equal(t, float64(3), n)

	b, ok := r.Bool("hasDebt")
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = r.Bool("firstName")
	assert.False(t, ok)

	assert.True(t, r.Filled("jobChallenges"))
	assert.False(t, r.Filled("blank"))
	assert.False(t, r.Filled("missing"))
}

func TestFormRecordCloneIsIndependent(t *testing.T) {
	r := FormRecord{"jobChallenges": []string{"resume"}, "firstName": "Jane"}
	c := r.Clone()
	c["firstName"] = "Ann"
	c["jobChallenges"].([]string)[0] = "salary"

	assert.Equal(t, "Jane", r["firstName"])
	assert.Equal(t, []string{"resume"}, r["jobChallenges"])
}

func TestDefaultFormRecord(t *testing.T) {
	r := DefaultFormRecord()
	for _, k := range []string{"firstName", "lastName", "email", "phone", "zipCode"} {
		assert.Equal(t, "", r[k], k)
	}
	assert.Len(t, r, 5)
}

func TestStepNames(t *testing.T) {
	assert.True(t, ValidStep(StepInitial))
	assert.True(t, ValidStep(StepFinal))
	assert.False(t, ValidStep(0))
	assert.False(t, ValidStep(TotalSteps+1))
	assert.Equal(t, "healthcare", StepName(StepHealthcare))
	assert.Equal(t, "unknown", StepName(99))
}
