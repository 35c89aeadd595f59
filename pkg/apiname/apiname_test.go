package apiname

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		label    string
		expected string
	}{
		{"Birth Plan", "birth_plan"},
		{"Emergency Box", "emergency_box"},
		{"Client", "client"},
		{"  Referral  Partner  ", "referral_partner"},
		{"Due-Date (Estimated)", "due_date_estimated"},
		{"Postpartum Visit #2", "postpartum_visit_2"},
		{"!!!", ""},
		{"", ""},
		{"123 Plan", "plan"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Generate(tt.label), "label %q", tt.label)
	}
}

func TestGenerate_OutputShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	labels := []string{
		"Birth Plan", "A", "z9", "Weird---Label", "Ünicode Läbel", "42", "_hidden_",
	}
	for _, label := range labels {
		got := Generate(label)
		if got == "" {
			continue
		}
		assert.True(t, pattern.MatchString(got), "generated %q from %q does not match pattern", got, label)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("birth_plan"))
	assert.NoError(t, Validate("BirthPlan__c"))
	assert.NoError(t, Validate("a1_b2"))

	assert.Error(t, Validate(""))
	assert.Error(t, Validate("1plan"))
	assert.Error(t, Validate("_plan"))
	assert.Error(t, Validate("birth plan"))
	assert.Error(t, Validate("plan-b"))
}

func TestWithCustomSuffix(t *testing.T) {
	assert.Equal(t, "birth_plan__c", WithCustomSuffix("birth_plan"))
	assert.Equal(t, "birth_plan__c", WithCustomSuffix("birth_plan__c"))
	assert.Equal(t, "", WithCustomSuffix(""))

	assert.Equal(t, "birth_plan", StripCustomSuffix("birth_plan__c"))
	assert.Equal(t, "birth_plan", StripCustomSuffix("birth_plan"))
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		label    string
		expected string
	}{
		{"Birth Plan", "Birth Plans"},
		{"Emergency Box", "Emergency Boxes"},
		{"Class", "Classes"},
		{"Church", "Churches"},
		{"Wish", "Wishes"},
		{"Quiz", "Quizes"},
		{"Delivery", "Deliveries"},
		{"Survey", "Surveys"},
		{"Client", "Clients"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Pluralize(tt.label), "label %q", tt.label)
	}
}
