package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/resume"
)

func TestValidateResumeDocument_ValidCanonical(t *testing.T) {
	doc := resume.EmptyDocument()
	doc.Basics.Name = "Ada"
	doc.Work = []resume.WorkEntry{{Company: "Acme", JobTitle: "Engineer", Descriptions: []string{"x"}}}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.NoError(t, ValidateResumeDocument(data))
}

func TestValidateResumeDocument_AcceptsBothSkillsVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "flat skills and custom",
			body: `{"basics":{"name":"A","email":"","phone":"","url":"","summary":"","location":""},"skills":["Go",{"name":"SQL","rating":2}],"custom":["note"]}`,
		},
		{
			name: "structured skills and custom",
			body: `{"skills":{"featuredSkills":[{"skill":"Go","rating":4}],"descriptions":[]},"custom":{"descriptions":[]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, ValidateResumeDocument([]byte(tt.body)))
		})
	}
}

func TestValidateResumeDocument_RejectsWrongTypes(t *testing.T) {
	err := ValidateResumeDocument([]byte(`{"basics":{"name":42}}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, err.Error(), "name")
}

func TestValidateResumeDocument_RejectsUnknownTopLevelField(t *testing.T) {
	err := ValidateResumeDocument([]byte(`{"resume_data":{}}`))
	require.Error(t, err)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
