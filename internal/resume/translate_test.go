package resume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureDocument() Document {
	return Document{
		Basics: Basics{
			Name:     "Ada Lovelace",
			Email:    "ada@example.com",
			Phone:    "555-0100",
			URL:      "https://ada.example.com",
			Summary:  "Engineer",
			Location: "London",
		},
		Work: []WorkEntry{
			{Company: "Analytical Engines", JobTitle: "Programmer", Date: "1842 - 1843", Descriptions: []string{"Wrote the first program"}},
			{Company: "Babbage & Co", Position: "Consultant", StartDate: "1840", Summary: "Advised on difference engines"},
		},
		Education: []EducationEntry{
			{School: "Home Tutoring", Degree: "Mathematics", Date: "1833", GPA: "4.0", Descriptions: []string{"Studied under De Morgan"}},
		},
		Projects: []ProjectEntry{
			{Name: "Notes on the Analytical Engine", Date: "1843", Summary: "Translated and annotated"},
		},
		Skills: Skills{
			FeaturedSkills: []FeaturedSkill{{Skill: "Mathematics", Rating: 5}},
			Descriptions:   []string{"Symbolic logic"},
		},
		Custom:   Custom{Descriptions: []string{"First programmer"}},
		Settings: map[string]any{"themeColor": "#38bdf8"},
	}
}

func TestToEditing_MapsAllSections(t *testing.T) {
	state := ToEditing(fixtureDocument())

	assert.Equal(t, "Ada Lovelace", state.Profile.Name)
	assert.Equal(t, "London", state.Profile.Location)

	require.Len(t, state.WorkExperiences, 2)
	assert.Equal(t, "Programmer", state.WorkExperiences[0].JobTitle)
	// Alias fields resolve during translation.
	assert.Equal(t, "Consultant", state.WorkExperiences[1].JobTitle)
	assert.Equal(t, "1840", state.WorkExperiences[1].Date)
	assert.Equal(t, []string{"Advised on difference engines"}, state.WorkExperiences[1].Descriptions)

	require.Len(t, state.Educations, 1)
	assert.Equal(t, "Home Tutoring", state.Educations[0].School)
	assert.Equal(t, "4.0", state.Educations[0].GPA)

	require.Len(t, state.Projects, 1)
	assert.Equal(t, "Notes on the Analytical Engine", state.Projects[0].Project)

	assert.Equal(t, []FeaturedSkill{{Skill: "Mathematics", Rating: 5}}, state.Skills.FeaturedSkills)
	assert.Equal(t, []string{"First programmer"}, state.Custom.Descriptions)
	assert.Equal(t, map[string]any{"themeColor": "#38bdf8"}, state.Settings)
}

func TestToEditing_EmptyDocumentMaterializesProfile(t *testing.T) {
	state := ToEditing(Document{})

	assert.Equal(t, Profile{}, state.Profile)
	assert.NotNil(t, state.WorkExperiences)
	assert.NotNil(t, state.Educations)
	assert.NotNil(t, state.Projects)
	assert.NotNil(t, state.Skills.FeaturedSkills)
	assert.NotNil(t, state.Custom.Descriptions)
}

func TestRoundTrip_EqualsDefaultedDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{name: "full fixture", doc: fixtureDocument()},
		{name: "zero document", doc: Document{}},
		{name: "empty skeleton", doc: EmptyDocument()},
		{
			name: "aliases and missing optionals",
			doc: Document{
				Basics: Basics{Name: "B"},
				Work:   []WorkEntry{{Position: "Dev", StartDate: "2021"}},
				Education: []EducationEntry{
					{Institution: "MIT"},
				},
				Projects: []ProjectEntry{{Name: "tool"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToCanonical(ToEditing(tt.doc))
			assert.Equal(t, tt.doc.Defaulted(), got)
		})
	}
}

func TestRoundTrip_SurvivesWireDecode(t *testing.T) {
	// The skills section arrives in the flat variant; translation must not
	// drop any populated field on the way through the editing state.
	wire := []byte(`{
		"basics": {"name":"A","email":"a@b.c","phone":"","url":"","summary":"","location":""},
		"work": [{"company":"X","position":"Engineer","summary":"Did work"}],
		"education": [],
		"projects": [],
		"skills": ["Go", {"name":"SQL","rating":2}],
		"custom": ["note"]
	}`)

	var doc Document
	require.NoError(t, json.Unmarshal(wire, &doc))

	out := ToCanonical(ToEditing(doc))
	assert.Equal(t, "Engineer", out.Work[0].JobTitle)
	assert.Equal(t, []string{"Did work"}, out.Work[0].Descriptions)
	assert.Equal(t, []FeaturedSkill{
		{Skill: "Go", Rating: DefaultSkillRating},
		{Skill: "SQL", Rating: 2},
	}, out.Skills.FeaturedSkills)
	assert.Equal(t, []string{"note"}, out.Custom.Descriptions)
}

func TestToCanonical_NilSlicesBecomeEmpty(t *testing.T) {
	state := EditingState{
		WorkExperiences: []WorkExperience{{Company: "X"}},
	}

	doc := ToCanonical(state)
	assert.NotNil(t, doc.Work[0].Descriptions)
	assert.NotNil(t, doc.Education)
	assert.NotNil(t, doc.Skills.FeaturedSkills)
	assert.NotNil(t, doc.Custom.Descriptions)
}

func TestToEditing_DoesNotAliasDocumentSlices(t *testing.T) {
	doc := Document{
		Work: []WorkEntry{{Company: "X", Descriptions: []string{"shipped"}}},
		Skills: Skills{
			FeaturedSkills: []FeaturedSkill{{Skill: "Go", Rating: 5}},
			Descriptions:   []string{"backend"},
		},
		Custom: Custom{Descriptions: []string{"note"}},
	}

	state := ToEditing(doc)
	state.WorkExperiences[0].Descriptions[0] = "changed"
	state.Skills.FeaturedSkills[0].Skill = "Rust"
	state.Skills.Descriptions[0] = "changed"
	state.Custom.Descriptions[0] = "changed"

	assert.Equal(t, "shipped", doc.Work[0].Descriptions[0])
	assert.Equal(t, "Go", doc.Skills.FeaturedSkills[0].Skill)
	assert.Equal(t, "backend", doc.Skills.Descriptions[0])
	assert.Equal(t, "note", doc.Custom.Descriptions[0])

	// And the reverse direction: the produced document owns its slices.
	out := ToCanonical(state)
	out.Skills.FeaturedSkills[0].Skill = "Zig"
	out.Custom.Descriptions[0] = "again"
	assert.Equal(t, "Rust", state.Skills.FeaturedSkills[0].Skill)
	assert.Equal(t, "changed", state.Custom.Descriptions[0])
}
