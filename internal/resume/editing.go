package resume

// Profile is the flattened contact block used by the form and preview. Every
// field is always present as a string, possibly empty.
type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	URL      string `json:"url"`
	Summary  string `json:"summary"`
	Location string `json:"location"`
}

// WorkExperience is a work item shaped for field-by-field editing.
type WorkExperience struct {
	Company      string   `json:"company"`
	JobTitle     string   `json:"jobTitle"`
	Date         string   `json:"date"`
	Descriptions []string `json:"descriptions"`
}

// Education is an education item shaped for field-by-field editing.
type Education struct {
	School       string   `json:"school"`
	Degree       string   `json:"degree"`
	Date         string   `json:"date"`
	GPA          string   `json:"gpa"`
	Descriptions []string `json:"descriptions"`
}

// Project is a project item shaped for field-by-field editing.
type Project struct {
	Project      string   `json:"project"`
	Date         string   `json:"date"`
	Descriptions []string `json:"descriptions"`
}

// EditingState is the working copy the form and preview operate on. Skills
// and Custom are always in their normalized shapes here; the union decoding
// happens once at the canonical boundary.
type EditingState struct {
	Profile         Profile          `json:"profile"`
	WorkExperiences []WorkExperience `json:"workExperiences"`
	Educations      []Education      `json:"educations"`
	Projects        []Project        `json:"projects"`
	Skills          Skills           `json:"skills"`
	Custom          Custom           `json:"custom"`
	Settings        map[string]any   `json:"settings,omitempty"`
}

// EmptyEditingState returns an editing state with a materialized all-empty
// profile and empty sections.
func EmptyEditingState() EditingState {
	return EditingState{
		WorkExperiences: []WorkExperience{},
		Educations:      []Education{},
		Projects:        []Project{},
		Skills:          Skills{FeaturedSkills: []FeaturedSkill{}, Descriptions: []string{}},
		Custom:          Custom{Descriptions: []string{}},
	}
}
