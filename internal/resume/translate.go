package resume

// ToEditing converts a canonical document into the editing representation.
// It is pure and total: absent or malformed optional fields resolve to their
// documented defaults, never to an error, and the profile is always
// materialized.
func ToEditing(doc Document) EditingState {
	d := doc.Defaulted()

	state := EditingState{
		Profile: Profile{
			Name:     d.Basics.Name,
			Email:    d.Basics.Email,
			Phone:    d.Basics.Phone,
			URL:      d.Basics.URL,
			Summary:  d.Basics.Summary,
			Location: d.Basics.Location,
		},
		WorkExperiences: make([]WorkExperience, len(d.Work)),
		Educations:      make([]Education, len(d.Education)),
		Projects:        make([]Project, len(d.Projects)),
		Skills:          cloneSkills(d.Skills),
		Custom:          Custom{Descriptions: cloneStrings(d.Custom.Descriptions)},
		Settings:        d.Settings,
	}

	for i, w := range d.Work {
		state.WorkExperiences[i] = WorkExperience{
			Company:      w.Company,
			JobTitle:     w.JobTitle,
			Date:         w.Date,
			Descriptions: cloneStrings(w.Descriptions),
		}
	}
	for i, e := range d.Education {
		state.Educations[i] = Education{
			School:       e.School,
			Degree:       e.Degree,
			Date:         e.Date,
			GPA:          e.GPA,
			Descriptions: cloneStrings(e.Descriptions),
		}
	}
	for i, p := range d.Projects {
		state.Projects[i] = Project{
			Project:      p.Project,
			Date:         p.Date,
			Descriptions: cloneStrings(p.Descriptions),
		}
	}
	return state
}

// ToCanonical converts an editing state back into a canonical document,
// always emitting the single normalized shape for every section. For a state
// produced by ToEditing(d), the result equals d.Defaulted() field for field.
func ToCanonical(state EditingState) Document {
	doc := Document{
		Basics: Basics{
			Name:     state.Profile.Name,
			Email:    state.Profile.Email,
			Phone:    state.Profile.Phone,
			URL:      state.Profile.URL,
			Summary:  state.Profile.Summary,
			Location: state.Profile.Location,
		},
		Work:      make([]WorkEntry, len(state.WorkExperiences)),
		Education: make([]EducationEntry, len(state.Educations)),
		Projects:  make([]ProjectEntry, len(state.Projects)),
		Skills:    cloneSkills(state.Skills),
		Custom:    Custom{Descriptions: cloneStrings(state.Custom.Descriptions)},
		Settings:  state.Settings,
	}

	for i, w := range state.WorkExperiences {
		doc.Work[i] = WorkEntry{
			Company:      w.Company,
			JobTitle:     w.JobTitle,
			Date:         w.Date,
			Descriptions: cloneStrings(w.Descriptions),
		}
	}
	for i, e := range state.Educations {
		doc.Education[i] = EducationEntry{
			School:       e.School,
			Degree:       e.Degree,
			Date:         e.Date,
			GPA:          e.GPA,
			Descriptions: cloneStrings(e.Descriptions),
		}
	}
	for i, p := range state.Projects {
		doc.Projects[i] = ProjectEntry{
			Project:      p.Project,
			Date:         p.Date,
			Descriptions: cloneStrings(p.Descriptions),
		}
	}

	doc.Skills.normalize()
	if doc.Custom.Descriptions == nil {
		doc.Custom.Descriptions = []string{}
	}
	return doc
}

// cloneStrings copies a description sequence so the two representations
// never share backing arrays. Nil comes back as an empty sequence.
func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func cloneSkills(s Skills) Skills {
	out := Skills{
		FeaturedSkills: make([]FeaturedSkill, len(s.FeaturedSkills)),
		Descriptions:   cloneStrings(s.Descriptions),
	}
	copy(out.FeaturedSkills, s.FeaturedSkills)
	return out
}
