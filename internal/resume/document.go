// Package resume defines the canonical resume document exchanged with the
// backend, the editing representation used by the builder, and the translation
// between the two.
package resume

import (
	"encoding/json"
)

// DefaultSkillRating is assigned to skills that arrive without a rating.
// It is a policy constant, not inferred from content.
const DefaultSkillRating = 4

// Basics holds the contact block of a canonical document. All fields are
// plain strings and default to "".
type Basics struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	URL      string `json:"url"`
	Summary  string `json:"summary"`
	Location string `json:"location"`
}

// WorkEntry is one work-history item. Position and StartDate are read-side
// aliases for JobTitle and Date; Summary is a read-side alias for a single
// description. Writers always emit the JobTitle/Date/Descriptions shape.
type WorkEntry struct {
	Company      string   `json:"company,omitempty"`
	JobTitle     string   `json:"jobTitle,omitempty"`
	Position     string   `json:"position,omitempty"`
	Date         string   `json:"date,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

// EducationEntry is one education item. Institution and Summary are
// read-side aliases.
type EducationEntry struct {
	School       string   `json:"school,omitempty"`
	Institution  string   `json:"institution,omitempty"`
	Degree       string   `json:"degree,omitempty"`
	Date         string   `json:"date,omitempty"`
	GPA          string   `json:"gpa,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

// ProjectEntry is one project item. Name and Summary are read-side aliases.
type ProjectEntry struct {
	Project      string   `json:"project,omitempty"`
	Name         string   `json:"name,omitempty"`
	Date         string   `json:"date,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

// FeaturedSkill is a single named skill with a 1-5 rating.
type FeaturedSkill struct {
	Skill  string `json:"skill"`
	Rating int    `json:"rating"`
}

// Skills is the normalized skills section. On the wire it is legal as either
// a flat sequence of skill names/objects or as this structured form; decoding
// normalizes both to the structured form, and marshaling always emits it.
type Skills struct {
	FeaturedSkills []FeaturedSkill `json:"featuredSkills"`
	Descriptions   []string        `json:"descriptions"`
}

// skillsObject mirrors Skills for decoding the structured wire variant
// without recursing into Skills.UnmarshalJSON.
type skillsObject struct {
	FeaturedSkills []FeaturedSkill `json:"featuredSkills"`
	Descriptions   []string        `json:"descriptions"`
}

// flatSkill decodes one entry of the flat sequence variant: either a bare
// string or an object carrying skill/name and an optional rating.
type flatSkill struct {
	Skill  string `json:"skill"`
	Name   string `json:"name"`
	Rating *int   `json:"rating"`
}

// UnmarshalJSON accepts both legal wire shapes for the skills section. This
// is the only place that branches on shape.
func (s *Skills) UnmarshalJSON(data []byte) error {
	var obj skillsObject
	if err := json.Unmarshal(data, &obj); err == nil {
		s.FeaturedSkills = obj.FeaturedSkills
		s.Descriptions = obj.Descriptions
		s.normalize()
		return nil
	}

	var flat []json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		// Malformed optional field: resolve to the empty section.
		*s = Skills{}
		s.normalize()
		return nil
	}

	s.FeaturedSkills = make([]FeaturedSkill, 0, len(flat))
	for _, raw := range flat {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			s.FeaturedSkills = append(s.FeaturedSkills, FeaturedSkill{Skill: name, Rating: DefaultSkillRating})
			continue
		}

		var entry flatSkill
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		skill := entry.Skill
		if skill == "" {
			skill = entry.Name
		}
		rating := DefaultSkillRating
		if entry.Rating != nil {
			rating = *entry.Rating
		}
		s.FeaturedSkills = append(s.FeaturedSkills, FeaturedSkill{Skill: skill, Rating: rating})
	}
	s.Descriptions = []string{}
	return nil
}

func (s *Skills) normalize() {
	if s.FeaturedSkills == nil {
		s.FeaturedSkills = []FeaturedSkill{}
	}
	if s.Descriptions == nil {
		s.Descriptions = []string{}
	}
}

// Custom is the normalized free-form section. The wire form may be either a
// flat sequence of description strings or this structured form.
type Custom struct {
	Descriptions []string `json:"descriptions"`
}

type customObject struct {
	Descriptions []string `json:"descriptions"`
}

// UnmarshalJSON accepts both legal wire shapes for the custom section.
func (c *Custom) UnmarshalJSON(data []byte) error {
	var obj customObject
	if err := json.Unmarshal(data, &obj); err == nil {
		c.Descriptions = obj.Descriptions
		if c.Descriptions == nil {
			c.Descriptions = []string{}
		}
		return nil
	}

	var flat []string
	if err := json.Unmarshal(data, &flat); err != nil {
		c.Descriptions = []string{}
		return nil
	}
	c.Descriptions = flat
	return nil
}

// Document is the canonical resume representation persisted by the backend
// and exchanged over the wire (Schema A). Settings carries free-form display
// options and is opaque to this service.
type Document struct {
	Basics    Basics           `json:"basics"`
	Work      []WorkEntry      `json:"work"`
	Education []EducationEntry `json:"education"`
	Projects  []ProjectEntry   `json:"projects"`
	Skills    Skills           `json:"skills"`
	Custom    Custom           `json:"custom"`
	Settings  map[string]any   `json:"settings,omitempty"`
}

// EmptyDocument returns a canonical skeleton with every optional field at
// its documented default.
func EmptyDocument() Document {
	return Document{
		Work:      []WorkEntry{},
		Education: []EducationEntry{},
		Projects:  []ProjectEntry{},
		Skills:    Skills{FeaturedSkills: []FeaturedSkill{}, Descriptions: []string{}},
		Custom:    Custom{Descriptions: []string{}},
	}
}

// Defaulted returns a copy of the document with the documented defaulting
// rules applied: read-side aliases folded into their canonical fields,
// summaries folded into descriptions, and nil sequences materialized. A
// defaulted document is what ToCanonical(ToEditing(d)) reproduces exactly.
func (d Document) Defaulted() Document {
	out := d

	out.Work = make([]WorkEntry, len(d.Work))
	for i, w := range d.Work {
		out.Work[i] = WorkEntry{
			Company:      w.Company,
			JobTitle:     firstNonEmpty(w.JobTitle, w.Position),
			Date:         firstNonEmpty(w.Date, w.StartDate),
			Descriptions: foldSummary(w.Descriptions, w.Summary),
		}
	}

	out.Education = make([]EducationEntry, len(d.Education))
	for i, e := range d.Education {
		out.Education[i] = EducationEntry{
			School:       firstNonEmpty(e.School, e.Institution),
			Degree:       e.Degree,
			Date:         e.Date,
			GPA:          e.GPA,
			Descriptions: foldSummary(e.Descriptions, e.Summary),
		}
	}

	out.Projects = make([]ProjectEntry, len(d.Projects))
	for i, p := range d.Projects {
		out.Projects[i] = ProjectEntry{
			Project:      firstNonEmpty(p.Project, p.Name),
			Date:         p.Date,
			Descriptions: foldSummary(p.Descriptions, p.Summary),
		}
	}

	out.Skills.normalize()
	if out.Custom.Descriptions == nil {
		out.Custom.Descriptions = []string{}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// foldSummary resolves the summary-or-descriptions union: explicit
// descriptions win, a lone summary becomes a single description, and absence
// yields an empty sequence, never nil.
func foldSummary(descriptions []string, summary string) []string {
	if len(descriptions) > 0 {
		return descriptions
	}
	if summary != "" {
		return []string{summary}
	}
	return []string{}
}
