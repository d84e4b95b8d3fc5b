package quiz

import "encoding/json"

// Section names one block of generated study material.
type Section string

const (
	SectionContent   Section = "study_content"
	SectionMCQ       Section = "mcqs"
	SectionTrueFalse Section = "true_false"
	SectionFillBlank Section = "fill_blanks"
	SectionShortQA   Section = "short_qa"
	SectionMediumQA  Section = "medium_qa"
	SectionLongQA    Section = "long_qa"
)

// Sections lists the study sections in generation order.
var Sections = []Section{
	SectionContent,
	SectionMCQ,
	SectionTrueFalse,
	SectionFillBlank,
	SectionShortQA,
	SectionMediumQA,
	SectionLongQA,
}

// Title returns the heading shown above a section.
func (s Section) Title() string {
	switch s {
	case SectionContent:
		return "Study Content & Key Points"
	case SectionMCQ:
		return "MCQs"
	case SectionTrueFalse:
		return "True / False"
	case SectionFillBlank:
		return "Fill in the Blanks"
	case SectionShortQA:
		return "Short Q&A"
	case SectionMediumQA:
		return "Medium Q&A"
	case SectionLongQA:
		return "Long Q&A"
	}
	return string(s)
}

// StudyMaterial is the free-text output of the study workflow. Every section
// is always present; a section that was never filled reads as "".
type StudyMaterial struct {
	text map[Section]string
}

// NewStudyMaterial returns a record with all seven sections set to "".
func NewStudyMaterial() *StudyMaterial {
	m := &StudyMaterial{text: make(map[Section]string, len(Sections))}
	for _, s := range Sections {
		m.text[s] = ""
	}
	return m
}

// Get returns the text of section s.
func (m *StudyMaterial) Get(s Section) string {
	return m.text[s]
}

// Set stores the text of section s. Unknown sections are ignored.
func (m *StudyMaterial) Set(s Section, text string) {
	if _, ok := m.text[s]; !ok {
		return
	}
	m.text[s] = text
}

// Map returns a copy of the record keyed by section name.
func (m *StudyMaterial) Map() map[string]string {
	out := make(map[string]string, len(Sections))
	for _, s := range Sections {
		out[string(s)] = m.text[s]
	}
	return out
}

// MarshalJSON encodes the record as an object with the seven section keys.
func (m *StudyMaterial) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Map())
}

// UnmarshalJSON decodes an object of section keys. Missing keys read as "".
func (m *StudyMaterial) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = *NewStudyMaterial()
	for _, s := range Sections {
		m.text[s] = raw[string(s)]
	}
	return nil
}
