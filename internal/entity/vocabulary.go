package entity

import "strings"

// VocabularyItem is a catalog entry. The engine only ever reads it.
type VocabularyItem struct {
	ID          string   `json:"id"`
	Term        string   `json:"term"`        // source-language term
	Translation string   `json:"translation"` // target-language term
	Group       string   `json:"group,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	Media       string   `json:"media,omitempty"`
}

// Normalize trims user supplied text and drops empty examples.
func (v *VocabularyItem) Normalize() {
	v.ID = strings.TrimSpace(v.ID)
	v.Term = strings.TrimSpace(v.Term)
	v.Translation = strings.TrimSpace(v.Translation)
	v.Group = strings.TrimSpace(v.Group)
	v.Media = strings.TrimSpace(v.Media)
	examples := make([]string, 0, len(v.Examples))
	for _, example := range v.Examples {
		if trimmed := strings.TrimSpace(example); trimmed != "" {
			examples = append(examples, trimmed)
		}
	}
	if len(examples) == 0 {
		examples = nil
	}
	v.Examples = examples
}

// Validate checks the fields a catalog entry cannot live without.
func (v *VocabularyItem) Validate() error {
	if v.ID == "" {
		return ErrInvalidWordID
	}
	if v.Term == "" || v.Translation == "" {
		return ErrInvalidWordText
	}
	return nil
}

// VocabularyProgress is a catalog item merged with the reader's progress on it.
type VocabularyProgress struct {
	VocabularyItem
	Progress ProgressEntry `json:"progress"`
}
