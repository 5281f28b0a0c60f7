package collection

import (
	"encoding/json"
	"fmt"

	"github.com/khoahotran/portfolio-api/internal/domain/language"
	"github.com/khoahotran/portfolio-api/pkg/validation"
)

type CertificationSpec struct {
	Title      string `json:"title" validate:"required,max=200"`
	Issuer     string `json:"issuer" validate:"required,max=200"`
	Date       string `json:"date" validate:"required,max=20"`
	Badge      string `json:"badge" validate:"max=200"`
	Type       string `json:"type" validate:"omitempty,oneof=aws alx other"`
	InProgress bool   `json:"in_progress"`
}

// UnmarshalJSON also accepts the camelCase "inProgress" sent by older clients.
func (c *CertificationSpec) UnmarshalJSON(data []byte) error {
	type plain CertificationSpec
	var aux struct {
		plain
		InProgressCamel *bool `json:"inProgress"`
		InProgressSnake *bool `json:"in_progress"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = CertificationSpec(aux.plain)
	switch {
	case aux.InProgressSnake != nil:
		c.InProgress = *aux.InProgressSnake
	case aux.InProgressCamel != nil:
		c.InProgress = *aux.InProgressCamel
	}
	return nil
}

type LanguageSpec struct {
	Name        string `json:"name" validate:"required,max=100"`
	Proficiency string `json:"proficiency" validate:"required"`
}

type SkillSpec struct {
	Name  string `json:"name" validate:"required,max=100"`
	Level int    `json:"level" validate:"min=0,max=100"`
}

type SkillCategorySpec struct {
	Category string      `json:"category" validate:"required,max=100"`
	Skills   []SkillSpec `json:"skills" validate:"dive"`
}

func ValidateCertifications(specs []CertificationSpec) []string {
	return validation.Slice(specs)
}

func ValidateLanguages(specs []LanguageSpec) []string {
	violations := validation.Slice(specs)
	for i, s := range specs {
		if s.Proficiency == "" {
			continue
		}
		if _, err := language.ParseProficiency(s.Proficiency); err != nil {
			violations = append(violations, fmt.Sprintf("[%d].proficiency: must be one of [Native Fluent Proficient Intermediate Basic]", i))
		}
	}
	return violations
}

func ValidateSkillCategories(specs []SkillCategorySpec) []string {
	return validation.Slice(specs)
}
