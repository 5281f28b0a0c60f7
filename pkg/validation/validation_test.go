package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	Title string `json:"title" validate:"required,max=10"`
	Level int    `json:"level" validate:"min=0,max=100"`
	Kind  string `json:"type" validate:"omitempty,oneof=aws alx other"`
}

type group struct {
	Name  string `json:"category" validate:"required"`
	Items []item `json:"skills" validate:"dive"`
}

func TestSliceReportsEveryViolation(t *testing.T) {
	violations := Slice([]item{
		{Title: "ok", Level: 50},
		{Title: "", Level: 101, Kind: "gcp"},
	})

	assert.ElementsMatch(t, []string{
		"[1].title: is required",
		"[1].level: must be at most 100",
		"[1].type: must be one of [aws alx other]",
	}, violations)
}

func TestNestedPaths(t *testing.T) {
	violations := Struct("[0].", group{Name: "Backend", Items: []item{{Title: "Go", Level: -1}}})
	assert.Equal(t, []string{"[0].skills[0].level: must be at least 0"}, violations)
}

func TestValidStructHasNoViolations(t *testing.T) {
	assert.Empty(t, Struct("", item{Title: "Go", Level: 90, Kind: "aws"}))
}
