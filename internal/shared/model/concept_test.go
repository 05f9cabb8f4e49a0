package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConceptDisplayName(t *testing.T) {
	assert.Equal(t, "Firewall", (&Concept{ID: "firewall", Name: "Firewall"}).DisplayName())
	assert.Equal(t, "firewall", (&Concept{ID: "firewall"}).DisplayName())
}

func TestConceptComparisonWith(t *testing.T) {
	c := &Concept{
		ID: "firewall",
		ComparisonPoints: []ComparisonPoint{
			{CompareWithConcept: "IDS", ComparisonText: "Firewall chặn, IDS cảnh báo."},
		},
	}

	assert.Equal(t, "Firewall chặn, IDS cảnh báo.", c.ComparisonWith("ids"))
	assert.Equal(t, "Firewall chặn, IDS cảnh báo.", c.ComparisonWith("  IDS  "))
	assert.Empty(t, c.ComparisonWith("vpn"))
	assert.Empty(t, c.ComparisonWith(""))
}

func TestConceptExamplesOfType(t *testing.T) {
	c := &Concept{
		Examples: []ConceptExample{
			{Type: "real_world", Content: "a"},
			{Type: "technical", Content: "b"},
			{Type: "Technical", Content: "c"},
		},
	}

	got := c.ExamplesOfType("technical")
	assert.Len(t, got, 2)
	assert.Empty(t, c.ExamplesOfType("code"))
}
