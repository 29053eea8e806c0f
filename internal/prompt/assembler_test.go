package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleSectionOrder(t *testing.T) {
	out := Assemble(Input{
		Base:         "BASE INSTRUCTIONS",
		State:        "NC",
		Organization: "ASHI",
		Notes:        "water stain on ceiling",
		SopContext:   "SOP BODY",
		Knowledge:    "KNOWLEDGE BODY",
	})

	positions := []int{
		strings.Index(out, "BASE INSTRUCTIONS"),
		strings.Index(out, "INSPECTION CONTEXT:"),
		strings.Index(out, "water stain on ceiling"),
		strings.Index(out, "APPLICABLE STANDARDS OF PRACTICE:"),
		strings.Index(out, "SOP BODY"),
		strings.Index(out, "RELEVANT REFERENCE MATERIAL:"),
		strings.Index(out, "KNOWLEDGE BODY"),
		strings.Index(out, "single plain-text paragraph"),
	}
	for i, p := range positions {
		require.GreaterOrEqual(t, p, 0, "section %d missing", i)
		if i > 0 {
			assert.Greater(t, p, positions[i-1], "section %d out of order", i)
		}
	}
	assert.Contains(t, out, "Jurisdiction (state): NC")
	assert.Contains(t, out, "Organization: ASHI")
}

func TestAssembleOmitsEmptySections(t *testing.T) {
	out := Assemble(Input{State: "SC"})

	assert.NotContains(t, out, "APPLICABLE STANDARDS OF PRACTICE")
	assert.NotContains(t, out, "RELEVANT REFERENCE MATERIAL")
	assert.NotContains(t, out, "Organization:")
	assert.NotContains(t, out, "Inspector notes:")
	assert.Contains(t, out, DefaultBaseTemplate, "empty base falls back to the built-in template")
}

func TestAssembleTruncatesPerSection(t *testing.T) {
	out := Assemble(Input{
		State:     "NC",
		Notes:     strings.Repeat("n", maxNotesChars+500),
		Knowledge: strings.Repeat("k", maxKnowledgeChars+500),
	})

	assert.Contains(t, out, strings.Repeat("n", maxNotesChars))
	assert.NotContains(t, out, strings.Repeat("n", maxNotesChars+1))
	assert.Contains(t, out, strings.Repeat("k", maxKnowledgeChars))
	assert.NotContains(t, out, strings.Repeat("k", maxKnowledgeChars+1))
}

func TestAssembleSopCapCoversMultiDocumentMerge(t *testing.T) {
	// Two full-budget documents the way the resolver merges them: a state
	// assignment plus an organization supplement, each already truncated.
	budget := 15000
	merged := "--- PRIMARY SOP: NC SOP (assigned standards for NC) ---\n" + strings.Repeat("p", budget) +
		"\n\n==========\n\n" +
		"--- SUPPLEMENTARY SOP: ASHI SOP (organizational standards for ASHI) ---\n" + strings.Repeat("s", budget)

	out := Assemble(Input{State: "NC", SopContext: merged, SopBudget: budget})

	assert.Contains(t, out, strings.Repeat("p", budget))
	assert.Contains(t, out, strings.Repeat("s", budget), "supplementary section must survive assembly uncut")
}

func TestAssembleSopDefaultCapWithoutBudget(t *testing.T) {
	out := Assemble(Input{State: "NC", SopContext: strings.Repeat("x", maxSopChars+500)})

	assert.Contains(t, out, strings.Repeat("x", maxSopChars))
	assert.NotContains(t, out, strings.Repeat("x", maxSopChars+1))
}

func TestCleanStatement(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain passes through", "The roof shows damage.", "The roof shows damage."},
		{"bold stripped", "The **roof** shows __damage__.", "The roof shows damage."},
		{"single emphasis and backticks stripped", "Use a *qualified* `contractor`.", "Use a qualified contractor."},
		{"leading bullets joined", "- First point\n- Second point", "First point Second point"},
		{"unicode bullet", "• Observed moisture.", "Observed moisture."},
		{"whitespace collapsed", "  too    many\n\n spaces ", "too many spaces"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanStatement(tc.in))
		})
	}
}
