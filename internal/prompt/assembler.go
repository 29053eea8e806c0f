// Package prompt assembles the generation prompt and cleans the model output.
package prompt

import (
	"fmt"
	"strings"
)

// TemplateName is the stored base instruction template the assembler builds on.
const TemplateName = "ddid_base"

// DefaultBaseTemplate is used when no template row exists yet and when the
// cache cannot reach the database.
const DefaultBaseTemplate = `You are an expert home inspector writing a DDID inspection statement.
DDID means: Describe the defect observed, Determine what it is, state the Implication
(what could happen if uncorrected), and give Direction (the recommended next step,
usually evaluation or repair by a qualified licensed contractor).
Base your statement on the attached photo and the inspector's notes.`

// closingInstruction restates the required output format last so it survives
// long contexts.
const closingInstruction = `Write the statement now as a single plain-text paragraph of 4-6 sentences.
Do not use bullet points, numbered lists, markdown, or headings.`

// Per-section character caps. Each variable-length section is truncated
// independently so no single source can starve the others of budget.
const (
	maxBaseChars      = 8000
	maxNotesChars     = 4000
	maxSopChars       = 16000
	maxKnowledgeChars = 3000
)

// sopHeaderSlack covers the section banners and delimiters the resolver
// wraps around each truncated document.
const sopHeaderSlack = 512

// maxSopDocuments is the most documents one resolution can merge: a state or
// default assignment plus an organization supplement.
const maxSopDocuments = 2

// Input carries every assembly source; any field may be empty. SopBudget is
// the resolver's per-document truncation cap; when set, the SOP section cap
// is sized so a full multi-document merge is not cut a second time.
type Input struct {
	Base         string
	State        string
	Organization string
	Notes        string
	SopContext   string
	Knowledge    string
	SopBudget    int
}

// Assemble deterministically merges the sections in fixed order:
// base instructions, inspection context, SOP context (if any), knowledge
// snippet (if any), closing format instruction.
func Assemble(in Input) string {
	var b strings.Builder

	base := in.Base
	if base == "" {
		base = DefaultBaseTemplate
	}
	b.WriteString(truncate(base, maxBaseChars))

	b.WriteString("\n\nINSPECTION CONTEXT:\n")
	fmt.Fprintf(&b, "Jurisdiction (state): %s\n", in.State)
	if in.Organization != "" {
		fmt.Fprintf(&b, "Organization: %s\n", in.Organization)
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		fmt.Fprintf(&b, "Inspector notes: %s\n", truncate(notes, maxNotesChars))
	}

	if sop := strings.TrimSpace(in.SopContext); sop != "" {
		sopCap := maxSopChars
		if in.SopBudget > 0 {
			sopCap = in.SopBudget*maxSopDocuments + sopHeaderSlack
		}
		b.WriteString("\nAPPLICABLE STANDARDS OF PRACTICE:\n")
		b.WriteString(truncate(sop, sopCap))
		b.WriteString("\n")
	}

	if kn := strings.TrimSpace(in.Knowledge); kn != "" {
		b.WriteString("\nRELEVANT REFERENCE MATERIAL:\n")
		b.WriteString(truncate(kn, maxKnowledgeChars))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(closingInstruction)
	return b.String()
}

func truncate(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget])
}
