package prompt

import (
	"strings"
)

// CleanStatement strips markup artifacts the model sometimes emits despite
// the plain-paragraph instruction: emphasis markers, leading bullets, and
// stray surrounding whitespace.
func CleanStatement(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"- ", "* ", "• ", "– "} {
			if strings.HasPrefix(line, prefix) {
				line = strings.TrimSpace(strings.TrimPrefix(line, prefix))
				break
			}
		}
		lines[i] = line
	}
	s = strings.Join(lines, " ")

	// Emphasis markers. Double markers first so "**bold**" does not leave
	// single stars behind.
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "*", "")
	s = strings.ReplaceAll(s, "`", "")

	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
