package pagepdf

import (
	"fmt"
	"strings"
)

// buildSuppressCSS hides the given selectors inside the container only.
// Elements keep their box so unit layout does not change.
func buildSuppressCSS(containerID string, selectors []string) string {
	var scoped []string
	for _, sel := range selectors {
		for _, part := range splitSelectorList(sel) {
			scoped = append(scoped, "#"+containerID+" "+part)
		}
	}
	if len(scoped) == 0 {
		return ""
	}
	return strings.Join(scoped, ",\n") + " {\n  visibility: hidden !important;\n}\n"
}

// splitSelectorList splits a selector list on top-level commas, leaving
// commas inside parentheses or brackets (":is(a, b)", "[x='a,b']") alone.
func splitSelectorList(list string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range list {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				if p := strings.TrimSpace(list[start:i]); p != "" {
					parts = append(parts, p)
				}
				start = i + 1
			}
		}
	}
	if p := strings.TrimSpace(list[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// buildPageCSS generates the @page rule handed to a print engine.
func buildPageCSS(p PageSettings) string {
	return fmt.Sprintf("@page {\n  size: %s %s;\n  margin: %.2fpt;\n}\n", p.Format, p.Orientation, p.MarginPt)
}

// buildContainerWidthCSS pins the authoring width of the capture root so
// that px measured in the browser map onto the page scale.
func buildContainerWidthCSS(widthPx int) string {
	return fmt.Sprintf(":root {\n  --pagepdf-reference-width: %dpx;\n}\n", widthPx)
}
