package deb

import (
	"fmt"
	"strings"
)

// ParseControl parses RFC-822-style `Field: value` content (continuation
// lines indented by a space) into a Record. Mirrors the teacher's
// deb/util.go parseControlFile, adapted to populate a Record instead of a
// Metadata, and to preserve unknown fields via Record.Set's default case.
func ParseControl(content string, r *Record) error {
	var currentKey string
	var currentValue strings.Builder

	flush := func() {
		if currentKey != "" {
			r.Set(currentKey, strings.TrimSpace(currentValue.String()))
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			currentValue.WriteString("\n" + line)
			continue
		}
		if strings.Contains(line, ":") {
			flush()
			parts := strings.SplitN(line, ":", 2)
			currentKey = strings.TrimSpace(parts[0])
			currentValue.Reset()
			currentValue.WriteString(strings.TrimSpace(parts[1]))
		}
	}
	flush()
	return nil
}

// WriteControl renders a Record's scalar fields as a control-file stanza,
// one "Field: value" line per non-empty field, folding Description's
// extended body the way dpkg does (lines indented by a single space, blank
// lines replaced by " .").
func WriteControl(r *Record) string {
	var b strings.Builder
	writeField := func(field ControlField, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", field, value)
		}
	}

	writeField(FieldPackage, r.Name)
	writeField(FieldVersion, r.Version)
	writeField(FieldArchitecture, r.Architecture)
	writeField(FieldMaintainer, r.Maintainer)
	if r.InstalledSizeKB > 0 {
		writeField(FieldInstalledSize, fmt.Sprintf("%d", r.InstalledSizeKB))
	}
	writeField(FieldSection, r.Section)
	writeField(FieldPriority, r.Priority)
	writeField(FieldHomepage, r.Homepage)
	writeField(FieldDepends, r.Depends)

	for k, v := range r.ExtraFields {
		writeField(ControlField(k), v)
	}

	if r.Description != "" {
		lines := strings.Split(r.Description, "\n")
		writeField(FieldDescription, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) == "" {
				b.WriteString(" .\n")
			} else if strings.HasPrefix(line, " ") {
				fmt.Fprintf(&b, "%s\n", line)
			} else {
				fmt.Fprintf(&b, " %s\n", line)
			}
		}
	}

	return b.String()
}

// splitList splits a comma-separated string into trimmed elements, or nil
// for an empty input. Used by the resolver for the outermost (alternative)
// split of a dependency expression.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			res = append(res, t)
		}
	}
	return res
}

// SplitList is the exported form of splitList, reused by package resolve.
func SplitList(s string) []string { return splitList(s) }
