package ui

import (
	"fmt"
	"strings"
)

// Field is one labelled value of a summary block.
type Field struct {
	Key   string
	Value string
}

// Summary renders a titled block of fields.
func Summary(title string, fields []Field) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		b.WriteString("  ")
		b.WriteString(keyStyle.Render(f.Key))
		b.WriteString(f.Value)
		b.WriteString("\n")
	}
	return b.String()
}

// Change is one field update proposed or applied by a sync command.
type Change struct {
	Object string
	Field  string
	Old    string
	New    string
}

// String renders the change as "object field: old -> new".
func (c Change) String() string {
	if c.Field == "" {
		return fmt.Sprintf("%s: %q -> %q", c.Object, c.Old, c.New)
	}
	return fmt.Sprintf("%s %s: %q -> %q", c.Object, c.Field, c.Old, c.New)
}

// Changes renders a list of changes. Dry runs are marked as planned.
func Changes(changes []Change, dryRun bool) string {
	if len(changes) == 0 {
		return dimStyle.Render("no changes") + "\n"
	}
	mark := okStyle.Render(checkMark)
	if dryRun {
		mark = warningStyle.Render(planMark)
	}
	var b strings.Builder
	for _, c := range changes {
		fmt.Fprintf(&b, "%s %s\n", mark, c)
	}
	if dryRun {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d change(s) not applied, rerun with --no-dry-run", len(changes))))
		b.WriteString("\n")
	}
	return b.String()
}

// Section renders a section heading.
func Section(title string) string {
	return sectionStyle.Render(title) + "\n"
}

// Warning renders a warning line.
func Warning(msg string) string {
	return warningStyle.Render(warnMark+" "+msg) + "\n"
}

// Failure renders an error line.
func Failure(msg string) string {
	return failedStyle.Render(crossMark+" "+msg) + "\n"
}

// Success renders a success line.
func Success(msg string) string {
	return okStyle.Render(checkMark+" "+msg) + "\n"
}
