package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	catalogx "github.com/tanpawarit/Chative-Student-Advisor/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	schedulex "github.com/tanpawarit/Chative-Student-Advisor/agent/schedule"
)

const wordWrap = 80

// render prints markdown through glamour unless --plain is set. Rendering
// failures fall back to the raw text.
func render(w io.Writer, markdown string) error {
	markdown = strings.TrimSpace(markdown)
	if plainOutput {
		_, err := fmt.Fprintln(w, markdown)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err == nil {
		var out string
		if out, err = r.Render(markdown); err == nil {
			_, err = io.WriteString(w, out)
			return err
		}
	}
	_, err = fmt.Fprintln(w, markdown)
	return err
}

func writeJSON(w io.Writer, res contractx.ToolResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// formatResult turns a tool result into markdown for the terminal.
func formatResult(res contractx.ToolResult) string {
	var b strings.Builder
	if !res.OK() {
		fmt.Fprintf(&b, "**Error** (%s): %s\n", res.Kind, res.Message)
		return b.String()
	}
	if res.Message != "" {
		b.WriteString(res.Message)
		b.WriteString("\n\n")
	}

	switch p := res.Payload.(type) {
	case string:
		b.WriteString(p)
		b.WriteString("\n")
	case []string:
		for _, id := range p {
			fmt.Fprintf(&b, "- %s\n", id)
		}
	case []catalogx.Course:
		writeCourseTable(&b, p)
	case catalogx.Course:
		writeCourse(&b, p)
	case schedulex.Schedule:
		fmt.Fprintf(&b, "### Schedule for %s, %s %d\n\n", p.StudentID, p.Term, p.Year)
		writeCourseTable(&b, p.Courses)
		fmt.Fprintf(&b, "\nTotal credits: **%d**\n", p.TotalCredits)
	}
	return b.String()
}

func writeCourseTable(b *strings.Builder, courses []catalogx.Course) {
	if len(courses) == 0 {
		return
	}
	b.WriteString("| Course | Title | Credits | Prerequisites |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, c := range courses {
		fmt.Fprintf(b, "| %s | %s | %d | %s |\n", c.CourseID, c.Title, c.Credits, prereqText(c.Prerequisites))
	}
}

func writeCourse(b *strings.Builder, c catalogx.Course) {
	fmt.Fprintf(b, "## %s: %s\n\n", c.CourseID, c.Title)
	if c.Description != "" {
		fmt.Fprintf(b, "%s\n\n", c.Description)
	}
	fmt.Fprintf(b, "- Credits: %d\n", c.Credits)
	fmt.Fprintf(b, "- Prerequisites: %s\n", prereqText(c.Prerequisites))
}

func prereqText(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}
