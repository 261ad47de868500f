package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/recommendation"
)

// Table is a static table rendered with lipgloss.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given title and headers.
func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers}
}

// AddRow appends a row.
func (t *Table) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// View renders the table.
func (t *Table) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	header := styles.Bold.Padding(0, 1)
	cell := styles.Body.Padding(0, 1)
	sep := styles.Separator.Render("|")

	line := func(st lipgloss.Style, cols []string) {
		for i, c := range cols {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				sb.WriteString(sep)
			}
			sb.WriteString(st.Width(widths[i]).Render(c))
		}
		sb.WriteString("\n")
	}

	line(header, t.Headers)
	sb.WriteString(styles.Separator.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")
	for _, row := range t.Rows {
		line(cell, row)
	}
	return sb.String()
}

// RenderResults renders recommendations best match first followed by the
// profile summary.
func RenderResults(res recommendation.Results, styles Styles) string {
	var sb strings.Builder
	sb.WriteString(styles.Header.Render("Your card recommendations"))
	sb.WriteString("\n")

	if len(res.Recommendations) == 0 {
		sb.WriteString(styles.Muted.Render("No cards matched this profile."))
		sb.WriteString("\n")
	}
	for i, r := range res.Recommendations {
		var card strings.Builder
		fmt.Fprintf(&card, "%s  %s\n", styles.Bold.Render(fmt.Sprintf("%d. %s", i+1, r.CardName)),
			styles.Badge.Render(fmt.Sprintf("%.0f%% match", r.MatchPercentage)))
		if r.Issuer != "" {
			fmt.Fprintf(&card, "%s\n", styles.Muted.Render(r.Issuer))
		}
		fmt.Fprintf(&card, "Annual fee: %s   Joining fee: %s\n", r.AnnualFee, r.JoiningFee)
		fmt.Fprintf(&card, "Rewards: %s\n", r.Rewards)
		for _, extra := range []struct{ label, value string }{
			{"Premium services", r.PremiumServices},
			{"Travel benefits", r.TravelBenefits},
			{"Lifestyle benefits", r.LifestyleBenefits},
		} {
			if extra.value != "" {
				fmt.Fprintf(&card, "%s: %s\n", extra.label, extra.value)
			}
		}
		for _, reason := range r.MatchReasons {
			fmt.Fprintf(&card, "%s %s\n", styles.Success.Render("✓"), reason)
		}
		sb.WriteString(styles.Card.Render(strings.TrimRight(card.String(), "\n")))
		sb.WriteString("\n")
	}

	top := NewTable("Top spending categories", "Category", "Monthly amount")
	for _, c := range res.UserProfile.TopCategories {
		top.AddRow(c.Category, fmt.Sprintf("%.2f", c.Amount))
	}
	sb.WriteString(top.View(styles))
	fmt.Fprintf(&sb, "Lifestyle score: %d/100\n", res.UserProfile.LifestyleScore)
	return sb.String()
}

// RenderSteps renders the flow with every field path.
func RenderSteps(steps []profile.StepInfo, styles Styles) string {
	var sb strings.Builder
	for _, st := range steps {
		t := NewTable(fmt.Sprintf("Step %d of %d: %s", st.Number, len(steps), st.Title), "Field", "Path", "Kind", "Options")
		for _, f := range st.Fields {
			opts := make([]string, 0, len(f.Options))
			for _, o := range f.Options {
				opts = append(opts, o.Value)
			}
			t.AddRow(f.Label, f.Path, string(f.Kind), strings.Join(opts, ","))
		}
		sb.WriteString(t.View(styles))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderViolations renders a step's violations as a list.
func RenderViolations(step int, violations []string, styles Styles) string {
	if len(violations) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, v := range violations {
		sb.WriteString(styles.Error.Render(fmt.Sprintf("step %d: %s", step, v)))
		sb.WriteString("\n")
	}
	return sb.String()
}
