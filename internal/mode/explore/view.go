package explore

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"genelink/internal/cohort"
	"genelink/internal/ui/styles"
)

// View renders the four linked panes plus the optional status bar. Rendering
// is a pure function of the snapshot: no store access, no side effects.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	leftWidth, rightWidth := m.columnWidths()
	filtersHeight, summaryHeight := m.leftHeights()
	samplesHeight, mutationsHeight := m.rightHeights()

	left := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderFiltersPane(leftWidth, filtersHeight),
		m.renderSummaryPane(leftWidth, summaryHeight),
	)
	right := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderSamplesPane(rightWidth, samplesHeight),
		m.renderMutationsPane(rightWidth, mutationsHeight),
	)

	content := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	if m.services.Config != nil && m.services.Config.UI.ShowStatusBar {
		return content + "\n" + m.renderStatusBar()
	}
	return content
}

// columnWidths splits the terminal into the narrow left column (filters +
// summary) and the wide right column (samples + mutations).
func (m Model) columnWidths() (left, right int) {
	left = m.width * 2 / 5
	right = m.width - left - 1 // gap
	return left, right
}

func (m Model) contentHeight() int {
	h := m.height
	if m.services.Config != nil && m.services.Config.UI.ShowStatusBar {
		h--
	}
	return h
}

func (m Model) leftHeights() (filters, summary int) {
	h := m.contentHeight()
	filters = h * 2 / 5
	if filters < 4 {
		filters = min(4, h)
	}
	summary = h - filters
	return filters, summary
}

func (m Model) rightHeights() (samples, mutations int) {
	h := m.contentHeight()
	samples = h / 2
	mutations = h - samples
	return samples, mutations
}

func (m Model) paneTitle(name string, visible, total int) string {
	if m.services.Config != nil && m.services.Config.UI.ShowCounts {
		return fmt.Sprintf("%s (%d/%d)", name, visible, total)
	}
	return name
}

func (m Model) renderFiltersPane(width, height int) string {
	ids := m.filterIDs()

	var sb strings.Builder
	if len(ids) == 0 {
		sb.WriteString(lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Italic(true).
			Render("No active filters"))
	}
	for i, id := range ids {
		prefix := "  "
		if m.focus == FocusFilters && i == m.filterIdx {
			prefix = styles.SelectionIndicatorStyle.Render("> ")
		}
		label := styles.FilterChipStyle.Render(id) + " " + describeFilter(m.state.ActiveFilters[id])
		sb.WriteString(prefix + styles.TruncateString(label, width-4))
		sb.WriteString("\n")
	}

	title := "Filters"
	if len(ids) > 0 {
		title = fmt.Sprintf("Filters (%d)", len(ids))
	}
	return styles.RenderWithTitleBorder(
		strings.TrimRight(sb.String(), "\n"),
		title, width, height,
		m.focus == FocusFilters,
		styles.PaneTitleColor,
		styles.BorderHighlightFocusColor,
	)
}

func (m Model) renderSamplesPane(width, height int) string {
	var content string
	if len(m.state.FilteredSamples) == 0 {
		content = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Italic(true).
			Padding(1, 2).
			Render("No samples match the active filters")
	} else {
		content = m.samples.View()
	}

	return styles.RenderWithTitleBorder(
		content,
		m.paneTitle("Samples", len(m.state.FilteredSamples), len(m.state.AllSamples)),
		width, height,
		m.focus == FocusSamples,
		styles.PaneTitleColor,
		styles.BorderHighlightFocusColor,
	)
}

func (m Model) renderMutationsPane(width, height int) string {
	var sb strings.Builder
	if len(m.state.FilteredMutations) == 0 {
		sb.WriteString(lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Italic(true).
			Padding(1, 2).
			Render("No mutations match the active filters"))
	}

	visible := height - 2
	start := 0
	if m.mutationIdx >= visible {
		start = m.mutationIdx - visible + 1
	}
	for i := start; i < len(m.state.FilteredMutations) && i-start < visible; i++ {
		mut := m.state.FilteredMutations[i]

		prefix := "  "
		if m.focus == FocusMutations && i == m.mutationIdx {
			prefix = styles.SelectionIndicatorStyle.Render("> ")
		}

		line := prefix +
			lipgloss.NewStyle().Foreground(styles.TextSecondaryColor).Render(mut.Gene) + " " +
			mut.AAChange + " " +
			styles.ConsequenceStyle(mut.Type).Render(string(mut.Type))
		if c := styles.FormatCarrierCount(mut.Count); c != "" {
			line += " " + lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(c)
		}
		sb.WriteString(styles.TruncateString(line, width-2))
		sb.WriteString("\n")
	}

	return styles.RenderWithTitleBorder(
		strings.TrimRight(sb.String(), "\n"),
		m.paneTitle("Mutations", len(m.state.FilteredMutations), len(m.state.AllMutations)),
		width, height,
		m.focus == FocusMutations,
		styles.PaneTitleColor,
		styles.BorderHighlightFocusColor,
	)
}

func (m Model) renderSummaryPane(width, height int) string {
	muted := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	body := lipgloss.NewStyle().Foreground(styles.TextDescriptionColor)

	var sb strings.Builder
	if m.services.DatasetName != "" {
		sb.WriteString(muted.Render("Dataset: ") + body.Render(m.services.DatasetName) + "\n")
	}
	sb.WriteString(fmt.Sprintf("%s %d of %d samples, %d of %d mutations\n",
		muted.Render("Cohort:"),
		len(m.state.FilteredSamples), len(m.state.AllSamples),
		len(m.state.FilteredMutations), len(m.state.AllMutations)))

	sb.WriteString("\n")
	switch {
	case m.state.Selection == nil:
		sb.WriteString(muted.Render("Nothing selected"))
	case m.state.Selection.Kind == cohort.SelectSample:
		m.writeSampleSummary(&sb, muted, body)
	default:
		m.writeMutationSummary(&sb, muted, body)
	}

	return styles.RenderWithTitleBorder(
		sb.String(),
		"Summary", width, height,
		false,
		styles.PaneTitleColor,
		styles.BorderHighlightFocusColor,
	)
}

func (m Model) writeSampleSummary(sb *strings.Builder, muted, body lipgloss.Style) {
	smp := m.state.SelectedSample()
	if smp == nil {
		sb.WriteString(muted.Render("Selected sample not in dataset: ") + body.Render(m.state.Selection.ID))
		return
	}

	sb.WriteString(muted.Render("Sample ") + body.Render(smp.SampleID))
	if !m.state.SelectionVisible() {
		sb.WriteString(" " + styles.ErrorStyle.UnsetPadding().Render("(filtered out)"))
	}
	sb.WriteString("\n")
	sb.WriteString(body.Render(fmt.Sprintf("%s, %s, age %d, %s\n",
		smp.Disease, smp.SampleType, smp.AgeAtDiagnosis, smp.VitalStatus)))

	muts := m.state.MutationsForSample(smp.SampleID)
	sb.WriteString(muted.Render(fmt.Sprintf("Visible mutations: %d\n", len(muts))))
	for _, mut := range muts {
		sb.WriteString("  " + mut.Gene + " " + mut.AAChange + "\n")
	}
}

func (m Model) writeMutationSummary(sb *strings.Builder, muted, body lipgloss.Style) {
	mut := m.state.SelectedMutation()
	if mut == nil {
		sb.WriteString(muted.Render("Selected mutation not in dataset: ") + body.Render(m.state.Selection.ID))
		return
	}

	sb.WriteString(muted.Render("Mutation ") + body.Render(mut.ID))
	if !m.state.SelectionVisible() {
		sb.WriteString(" " + styles.ErrorStyle.UnsetPadding().Render("(filtered out)"))
	}
	sb.WriteString("\n")
	sb.WriteString(body.Render(fmt.Sprintf("%s %s at position %d\n", mut.Gene, mut.AAChange, mut.Position)))
	sb.WriteString(styles.ConsequenceStyle(mut.Type).Render(string(mut.Type)))
	sb.WriteString(muted.Render(fmt.Sprintf("  carried by %d samples\n", len(mut.SampleIDs))))
}

// describeFilter renders a short human-readable label for a filter value.
func describeFilter(f cohort.Filter) string {
	switch f := f.(type) {
	case cohort.DiseaseEquals:
		return f.Disease
	case cohort.SampleTypeEquals:
		return f.SampleType
	case cohort.AgeRange:
		return fmt.Sprintf("%d-%d", f.MinAge, f.MaxAge)
	case cohort.MutationTypeIn:
		parts := make([]string, len(f.Types))
		for i, t := range f.Types {
			parts[i] = string(t)
		}
		return strings.Join(parts, ",")
	case cohort.GeneIn:
		return strings.Join(f.Genes, ",")
	case cohort.CustomSample:
		return f.Name
	case cohort.CustomMutation:
		return f.Name
	default:
		return ""
	}
}

var statusBarHints = []string{
	"tab focus", "enter select", "d disease", "t type", "a age", "g gene",
	"c clear filters", "x clear selection", "q quit",
}

// renderStatusBar joins as many whole hint segments as fit the width; narrow
// terminals lose trailing hints rather than showing a mid-hint cut.
func (m Model) renderStatusBar() string {
	budget := max(m.width-2, 1)

	var sb strings.Builder
	used := 0
	for _, hint := range statusBarHints {
		need := lipgloss.Width(hint)
		if used > 0 {
			need += lipgloss.Width(" • ")
		}
		if used+need > budget {
			continue
		}
		if used > 0 {
			sb.WriteString(" • ")
		}
		sb.WriteString(hint)
		used += need
	}
	return styles.StatusBarStyle.Render(sb.String())
}
