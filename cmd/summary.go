package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"genelink/internal/cohort"
	"genelink/internal/dataset"
	"genelink/internal/ui/markdown"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print a cohort summary for the configured dataset",
	Long:  `Loads the dataset and prints counts per consequence type, per disease, and the most frequently mutated genes without starting the interactive ui.`,
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().Bool("plain", false, "print raw markdown without terminal styling")
	summaryCmd.Flags().Int("top", 10, "number of top mutated genes to show")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	entry, ds, err := resolveDataset()
	if err != nil {
		return err
	}

	topN, _ := cmd.Flags().GetInt("top")
	md := summaryMarkdown(entry.Name, ds, topN)

	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}

	style := ""
	if cfg.UI.MarkdownStyle != "" {
		style = cfg.UI.MarkdownStyle
	}
	renderer, err := markdown.NewWithStyle(80, style)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("rendering summary: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// summaryMarkdown builds the dataset report as markdown so that one body of
// text serves both styled and plain output.
func summaryMarkdown(name string, ds *dataset.Dataset, topN int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Dataset %s\n\n", name)
	fmt.Fprintf(&sb, "%d genes, %d mutations, %d samples\n\n",
		len(ds.Genes), len(ds.Mutations), len(ds.Samples))

	sb.WriteString("## Mutations by consequence\n\n")
	byType := map[cohort.ConsequenceType]int{}
	for _, m := range ds.Mutations {
		byType[m.Type]++
	}
	for _, t := range cohort.ConsequenceTypes {
		if n := byType[t]; n > 0 {
			fmt.Fprintf(&sb, "- **%s**: %d\n", t, n)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Samples by disease\n\n")
	byDisease := map[string]int{}
	for _, s := range ds.Samples {
		byDisease[s.Disease]++
	}
	diseases := make([]string, 0, len(byDisease))
	for d := range byDisease {
		diseases = append(diseases, d)
	}
	sort.Strings(diseases)
	for _, d := range diseases {
		label := d
		if label == "" {
			label = "(unknown)"
		}
		fmt.Fprintf(&sb, "- **%s**: %d\n", label, byDisease[d])
	}
	sb.WriteString("\n")

	topN = max(topN, 0)
	fmt.Fprintf(&sb, "## Top %d mutated genes\n\n", topN)
	type geneCount struct {
		gene     string
		carriers int
	}
	byGene := map[string]int{}
	for _, m := range ds.Mutations {
		byGene[m.Gene] += len(m.SampleIDs)
	}
	counts := make([]geneCount, 0, len(byGene))
	for g, n := range byGene {
		counts = append(counts, geneCount{g, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].carriers != counts[j].carriers {
			return counts[i].carriers > counts[j].carriers
		}
		return counts[i].gene < counts[j].gene
	})
	topN = min(topN, len(counts))
	for _, gc := range counts[:topN] {
		fmt.Fprintf(&sb, "- **%s**: %d carriers\n", gc.gene, gc.carriers)
	}

	return sb.String()
}
