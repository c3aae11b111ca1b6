package cmd

import (
	"fmt"
	"math"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"genelink/internal/dataset"
	"genelink/internal/stats"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <disease>",
	Short: "Test genes for mutation enrichment in one disease",
	Long: `Runs Fisher's exact test per gene on a 2x2 table of carrier status
against the named disease versus the rest of the cohort, and prints genes
ordered by p-value.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().Float64("alpha", 1.0, "only report genes with p-value at or below this threshold")
	enrichCmd.Flags().Float64("confidence", 0.95, "confidence level for the odds ratio interval")
	rootCmd.AddCommand(enrichCmd)
}

// geneEnrichment is one row of the enrichment report.
type geneEnrichment struct {
	Gene            string
	CarriersIn      int
	CarriersOut     int
	NonCarriersIn   int
	NonCarriersOut  int
	OddsRatioResult stats.OddsRatioResult
}

func runEnrich(cmd *cobra.Command, args []string) error {
	disease := args[0]

	_, ds, err := resolveDataset()
	if err != nil {
		return err
	}

	confidence, _ := cmd.Flags().GetFloat64("confidence")
	results, err := enrichGenes(ds, disease, confidence)
	if err != nil {
		return err
	}

	alpha, _ := cmd.Flags().GetFloat64("alpha")

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GENE\tP-VALUE\tODDS RATIO\tCI\tCARRIERS IN/OUT")
	for _, r := range results {
		if r.OddsRatioResult.PValue > alpha {
			continue
		}
		fmt.Fprintf(w, "%s\t%.4g\t%s\t[%.2f, %.2f]\t%d/%d\n",
			r.Gene,
			r.OddsRatioResult.PValue,
			formatOddsRatio(r.OddsRatioResult.OddsRatio),
			r.OddsRatioResult.CILower,
			r.OddsRatioResult.CIUpper,
			r.CarriersIn, r.CarriersOut,
		)
	}
	return w.Flush()
}

// enrichGenes builds a per-gene carrier-vs-disease contingency table and
// scores it with Fisher's exact test.
func enrichGenes(ds *dataset.Dataset, disease string, confidence float64) ([]geneEnrichment, error) {
	inDisease := map[string]bool{}
	total := 0
	for _, s := range ds.Samples {
		inDisease[s.SampleID] = s.Disease == disease
		if s.Disease == disease {
			total++
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("no samples with disease %q in dataset", disease)
	}

	carriers := map[string]map[string]bool{}
	for _, m := range ds.Mutations {
		set := carriers[m.Gene]
		if set == nil {
			set = map[string]bool{}
			carriers[m.Gene] = set
		}
		for _, id := range m.SampleIDs {
			if _, known := inDisease[id]; known {
				set[id] = true
			}
		}
	}

	results := make([]geneEnrichment, 0, len(carriers))
	for gene, set := range carriers {
		var t stats.Table
		for id, isIn := range inDisease {
			switch {
			case set[id] && isIn:
				t.A++
			case set[id]:
				t.B++
			case isIn:
				t.C++
			default:
				t.D++
			}
		}
		results = append(results, geneEnrichment{
			Gene:            gene,
			CarriersIn:      t.A,
			CarriersOut:     t.B,
			NonCarriersIn:   t.C,
			NonCarriersOut:  t.D,
			OddsRatioResult: stats.OddsRatioCI(t, confidence),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].OddsRatioResult.PValue != results[j].OddsRatioResult.PValue {
			return results[i].OddsRatioResult.PValue < results[j].OddsRatioResult.PValue
		}
		return results[i].Gene < results[j].Gene
	})
	return results, nil
}

func formatOddsRatio(or float64) string {
	if math.IsInf(or, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", or)
}
