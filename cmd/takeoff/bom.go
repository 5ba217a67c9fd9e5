package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"elec-takeoff/internal/bom"
)

var (
	bomMode string
	bomJSON bool
)

var bomCmd = &cobra.Command{
	Use:   "bom [project]",
	Short: "Print the bill of materials of a project",
	Long: `Derive the bill of materials of a project. Summarized mode groups rows
by tag code; itemized mode lists every object. Prices from the configuration
extend each row.`,
	Args: cobra.ExactArgs(1),
	RunE: runBOM,
}

func init() {
	bomCmd.Flags().StringVarP(&bomMode, "mode", "m", "summarized", "summarized or itemized")
	bomCmd.Flags().BoolVar(&bomJSON, "json", false, "print rows as JSON")
	rootCmd.AddCommand(bomCmd)
}

func runBOM(cmd *cobra.Command, args []string) error {
	mode, err := bom.ParseMode(bomMode)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := loadProject(cfg, args[0], cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	rows := bom.Derive(st.Pages(), st.Tags, st.MeasureOptions(), mode)
	rows, totals := bom.Price(rows, cfg.Prices)

	out := cmd.OutOrStdout()
	if bomJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	writeBOM(out, rows, totals, mode)
	return nil
}

func writeBOM(out io.Writer, rows []bom.Row, totals bom.Totals, mode bom.Mode) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if mode == bom.ModeItemized {
		fmt.Fprintln(tw, "CODE\t#\tPAGE\tKIND\tCATEGORY\tLENGTH FT\tRACEWAY LF\tCONDUCTOR LF\tBOXES\tEXTENDED")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
				display(r.Code), r.Sequence, r.PageIndex+1, r.Kind, r.Category,
				r.LengthFt, r.RacewayLf, r.ConductorLf, r.Boxes, r.ExtendedPrice)
		}
	} else {
		fmt.Fprintln(tw, "CODE\tNAME\tCATEGORY\tKIND\tPAGES\tTAGS\tRUNS\tLENGTH FT\tRACEWAY LF\tCONDUCTOR LF\tBOXES\tEXTENDED")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
				display(r.Code), r.Name, r.Category, r.Kind, pages(r.Pages),
				r.Tags, r.Runs, r.LengthFt, r.RacewayLf, r.ConductorLf, r.Boxes, r.ExtendedPrice)
		}
	}
	tw.Flush()

	fmt.Fprintf(out, "\nTotals: %d tags, %d runs, %.2f ft, raceway %.2f LF, conductor %.2f LF, %.0f boxes, material %.2f\n",
		totals.Tags, totals.Runs, totals.LengthFt, totals.RacewayLf, totals.ConductorLf, totals.Boxes, totals.Material)

	cats := bom.SummaryByCategory(rows)
	if len(cats) == 0 {
		return
	}
	fmt.Fprintln(out, "\nBy category:")
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range cats {
		fmt.Fprintf(tw, "  %s\t%d rows\t%d tags\t%.2f ft\t%.2f\n", c.Category, c.Rows, c.Tags, c.LengthFt, c.Cost)
	}
	tw.Flush()
}

func display(code string) string {
	if code == "" {
		return "-"
	}
	return code
}

func pages(list []int) string {
	parts := make([]string, len(list))
	for i, p := range list {
		parts[i] = strconv.Itoa(p + 1)
	}
	return strings.Join(parts, ",")
}
