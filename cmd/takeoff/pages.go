package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"elec-takeoff/internal/bom"
	"elec-takeoff/internal/draw"
)

var pagesCmd = &cobra.Command{
	Use:   "pages [project]",
	Short: "Print calibration and measured footage per page",
	Args:  cobra.ExactArgs(1),
	RunE:  runPages,
}

func init() {
	rootCmd.AddCommand(pagesCmd)
}

func runPages(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := loadProject(cfg, args[0], cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tLABEL\tSCALE\tOBJECTS\tCOUNTS\tSEGMENT\tPOLYLINE\tFREEFORM\tTOTAL")
	pages := st.Pages()
	for _, p := range pages {
		f := bom.PageFootage(p)
		scale := draw.UncalibratedLabel
		if p.Calibrated() {
			scale = fmt.Sprintf("%.2f px/ft", p.Scale())
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%.2f\t%.2f\t%.2f\t%s\n",
			p.PageIndex+1, display(p.Label), scale, len(p.Objects), f.Counts,
			f.Segment, f.Polyline, f.Freeform, p.Unit.Format(f.Total))
	}
	tw.Flush()

	total := bom.ProjectFootage(pages)
	fmt.Fprintf(out, "\nProject: %d counts, %.2f ft measured\n", total.Counts, total.Total)
	if len(total.ByCode) == 0 {
		return nil
	}
	codes := make([]string, 0, len(total.ByCode))
	for code := range total.ByCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(out, "  %-8s %.2f ft\n", display(code), total.ByCode[code])
	}
	return nil
}
