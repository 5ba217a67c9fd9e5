package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"elec-takeoff/internal/ocr"
	"elec-takeoff/internal/render"
)

var sheetsProject string

var sheetsCmd = &cobra.Command{
	Use:   "sheets [images...]",
	Short: "Read sheet numbers from page images",
	Long: `Recognize the sheet number in the title block of each page image.
Images are pages in the order given. With --project the numbers become the
page labels of that project file, which is rewritten in place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSheets,
}

func init() {
	sheetsCmd.Flags().StringVarP(&sheetsProject, "project", "p", "", "project file to label")
	rootCmd.AddCommand(sheetsCmd)
}

func runSheets(cmd *cobra.Command, args []string) error {
	reader, err := ocr.NewSheetReader()
	if err != nil {
		return err
	}
	defer reader.Close()

	labels := make(map[int]string)
	out := cmd.OutOrStdout()
	for i, path := range args {
		img, err := render.LoadImage(path)
		if err != nil {
			return err
		}
		sheet, err := reader.Read(i, img)
		if err != nil {
			return err
		}
		number := sheet.Number
		if number == "" {
			number = "?"
		} else {
			labels[i] = sheet.Number
		}
		fmt.Fprintf(out, "%d\t%s\t%s\n", i+1, number, path)
	}

	if sheetsProject == "" {
		return nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := loadProject(cfg, sheetsProject, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	for i, label := range labels {
		st.SetPageLabel(i, label)
	}
	if err := st.SaveProject(sheetsProject); err != nil {
		return err
	}
	fmt.Fprintf(out, "Labelled %d pages of %s\n", len(labels), sheetsProject)
	return nil
}
