package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"elec-takeoff/internal/project"
	"elec-takeoff/internal/store"
)

var storePath string

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the project library",
	Long: `The project library is a SQLite database of named takeoff projects.
Its location comes from the configuration unless --db is given.`,
}

var storeSaveCmd = &cobra.Command{
	Use:   "save [name] [project]",
	Short: "Save a project file into the library",
	Args:  cobra.ExactArgs(2),
	RunE:  runStoreSave,
}

var storeLoadCmd = &cobra.Command{
	Use:   "load [name] [output]",
	Short: "Write a library project to a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runStoreLoad,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library projects",
	Args:  cobra.NoArgs,
	RunE:  runStoreList,
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Remove a project from the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreDelete,
}

func init() {
	storeCmd.PersistentFlags().StringVar(&storePath, "db", "", "library database (default from config)")
	storeCmd.AddCommand(storeSaveCmd, storeLoadCmd, storeListCmd, storeDeleteCmd)
	rootCmd.AddCommand(storeCmd)
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	path := storePath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.StorePath
	}
	return store.Open(cmd.Context(), path)
}

func runStoreSave(cmd *cobra.Command, args []string) error {
	f, warnings, err := project.Load(args[1])
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Error())
	}

	lib, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.Save(cmd.Context(), args[0], f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d pages)\n", args[0], len(f.Pages))
	return nil
}

func runStoreLoad(cmd *cobra.Command, args []string) error {
	lib, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	f, warnings, err := lib.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Error())
	}
	if err := f.Save(args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s to %s\n", args[0], args[1])
	return nil
}

func runStoreList(cmd *cobra.Command, args []string) error {
	lib, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	entries, err := lib.List(cmd.Context())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tUPDATED\tSIZE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", e.Name, e.UpdatedAt.Local().Format("2006-01-02 15:04"), e.Size)
	}
	return tw.Flush()
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	lib, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
