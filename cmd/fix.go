package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kasuganosora/relicsave/game/session"
	"github.com/spf13/cobra"
)

var fixCmd = &cobra.Command{
	Use:   "fix <save>",
	Short: "Repair every illegal relic in a save file",
	Long: `Re-validate a decoded save file and rewrite each illegal relic into the
closest legal one. The original file is backed up first when
editor.auto_backup is on.

Examples:
  relicsave fix ./saves/USER_DATA000
  relicsave fix --dry-run ./saves/USER_DATA000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		m, err := offlineManager(cmd.Context(), a)
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return runFix(cmd.Context(), cmd.OutOrStdout(), m, args[0], dryRun)
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)
	fixCmd.Flags().Bool("dry-run", false, "Report the repairs without writing the file")
}

func runFix(ctx context.Context, w io.Writer, m *session.Manager, path string, dryRun bool) error {
	s, err := m.Open(path)
	if err != nil {
		return err
	}
	defer m.Close(s.ID)

	rep, err := s.RepairAll()
	if err != nil {
		return err
	}
	printRepairs(w, rep)

	switch {
	case len(rep.Repaired) == 0:
		fmt.Fprintln(w, "nothing to write")
		return nil
	case dryRun:
		fmt.Fprintln(w, "dry run, file left unchanged")
		return nil
	}
	if err := m.Save(ctx, s); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s\n", s.Path)
	return nil
}

func printRepairs(w io.Writer, rep session.RepairReport) {
	fmt.Fprintf(w, "%d repaired, %d without a fix\n", len(rep.Repaired), len(rep.Failed))
	if len(rep.Repaired) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "HANDLE\tFROM\tTO\tKIND\tSTATE")
		for _, r := range rep.Repaired {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", r.Handle, r.From, r.Fix.ID, r.Fix.Kind, r.Verdict.State)
		}
		tw.Flush()
	}
	for _, h := range rep.Failed {
		fmt.Fprintf(w, "no fix for %s\n", h)
	}
}
