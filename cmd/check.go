package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kasuganosora/relicsave/game/item"
	"github.com/kasuganosora/relicsave/game/session"
	"github.com/spf13/cobra"
)

// errFlagged makes check exit non-zero when it finds illegal relics.
var errFlagged = errors.New("illegal relics found")

var checkCmd = &cobra.Command{
	Use:   "check <save>",
	Short: "Validate every relic in a save file",
	Long: `Open a decoded save file read-only, validate every relic and print the
ones that fail. Exits non-zero when any relic is illegal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		m, err := offlineManager(cmd.Context(), a)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		all, _ := cmd.Flags().GetBool("all")
		return runCheck(cmd.OutOrStdout(), m, args[0], checkOptions{JSON: asJSON, All: all})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("json", false, "Print the report as JSON")
	checkCmd.Flags().Bool("all", false, "List every relic, not only flagged ones")
}

type checkOptions struct {
	JSON bool
	All  bool
}

// checkReport is the JSON form of a check run.
type checkReport struct {
	Summary session.Summary `json:"summary"`
	Relics  []item.Relic    `json:"relics"`
}

func runCheck(w io.Writer, m *session.Manager, path string, opts checkOptions) error {
	s, err := m.Open(path)
	if err != nil {
		return err
	}
	defer m.Close(s.ID)

	sum := s.Sweep()
	var listed []item.Relic
	for _, r := range s.Relics() {
		if opts.All || r.Verdict.State != item.Valid {
			listed = append(listed, r)
		}
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(checkReport{Summary: s.Summary(), Relics: listed}); err != nil {
			return err
		}
	} else {
		info := s.Summary()
		fmt.Fprintf(w, "%s: player %q, %d relics, %d illegal, %d illegal-curse, %d strict-invalid\n",
			info.Path, info.Player, sum.Relics, sum.Illegal, sum.CurseIllegal, sum.StrictInvalid)
		if len(listed) > 0 {
			printRelics(w, listed)
		}
	}
	if sum.Illegal > 0 {
		return errFlagged
	}
	return nil
}

func printRelics(w io.Writer, relics []item.Relic) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HANDLE\tID\tSTATE\tREASON\tSLOT\tDETAIL")
	for _, r := range relics {
		v := r.Verdict
		detail := v.Violation.Detail
		if v.StrictReason != "" {
			detail = v.StrictReason
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%s\n", r.Handle, r.ID, v.State, v.Violation.Reason, v.Violation.Slot, detail)
	}
	tw.Flush()
}
