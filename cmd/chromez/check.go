package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zoobzio/chromez/internal/check"
)

var checkExpect int

func init() {
	checkCmd.Flags().IntVar(&checkExpect, "expect", -1, "fail unless the trace holds exactly this many events")
}

var checkCmd = &cobra.Command{
	Use:   "check <trace.json>...",
	Short: "Validate trace files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyColorFlag(cmd); err != nil {
			return err
		}

		var failed int
		for _, path := range args {
			if err := checkOne(cmd.OutOrStdout(), path, checkExpect); err != nil {
				failColor.Fprintf(cmd.ErrOrStderr(), "FAIL ")
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d trace files failed", failed, len(args))
		}
		return nil
	},
}

// checkOne validates one file and prints its summary.
func checkOne(w io.Writer, path string, expect int) error {
	report, err := check.File(path)
	if err != nil {
		return err
	}
	if expect >= 0 && len(report.Events) != expect {
		return fmt.Errorf("expected %d events, found %d", expect, len(report.Events))
	}
	printReport(w, path, report)
	return nil
}

func printReport(w io.Writer, path string, report check.Report) {
	okColor.Fprintf(w, "OK ")
	fmt.Fprintf(w, "%s\n", path)

	labelColor.Fprintf(w, "  events:  ")
	fmt.Fprintf(w, "%d\n", len(report.Events))

	labelColor.Fprintf(w, "  threads: ")
	fmt.Fprintf(w, "%d\n", len(report.Threads))

	labelColor.Fprintf(w, "  async:   ")
	fmt.Fprintf(w, "%d pairs\n", report.AsyncPairs)

	phases := make([]string, 0, len(report.Phases))
	for ph := range report.Phases {
		phases = append(phases, ph)
	}
	sort.Strings(phases)
	for _, ph := range phases {
		labelColor.Fprintf(w, "  ph=%s:    ", ph)
		fmt.Fprintf(w, "%d\n", report.Phases[ph])
	}
}
