package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/selfupdate-verifier/internal/ospackage/rpmutils"
)

// createCompareVersionsCommand creates the compare-versions subcommand
func createCompareVersionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare-versions VERSION1 VERSION2",
		Short: "Compare two package versions",
		Long: `Compare-versions prints "<", "=" or ">" depending on whether VERSION1 is
older than, equal to or newer than VERSION2, followed by the major.minor
release of both versions when they carry one.`,
		Args: cobra.ExactArgs(2),
		RunE: executeCompareVersions,
	}
}

func executeCompareVersions(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	op := "="
	switch rpmutils.CompareVersions(args[0], args[1]) {
	case -1:
		op = "<"
	case 1:
		op = ">"
	}
	if _, err := fmt.Fprintf(out, "%s %s %s\n", args[0], op, args[1]); err != nil {
		return err
	}

	for _, v := range args {
		major, minor, err := rpmutils.MajorMinor(v)
		if err != nil {
			fmt.Fprintf(out, "%s: no major.minor release\n", v)
			continue
		}
		fmt.Fprintf(out, "%s: release %d.%d\n", v, major, minor)
	}
	return nil
}
