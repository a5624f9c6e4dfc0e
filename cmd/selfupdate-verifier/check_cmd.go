package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/open-edge-platform/selfupdate-verifier/internal/config"
	"github.com/open-edge-platform/selfupdate-verifier/internal/instsys"
	"github.com/open-edge-platform/selfupdate-verifier/internal/repository"
	"github.com/open-edge-platform/selfupdate-verifier/internal/selfupdate"
	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/general/slice"
	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/logger"
)

// Check command flags
var (
	packagesFile string
	rpmRoot      string
	repoPath     string
	gpgKey       string
	outFormat    string
	prettyJSON   bool
	warnOnly     bool
	showProgress bool
)

var outputFormats = []string{"text", "json"}

// createCheckCommand creates the check subcommand
func createCheckCommand() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check [flags] REPO_ID",
		Short: "Verify a self-update repository against the installation system",
		Long: `Check reads the packages of the installation system and of the self-update
repository REPO_ID and reports tracked packages that the repository would
downgrade or move to another major/minor release.

REPO_ID names a repository from the configuration file. Use --repo-path to
check a local directory, file:// URL or ISO image without configuring it.`,
		Args: cobra.ExactArgs(1),
		RunE: executeCheck,
	}

	addInstalledFlags(checkCmd.Flags())
	checkCmd.Flags().StringVar(&repoPath, "repo-path", "",
		"Location of the repository (overrides the configured path for REPO_ID)")
	checkCmd.Flags().StringVar(&gpgKey, "gpg-key", "",
		"Armored public key used to verify repodata/repomd.xml.asc (with --repo-path)")
	checkCmd.Flags().StringVar(&outFormat, "format", "text",
		"Output format: text or json")
	checkCmd.Flags().BoolVar(&prettyJSON, "pretty", true,
		"Pretty-print JSON output (only for --format json)")
	checkCmd.Flags().BoolVar(&warnOnly, "warn-only", false,
		"Report mismatches without failing")
	checkCmd.Flags().BoolVar(&showProgress, "progress", false,
		"Show progress while reading RPM headers")
	return checkCmd
}

func addInstalledFlags(fs *pflag.FlagSet) {
	fs.StringVar(&packagesFile, "packages-file", "",
		"Package list of the installation system (default from config, "+instsys.DefaultPackagesFile+")")
	fs.StringVar(&rpmRoot, "rpm-root", "",
		"Read installed packages from the rpm database below this root instead")
}

// executeCheck handles the check command logic
func executeCheck(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	repoID := args[0]

	if !slice.Contains(outputFormats, outFormat) {
		return fmt.Errorf("invalid --format %q (expected text|json)", outFormat)
	}

	helpers := config.NewConfigHelpers(globalConfig)

	var installed selfupdate.PackageSource
	switch {
	case rpmRoot != "":
		installed = instsys.RPMDatabase{Root: rpmRoot}
	case packagesFile != "":
		installed = instsys.PackagesFile{Path: packagesFile}
	default:
		installed = helpers.InstalledSource()
	}

	registry := helpers.Registry()
	if repoPath != "" {
		registry.Register(&repository.Repository{ID: repoID, Path: repoPath, GPGKey: gpgKey})
	}
	if repo, ok := registry.Get(repoID); ok && showProgress {
		repo.Progress = cmd.ErrOrStderr()
	}

	log.Infof("verifying self-update repository %s", repoID)
	verifier, err := selfupdate.NewVerifier(repoID, registry, installed,
		selfupdate.WithTrackedPackages(helpers.TrackedPackages()...),
		selfupdate.WithLogger(log))
	if err != nil {
		return fmt.Errorf("self-update verification failed: %w", err)
	}

	log.Debugf("repository %s offers %v, installed %d tracked packages",
		verifier.RepositoryID(), verifier.UpdatePackages(), len(verifier.InstalledPackages()))

	report, err := verifier.Check()
	if err != nil {
		return fmt.Errorf("self-update verification failed: %w", err)
	}

	if err := writeReport(cmd, report); err != nil {
		return err
	}

	if !report.Blocking() {
		log.Infof("self-update repository %s matches the installation system", repoID)
		return nil
	}
	log.Warnf("self-update repository %s: %d downgraded, %d too new packages",
		repoID, len(report.Downgraded), len(report.TooNew))
	if warnOnly {
		return nil
	}
	return fmt.Errorf("%w: repository %s", selfupdate.ErrVerificationFailed, repoID)
}

func writeReport(cmd *cobra.Command, report *selfupdate.Report) error {
	out := cmd.OutOrStdout()
	if outFormat == "text" {
		return report.WriteText(out)
	}

	var (
		b   []byte
		err error
	)
	if prettyJSON {
		b, err = json.MarshalIndent(report, "", "  ")
	} else {
		b, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}
