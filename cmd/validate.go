package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/docblocks/internal/config"
	"github.com/conneroisu/docblocks/internal/logging"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the manifest and every page it declares",
	Long: `Load the manifest, resolve every referenced file and assemble every page.
Blocks that render degraded (missing source, toolbar on several stories) are
reported as warnings; structural problems fail the command.

Examples:
  docblocks validate
  docblocks validate --manifest docs/docblocks.yml`,
	RunE: runValidate,
}

var validateStrict bool

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	rec := logging.NewRecorder()
	p, err := loadProject(cfg, rec)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, summary := range p.builder.Pages() {
		page, err := p.builder.Page(cmd.Context(), summary.ID)
		if err != nil {
			return fmt.Errorf("page %s: %w", summary.ID, err)
		}
		// Rendering runs the per-block decisions that emit diagnostics.
		if err := page.Component().Render(cmd.Context(), io.Discard); err != nil {
			return fmt.Errorf("page %s: %w", summary.ID, err)
		}
	}

	warnings := 0
	for _, e := range rec.Entries() {
		if e.Level != logging.LevelWarn {
			continue
		}
		warnings++
		fmt.Fprintf(out, "warning: %s: %v\n", e.Message, e.Err)
	}

	fmt.Fprintf(out, "%s: %d stories, %d pages, %d warnings\n",
		p.manifest.Path(), p.registry.Count(), len(p.manifest.Pages), warnings)

	if validateStrict && warnings > 0 {
		return fmt.Errorf("%d warnings", warnings)
	}
	return nil
}
