package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/docblocks/internal/config"
	"github.com/conneroisu/docblocks/internal/server"
)

var renderCmd = &cobra.Command{
	Use:     "render [page]",
	Aliases: []string{"r"},
	Short:   "Render docs pages to static HTML",
	Long: `Render docs pages to static HTML. Previews are written in their initial
state: source collapsed and zoom at 1.

Examples:
  docblocks render buttons                # Write the buttons page to stdout
  docblocks render buttons -o out.html    # Write it to a file
  docblocks render --all -o site/         # Write every page as site/<id>.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var (
	renderFlags *StandardFlags
	renderAll   bool
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderFlags = AddStandardFlags(renderCmd, "output")
	renderCmd.Flags().BoolVar(&renderAll, "all", false, "Render every page into the --output directory")
}

func runRender(cmd *cobra.Command, args []string) error {
	switch {
	case renderAll && len(args) > 0:
		return fmt.Errorf("cannot combine a page argument with --all")
	case renderAll && renderFlags.Output == "":
		return fmt.Errorf("--all requires --output")
	case !renderAll && len(args) == 0:
		return fmt.Errorf("page id required (or --all)")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	p, err := loadProject(cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	if !renderAll {
		if renderFlags.Output == "" {
			return p.renderPage(cmd, args[0], cmd.OutOrStdout())
		}
		return p.renderPageFile(cmd, args[0], renderFlags.Output)
	}

	if err := os.MkdirAll(renderFlags.Output, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, page := range p.builder.Pages() {
		path := filepath.Join(renderFlags.Output, page.ID+".html")
		if err := p.renderPageFile(cmd, page.ID, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	}
	return nil
}

func (p *project) renderPage(cmd *cobra.Command, id string, w io.Writer) error {
	page, err := p.builder.Page(cmd.Context(), id)
	if err != nil {
		return err
	}
	return server.StaticDocument(page.Title, page.Component()).Render(cmd.Context(), w)
}

func (p *project) renderPageFile(cmd *cobra.Command, id, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return p.renderPage(cmd, id, f)
}
