package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/docblocks/internal/config"
	"github.com/conneroisu/docblocks/internal/docs"
	"github.com/conneroisu/docblocks/internal/logging"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List stories and pages from the manifest",
	Long: `List the stories and pages declared by the manifest.

Examples:
  docblocks list              # Table output
  docblocks list -f json      # JSON output
  docblocks list -f yaml      # YAML output`,
	RunE: runList,
}

var listFlags *StandardFlags

func init() {
	rootCmd.AddCommand(listCmd)
	listFlags = AddStandardFlags(listCmd, "format")
}

type storyRow struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	HasSource bool   `json:"has_source" yaml:"has_source"`
}

type listing struct {
	Stories []storyRow         `json:"stories" yaml:"stories"`
	Pages   []docs.PageSummary `json:"pages" yaml:"pages"`
}

func runList(cmd *cobra.Command, args []string) error {
	if err := listFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	p, err := loadProject(cfg, logging.NewNop())
	if err != nil {
		return err
	}

	out := listing{Pages: p.builder.Pages()}
	for _, s := range p.registry.All() {
		out.Stories = append(out.Stories, storyRow{
			ID:        s.ID,
			Title:     s.DisplayTitle(),
			HasSource: s.Source != nil && s.Source.Error == "",
		})
	}

	w := cmd.OutOrStdout()
	switch listFlags.Format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(out)
	default:
		return outputTable(w, out)
	}
}

func outputTable(out io.Writer, l listing) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "STORY\tTITLE\tSOURCE")
	for _, s := range l.Stories {
		source := "-"
		if s.HasSource {
			source = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Title, source)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PAGE\tTITLE\tBLOCKS")
	for _, p := range l.Pages {
		fmt.Fprintf(w, "%s\t%s\t%d\n", p.ID, p.Title, p.Blocks)
	}

	return w.Flush()
}
