package cli

import (
	"fmt"
	"sort"
	"strings"

	"internmatch/internal/taxonomy"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy [file]",
	Short: "Inspect or export the matching taxonomy",
	Long: `Load a taxonomy file (or the configured one, or the built-in tables) and
print a summary of its skills, synonyms, regions, sectors and role categories.

Use --export to print the built-in taxonomy as YAML, a starting point for a
custom taxonomy file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTaxonomy,
}

var taxonomyExport bool

func init() {
	taxonomyCmd.Flags().BoolVar(&taxonomyExport, "export", false, "Print the built-in taxonomy as YAML")
}

func runTaxonomy(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if taxonomyExport {
		data, err := yaml.Marshal(taxonomy.Default())
		if err != nil {
			return fmt.Errorf("failed to export taxonomy: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	path := cfg.Match.TaxonomyFile
	if len(args) == 1 {
		path = args[0]
	}
	store, err := taxonomy.OpenStore(path, logger)
	if err != nil {
		return fmt.Errorf("failed to load taxonomy: %w", err)
	}
	tax := store.Current()

	source := path
	if source == "" {
		source = "built-in"
	}
	_, _ = fmt.Fprintf(out, "Taxonomy: %s (%s)\n", tax.Name, source)

	stats := tax.Stats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(out, "  %-16s %d\n", k+":", stats[k])
	}
	_, _ = fmt.Fprintf(out, "Regions: %s\n", strings.Join(tax.RegionNames(), ", "))
	_, _ = fmt.Fprintf(out, "Default sector: %s\n", tax.DefaultSector)
	return nil
}
