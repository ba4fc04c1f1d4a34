package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/loomview/loom/internal/graph"
	"github.com/loomview/loom/internal/lexicon"
	"github.com/loomview/loom/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the lexicon directory and build the type graph",
	Long: `Loads every lexicon under the configured directory, builds the full
type graph, and reports any refs that degraded to a scalar fallback.

With --strict, unresolved refs after the final pass fail the check
instead of degrading.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		b := &graph.Builder{Catalog: catalog, Strict: strictBuild}
		table, err := b.Build()
		if err != nil {
			return err
		}

		mains, fragments := catalog.ObjectRefs()
		fmt.Println(ui.Header("Schema check"))
		fmt.Printf("  %d lexicons, %d main types, %d fragments, %d built types\n",
			catalog.Len(), len(mains), len(fragments), len(table))

		unresolved := b.Unresolved()
		if len(unresolved) == 0 {
			fmt.Println(ui.Success("all refs resolved"))
			return nil
		}
		refs := make([]string, 0, len(unresolved))
		for ref := range unresolved {
			refs = append(refs, ref)
		}
		sort.Strings(refs)
		for _, ref := range refs {
			for _, target := range unresolved[ref] {
				fmt.Println(ui.Warningf("%s: %s degraded to scalar fallback",
					ui.Ref(ref), target))
			}
		}
		fmt.Println(ui.Hint("refs outside the lexicon directory fall back to String; check spelling for local ones"))
		return nil
	},
}

func loadCatalog() (*lexicon.Catalog, error) {
	lexicons, err := lexicon.LoadDir(cfg.Lexicons.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicons: %w", err)
	}
	if len(lexicons) == 0 {
		return nil, fmt.Errorf("no lexicons found under %s", cfg.Lexicons.Dir)
	}
	catalog := lexicon.NewCatalog()
	catalog.Replace(lexicons)
	return catalog, nil
}

func init() {
	checkCmd.Flags().BoolVar(&strictBuild, "strict", false, "fail on unresolved refs instead of degrading")
	rootCmd.AddCommand(checkCmd)
}
