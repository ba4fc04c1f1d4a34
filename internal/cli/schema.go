package cli

import (
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"
	"github.com/spf13/cobra"

	"github.com/loomview/loom/internal/graph"
	"github.com/loomview/loom/internal/ui"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the built type graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		table := graph.BuildAllObjectTypes(catalog, nil, nil)
		refs := make([]string, 0, len(table))
		for ref := range table {
			refs = append(refs, ref)
		}
		sort.Strings(refs)

		for _, ref := range refs {
			obj, ok := table[ref].(*graphql.Object)
			if !ok {
				continue
			}
			fmt.Printf("%s %s\n", ui.Header(obj.Name()), ui.Hint("("+ref+")"))
			fields := obj.Fields()
			names := make([]string, 0, len(fields))
			for name := range fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %s: %s\n", name, fields[name].Type.String())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
