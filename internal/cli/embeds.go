package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treeseq/pkg/tree"
)

// embedsCommand creates the embeds command.
func (c *CLI) embedsCommand() *cobra.Command {
	var root bool

	cmd := &cobra.Command{
		Use:   "embeds PATTERN TARGET",
		Short: "Test whether one tree embeds into another",
		Long: `Print true if PATTERN topologically embeds into TARGET: labels are kept,
ancestors stay ancestors and siblings keep their order, while generations of
TARGET may be skipped. Trees are written in bracket notation, e.g. 1(2,3(1)).`,
		Example: `  treeseq embeds '1(2)' '1(3,2)'      # true
  treeseq embeds '1(2,3)' '1(3,2)'    # false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, err := tree.Parse(args[0])
			if err != nil {
				return fmt.Errorf("pattern: %w", err)
			}
			target, err := tree.Parse(args[1])
			if err != nil {
				return fmt.Errorf("target: %w", err)
			}

			var ok bool
			if root {
				ok = tree.RootEmbeds(pattern, target)
			} else {
				ok = tree.Embeds(pattern, target)
			}
			loggerFromContext(cmd.Context()).Debug("embedding test",
				"pattern", pattern.Key(), "target", target.Key(), "root", root, "result", ok)
			fmt.Fprintln(c.out, ok)
			return nil
		},
	}

	cmd.Flags().BoolVar(&root, "root", false, "require the pattern root to map onto the target root")

	return cmd
}
