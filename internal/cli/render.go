package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treeseq/pkg/checkpoint"
	"github.com/matzehuels/treeseq/pkg/errors"
	"github.com/matzehuels/treeseq/pkg/render"
	"github.com/matzehuels/treeseq/pkg/tree"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string // output file path; empty writes to stdout
	format     string // dot, svg or png; inferred from output when empty
	checkpoint string // read the sequence from this checkpoint file
	title      string // caption drawn above the diagram
	index      bool   // number each tree
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [TREE...]",
		Short: "Draw trees or a saved sequence with Graphviz",
		Long: `Draw the given trees, or the sequence stored in a checkpoint, left to right
as one diagram. The format follows the output extension (.dot, .svg, .png)
unless --format is set; without --output DOT is written to stdout.`,
		Example: `  treeseq render '1(2,3)' '2(1)' -o pair.svg
  treeseq render --from-checkpoint best.toml -o best.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg or png")
	cmd.Flags().StringVar(&opts.checkpoint, "from-checkpoint", "", "render the sequence stored in this checkpoint")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title")
	cmd.Flags().BoolVar(&opts.index, "index", true, "number the trees")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, opts renderOpts) error {
	logger := loggerFromContext(cmd.Context())

	trees, title, err := renderInput(args, opts)
	if err != nil {
		return err
	}

	format := resolveFormat(opts.format, opts.output)
	data, err := render.Render(trees, format, render.Options{Title: title, Index: opts.index})
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	logger.Debug("rendered trees", "count", len(trees), "format", format, "bytes", len(data))
	ui := c.ui()
	ui.success("Rendered %d trees", len(trees))
	ui.file(opts.output)
	return nil
}

// renderInput returns the trees to draw and the title to use.
func renderInput(args []string, opts renderOpts) ([]*tree.Tree, string, error) {
	if opts.checkpoint != "" {
		if len(args) > 0 {
			return nil, "", errors.New(errors.ErrCodeInvalidInput, "pass trees or --from-checkpoint, not both")
		}
		cp, err := checkpoint.NewFileStore(opts.checkpoint).Load()
		if err != nil {
			return nil, "", err
		}
		if err := cp.Validate(); err != nil {
			return nil, "", err
		}
		trees, err := cp.Trees()
		if err != nil {
			return nil, "", err
		}
		if len(trees) == 0 {
			return nil, "", errors.New(errors.ErrCodeInvalidInput, "checkpoint %s holds an empty sequence", opts.checkpoint)
		}
		title := opts.title
		if title == "" {
			title = fmt.Sprintf("n=%d, length %d", cp.Labels, cp.Best)
		}
		return trees, title, nil
	}

	if len(args) == 0 {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "no trees given")
	}
	trees, err := tree.ParseList(args)
	if err != nil {
		return nil, "", err
	}
	return trees, opts.title, nil
}

// resolveFormat picks the explicit format, else the output extension, else DOT.
func resolveFormat(format, output string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".svg":
		return render.FormatSVG
	case ".png":
		return render.FormatPNG
	default:
		return render.FormatDOT
	}
}
