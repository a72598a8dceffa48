package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artpar/typesmith/core/codegen"
	"github.com/artpar/typesmith/core/exporter"
	"github.com/artpar/typesmith/core/formatter"
	"github.com/artpar/typesmith/core/schema"
)

func (c *Channel) listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "shapes"},
		Short:   "List registered shapes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.getFormatter(cmd)
			if err != nil {
				return err
			}
			shapes := formatter.ShapesOf(c.registry.List())
			return f.FormatShapes(cmd.OutOrStdout(), shapes, c.getFormatOptions(cmd))
		},
	}

	c.addOutputFlags(cmd)

	return cmd
}

func (c *Channel) renderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Print the generated file for one shape",
		Long: `Print the TypeScript file generated for one registered shape,
including its import lines.

The name may be written with "::", "." or "/" separators.

Examples:
  typesmith render Billing::Invoice
  typesmith render billing/invoice --body-only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.lookup(args[0])
			if err != nil {
				return err
			}

			bodyOnly, _ := cmd.Flags().GetBool("body-only")
			if bodyOnly {
				body, err := d.RenderType()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), body)
				return nil
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			unit, err := codegen.New(codegen.WithExtension(cfg.Output.Extension)).RenderUnit(d)
			if err != nil {
				return err
			}

			showPath, _ := cmd.Flags().GetBool("path")
			if showPath {
				fmt.Fprintf(cmd.OutOrStdout(), "// %s\n", unit.Path)
			}
			fmt.Fprintln(cmd.OutOrStdout(), unit.Content)
			return nil
		},
	}

	cmd.Flags().Bool("body-only", false, "print only the interface block")
	cmd.Flags().Bool("path", false, "print the output path as a leading comment")

	return cmd
}

func (c *Channel) instantiateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instantiate <name> [file]",
		Short: "Check a JSON or YAML payload against a shape",
		Long: `Instantiate a registered shape from a JSON or YAML document and print
the accepted attributes. Unknown keys, missing required keys and values of
the wrong structure are reported as errors.

The document is read from file, or from stdin when file is "-" or omitted.
Files ending in .json are decoded as JSON, everything else as YAML.

Examples:
  typesmith instantiate Billing::Invoice invoice.json
  cat customer.yaml | typesmith instantiate Shop::Customer -o json
  typesmith instantiate Settings settings.yaml --prompt`,
		Args: cobra.RangeArgs(1, 2),
		RunE: c.runInstantiate,
	}

	cmd.Flags().Bool("prompt", false, "ask for missing required primitive fields")
	c.addOutputFlags(cmd)

	return cmd
}

func (c *Channel) runInstantiate(cmd *cobra.Command, args []string) error {
	d, err := c.lookup(args[0])
	if err != nil {
		return err
	}

	source := "-"
	if len(args) > 1 {
		source = args[1]
	}

	input, err := readInput(cmd.InOrStdin(), source)
	if err != nil {
		return err
	}

	prompt, _ := cmd.Flags().GetBool("prompt")
	if prompt {
		if source == "-" {
			return fmt.Errorf("--prompt needs the document in a file, stdin answers the prompts")
		}
		p := NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
		if !p.Interactive() {
			return ErrNotInteractive
		}
		input, err = p.PromptForFields(d, input)
		if err != nil {
			return err
		}
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	recorder := exporter.NewLogExporter(newLogger(cfg.Logging, cmd.ErrOrStderr()))

	attrs, err := d.Instantiate(input)
	recorder.ObserveInstantiation(d.Name(), err)
	if err != nil {
		return c.formatError(cmd, err)
	}

	f, err := c.getFormatter(cmd)
	if err != nil {
		return err
	}
	return f.FormatInstance(cmd.OutOrStdout(), attrs, c.getFormatOptions(cmd))
}

func (c *Channel) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "typesmith %s\n", c.build.Version)
			fmt.Fprintf(w, "  commit:  %s\n", c.build.Commit)
			fmt.Fprintf(w, "  built:   %s\n", c.build.BuildDate)
		},
	}
}

// lookup finds a registered declaration by any accepted spelling.
func (c *Channel) lookup(name string) (*schema.Declaration, error) {
	d, ok := c.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown shape %q (run 'typesmith list' to see registered shapes)", name)
	}
	return d, nil
}

// readInput decodes the document at source, or stdin for "-", into a
// mapping keyed by declared names.
func readInput(stdin io.Reader, source string) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var input map[string]any
	if strings.EqualFold(filepath.Ext(source), ".json") {
		err = json.Unmarshal(data, &input)
	} else {
		err = yaml.Unmarshal(data, &input)
	}
	if err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	if input == nil {
		return nil, fmt.Errorf("decode input: document must be a mapping")
	}
	return input, nil
}
