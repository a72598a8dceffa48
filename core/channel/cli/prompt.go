package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/artpar/typesmith/core/convention"
	"github.com/artpar/typesmith/core/schema"
)

// ErrNotInteractive is returned when prompting is requested but input does
// not come from a terminal.
var ErrNotInteractive = errors.New("input is not a terminal")

// Prompter handles interactive CLI input.
type Prompter struct {
	reader *bufio.Reader
	in     io.Reader
	out    io.Writer
}

// NewPrompter creates a prompter reading answers from in and writing
// prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		reader: bufio.NewReader(in),
		in:     in,
		out:    out,
	}
}

// Interactive reports whether the input is a terminal. Readers that are
// not files (tests, pipes wrapped in buffers) count as interactive.
func (p *Prompter) Interactive() bool {
	f, ok := p.in.(*os.File)
	if !ok {
		return true
	}
	return term.IsTerminal(int(f.Fd()))
}

// PromptForFields asks for every required field of d that existing does
// not provide. Only primitive fields can be answered on one line; a
// missing structured field is an error.
func (p *Prompter) PromptForFields(d *schema.Declaration, existing map[string]any) (map[string]any, error) {
	result := make(map[string]any, len(existing))
	for k, v := range existing {
		result[k] = v
	}

	for _, prop := range d.Properties() {
		if _, ok := result[prop.Name()]; ok || prop.Optional() {
			continue
		}

		simple, ok := prop.(*schema.SimpleProperty)
		if !ok {
			return nil, fmt.Errorf("field %q needs structured input, provide it in the input file", prop.Name())
		}
		prim, ok := simple.Type().(schema.Primitive)
		if !ok {
			return nil, fmt.Errorf("field %q needs structured input, provide it in the input file", prop.Name())
		}

		label := fmt.Sprintf("%s (%s) (required): ", formatPromptLabel(prop.Name()), schema.TypeString(prim))
		value, err := p.Prompt(label)
		if err != nil {
			return nil, err
		}
		if value == "" {
			return nil, fmt.Errorf("field %q is required", prop.Name())
		}

		converted, err := convertInput(value, prim)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", prop.Name(), err)
		}
		result[prop.Name()] = converted
	}

	return result, nil
}

// Prompt displays a prompt and reads a line of input.
func (p *Prompter) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm prompts for yes/no confirmation.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	response, err := p.Prompt(prompt + " [y/N]: ")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}

	response = strings.ToLower(response)
	return response == "y" || response == "yes", nil
}

// convertInput converts a typed answer to the value a primitive field holds.
func convertInput(val string, p schema.Primitive) (any, error) {
	switch p {
	case schema.Number:
		n, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", val)
		}
		return n, nil
	case schema.Boolean:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", val)
		}
		return b, nil
	case schema.Null:
		return nil, nil
	default:
		return val, nil
	}
}

// formatPromptLabel formats a field name as a prompt label.
func formatPromptLabel(name string) string {
	field := convention.FieldName(name)
	if field == "" {
		return name
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
