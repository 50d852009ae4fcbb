// Package shell implements an interactive inspector over a loaded PLY file
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/df07/go-plymesh/pkg/core"
	"github.com/df07/go-plymesh/pkg/loaders"
	"github.com/df07/go-plymesh/pkg/mesh"
	"github.com/df07/go-plymesh/pkg/ply"
)

const defaultRows = 10

var errQuit = errors.New("quit")

type command struct {
	name  string
	args  string
	usage string
	run   func(s *Shell, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"help", "", "show this help", (*Shell).help},
		{"info", "", "summary of the loaded geometry", (*Shell).info},
		{"elements", "", "list the elements of the source file", (*Shell).elements},
		{"element", "<name> [rows]", "print the first rows of an element", (*Shell).element},
		{"attributes", "", "list vertex and face attributes with their widths", (*Shell).attributes},
		{"export", "<path> [ascii|binary_little_endian|binary_big_endian]", "write the geometry to a file", (*Shell).export},
		{"quit", "", "leave the shell", func(*Shell, []string) error { return errQuit }},
	}
}

// Shell holds the geometry being inspected
type Shell struct {
	path     string
	geometry mesh.Geometry
	out      io.Writer
	logger   core.Logger

	// confirm asks before overwriting files; nil answers yes
	confirm func(prompt string) bool
}

// New creates a shell over g, writing command output to out
func New(path string, g mesh.Geometry, out io.Writer, logger core.Logger) *Shell {
	return &Shell{path: path, geometry: g, out: out, logger: logger}
}

// Execute runs one command line. It reports true when the shell should exit.
func (s *Shell) Execute(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name := fields[0]
	if name == "exit" {
		name = "quit"
	}
	for _, c := range commands {
		if c.name != name {
			continue
		}
		err := c.run(s, fields[1:])
		if errors.Is(err, errQuit) {
			return true, nil
		}
		return false, err
	}
	return false, fmt.Errorf("unknown command %q, type help for a list", fields[0])
}

// Run reads commands from the terminal until quit, Ctrl-C on an empty line or EOF
func (s *Shell) Run() error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:              "(" + s.path + ")\033[31m>\033[0m ",
		AutoComplete:        s.completer(),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return fmt.Errorf("failed to start shell: %w", err)
	}
	defer l.Close()

	s.out = l.Stdout()
	s.confirm = func(prompt string) bool {
		fmt.Fprintf(l.Stdout(), "%s [y/n]\n", prompt)
		answer, err := l.ReadlineWithDefault("n")
		return err == nil && strings.TrimSpace(answer) == "y"
	}

	fmt.Fprintf(l.Stdout(), "inspecting %s, type help for commands\n", s.path)
	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		}

		quit, err := s.Execute(line)
		if err != nil {
			fmt.Fprintf(l.Stderr(), "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (s *Shell) completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, c := range commands {
		switch c.name {
		case "element":
			items = append(items, readline.PcItem(c.name, readline.PcItemDynamic(s.elementNames)))
		case "export":
			items = append(items, readline.PcItem(c.name, readline.PcItemDynamic(listFiles)))
		default:
			items = append(items, readline.PcItem(c.name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func listFiles(string) []string {
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

func (s *Shell) raw() *ply.Raw {
	raw, _ := s.geometry.Common().Metadata[mesh.MetadataPLYRaw].(*ply.Raw)
	return raw
}

func (s *Shell) elementNames(string) []string {
	raw := s.raw()
	if raw == nil {
		return nil
	}
	names := make([]string, len(raw.Elements))
	for i, ed := range raw.Elements {
		names[i] = ed.Element.Name
	}
	return names
}

func (s *Shell) help([]string) error {
	width := 0
	for _, c := range commands {
		width = max(width, len(c.name)+len(c.args)+1)
	}
	fmt.Fprintln(s.out, "commands:")
	for _, c := range commands {
		usage := strings.TrimSpace(c.name + " " + c.args)
		fmt.Fprintf(s.out, "    %-*s  \033[35m# %s\033[0m\n", width, usage, c.usage)
	}
	return nil
}

func (s *Shell) info([]string) error {
	summary := loaders.Summarize(s.geometry)
	summary.Elements = nil
	summary.Print(s.out)
	return nil
}

func (s *Shell) elements([]string) error {
	raw := s.raw()
	if raw == nil {
		return errors.New("geometry has no source file layout")
	}
	for _, ed := range raw.Elements {
		loaders.SummarizeElement(ed.Element).Print(s.out)
	}
	return nil
}

func (s *Shell) element(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: element <name> [rows]")
	}
	raw := s.raw()
	if raw == nil {
		return errors.New("geometry has no source file layout")
	}
	ed := raw.Element(args[0])
	if ed == nil {
		return fmt.Errorf("no element named %q", args[0])
	}

	rows := defaultRows
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid row count %q", args[1])
		}
		rows = n
	}
	rows = min(rows, ed.Element.Count)

	names := make([]string, len(ed.Element.Properties))
	for i, p := range ed.Element.Properties {
		names[i] = p.Name
	}
	fmt.Fprintln(s.out, strings.Join(names, "\t"))
	for r := 0; r < rows; r++ {
		cells := make([]string, len(ed.Columns))
		for i, col := range ed.Columns {
			cells[i] = formatRow(col.Row(r), col.Property.IsList())
		}
		fmt.Fprintln(s.out, strings.Join(cells, "\t"))
	}
	if rows < ed.Element.Count {
		fmt.Fprintf(s.out, "... %d more rows\n", ed.Element.Count-rows)
	}
	return nil
}

func formatRow(values []float64, list bool) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if list {
		return "[" + strings.Join(parts, " ") + "]"
	}
	return strings.Join(parts, " ")
}

func (s *Shell) attributes([]string) error {
	base := s.geometry.Common()
	printAttributes(s.out, "vertex", base.VertexAttributes)
	if m, ok := s.geometry.(*mesh.Mesh); ok {
		printAttributes(s.out, "face", m.FaceAttributes)
	}
	return nil
}

func printAttributes(w io.Writer, element string, attrs mesh.Attributes) {
	for _, name := range attrs.Names() {
		attr := attrs[name]
		if attr.IsRagged() {
			fmt.Fprintf(w, "%s.%s\tragged\t%d rows\n", element, name, attr.Len())
			continue
		}
		fmt.Fprintf(w, "%s.%s\twidth %d\t%d rows\n", element, name, attr.Width, attr.Len())
	}
}

func (s *Shell) export(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: export <path> [encoding]")
	}
	path := args[0]
	opts := loaders.DefaultSaveOptions(path)
	if len(args) == 2 {
		format, err := ply.ParseFormat(args[1])
		if err != nil {
			return err
		}
		opts.Encoding = format
	}

	if _, err := os.Stat(path); err == nil && s.confirm != nil && !s.confirm("overwrite "+path+"?") {
		fmt.Fprintln(s.out, "cancel export")
		return nil
	}

	stats, err := loaders.SavePLY(path, s.geometry, opts, s.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "wrote %d bytes to %s\n", stats.FileBytes, path)
	return nil
}
