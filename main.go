package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-plymesh/pkg/core"
	"github.com/df07/go-plymesh/pkg/loaders"
	"github.com/df07/go-plymesh/pkg/mesh"
	"github.com/df07/go-plymesh/pkg/ply"
	"github.com/df07/go-plymesh/pkg/shell"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "PLY mesh tool")
	fmt.Fprintln(w, "Usage: plymesh <command> [options] <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  info    <file>        - Summary of a mesh or point cloud")
	fmt.Fprintln(w, "  convert <in> <out>    - Re-encode a file (format, attributes, compression)")
	fmt.Fprintln(w, "  raw     <file>        - Print the element layout of a file")
	fmt.Fprintln(w, "  shell   <file>        - Interactive inspector")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Files ending in .gz or .zst are compressed with gzip or zstd.")
	fmt.Fprintln(w, "Run 'plymesh <command> -help' for command options.")
}

// run dispatches a subcommand. Progress goes to stderr so stdout stays parseable.
func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errUsage
	}

	logger := core.NewWriterLogger(stderr)
	switch args[0] {
	case "info":
		return runInfo(args[1:], stdout, stderr, logger)
	case "convert":
		return runConvert(args[1:], stdout, stderr, logger)
	case "raw":
		return runRaw(args[1:], stdout, stderr, logger)
	case "shell":
		return runShell(args[1:], stderr, logger)
	case "help", "-help", "--help", "-h":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return errUsage
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, errUsage
		}
		return nil, err
	}
	if fs.NArg() != positional {
		fmt.Fprintf(fs.Output(), "Expected %d file argument(s), got %d\n", positional, fs.NArg())
		fs.Usage()
		return nil, errUsage
	}
	return fs.Args(), nil
}

func runInfo(args []string, stdout, stderr io.Writer, logger core.Logger) error {
	fs := newFlagSet("info", stderr)
	asJSON := fs.Bool("json", false, "Print the summary as JSON")
	files, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}

	g, err := loaders.LoadPLY(files[0], logger)
	if err != nil {
		return err
	}

	summary := loaders.Summarize(g)
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	summary.Print(stdout)
	return nil
}

func runConvert(args []string, stdout, stderr io.Writer, logger core.Logger) error {
	fs := newFlagSet("convert", stderr)
	encoding := fs.String("encoding", ply.BinaryLittleEndian.String(), "Output encoding: ascii, binary_little_endian or binary_big_endian")
	attributes := fs.Bool("attributes", true, "Write vertex/face attributes and extra elements")
	compression := fs.String("compression", "auto", "Output compression: auto (from extension), none, gzip or zstd")
	comment := fs.String("comment", "", "Comment line to add to the header")
	files, err := parseFlags(fs, args, 2)
	if err != nil {
		return err
	}
	in, out := files[0], files[1]

	opts := loaders.DefaultSaveOptions(out)
	if opts.Encoding, err = ply.ParseFormat(*encoding); err != nil {
		return err
	}
	opts.IncludeAttributes = *attributes
	if *compression != "auto" {
		if opts.Compression, err = loaders.ParseCompression(*compression); err != nil {
			return err
		}
	}
	if *comment != "" {
		opts.Comments = []string{*comment}
	}

	g, err := loaders.LoadPLY(in, logger)
	if err != nil {
		return err
	}
	if err := mesh.Validate(g); err != nil {
		return fmt.Errorf("invalid geometry in %s: %w", in, err)
	}

	stats, err := loaders.SavePLY(out, g, opts, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s -> %s (%d bytes)\n", in, out, stats.FileBytes)
	return nil
}

func runRaw(args []string, stdout, stderr io.Writer, logger core.Logger) error {
	fs := newFlagSet("raw", stderr)
	element := fs.String("element", "", "Only print this element")
	files, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}

	g, err := loaders.LoadPLY(files[0], logger)
	if err != nil {
		return err
	}
	raw, ok := g.Common().Metadata[mesh.MetadataPLYRaw].(*ply.Raw)
	if !ok {
		return fmt.Errorf("no raw element data for %s", files[0])
	}

	fmt.Fprintf(stdout, "format %s %s\n", raw.Format, raw.Version)
	for _, ed := range raw.Elements {
		if *element != "" && ed.Element.Name != *element {
			continue
		}
		loaders.SummarizeElement(ed.Element).Print(stdout)
	}
	if *element != "" && raw.Element(*element) == nil {
		return fmt.Errorf("no element named %q in %s", *element, files[0])
	}
	return nil
}

func runShell(args []string, stderr io.Writer, logger core.Logger) error {
	fs := newFlagSet("shell", stderr)
	files, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}

	g, err := loaders.LoadPLY(files[0], logger)
	if err != nil {
		return err
	}
	return shell.New(files[0], g, os.Stdout, logger).Run()
}
