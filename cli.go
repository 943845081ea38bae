package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ilopt/analysis"
	"ilopt/ilasm"
	"ilopt/ilerrors"
	"ilopt/ilog"
	"ilopt/optimizer"
)

// cliArgs is the result of scanning the flat token grammar of section 6:
// `ilopt [filter=<regex>] <optimization>[=<param>] ... <assembly> ...`.
// Tokens are order-independent and option values use `=` or `:`, so this
// is parsed by hand rather than through cobra/pflag's positional-flag
// machinery, which assumes flags precede positionals.
type cliArgs struct {
	filter      *regexp2.Regexp
	mode        analysis.Mode
	assemblies  []string
	verbose     bool
	concurrency int
}

// newRootCmd builds the cobra entry point with flag parsing disabled:
// section 6's grammar allows option tokens (`-f=<regex>`, `/f:<regex>`,
// `-v`, `-concurrency=4`) interleaved with bare optimization names and
// paths in any order, which pflag's shorthand-cluster parsing rejects
// outright (e.g. `-striplocalsinit=out` reads as shorthand `-s` plus
// garbage). Every token is instead handed to parseArgs, the one place
// that implements the grammar.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "ilopt [filter=<regex>] <optimization>[=<param>] <assembly>...",
		Short:              "Strip provably-unnecessary .locals init flags from CIL assemblies",
		SilenceUsage:       true,
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseArgs(args)
			if err != nil {
				return err
			}
			return runOptimize(parsed)
		},
	}
	return cmd
}

func parseArgs(args []string) (*cliArgs, error) {
	parsed := &cliArgs{mode: analysis.ModeNone, concurrency: 1}
	sawOptimization := false

	for _, tok := range args {
		if !strings.HasPrefix(tok, "-") && !strings.HasPrefix(tok, "/") {
			parsed.assemblies = append(parsed.assemblies, tok)
			continue
		}

		name, value, hasValue := splitOption(tok)
		switch name {
		case "help", "h", "?":
			return nil, newArgumentError("help requested")
		case "filter", "f":
			re, err := regexp2.Compile(value, regexp2.None)
			if err != nil {
				return nil, newArgumentError(fmt.Sprintf("invalid filter regex %q: %v", value, err))
			}
			parsed.filter = re
		case "verbose", "v":
			parsed.verbose = true
		case "concurrency":
			if !hasValue {
				return nil, newArgumentError("-concurrency requires a value")
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, newArgumentError(fmt.Sprintf("invalid -concurrency value %q: %v", value, err))
			}
			parsed.concurrency = n
		case "striplocalsinit":
			mode, err := analysis.ParseMode(value)
			if err != nil {
				return nil, err
			}
			parsed.mode = mode
			sawOptimization = true
		default:
			parsed.assemblies = append(parsed.assemblies, tok)
		}
	}

	if !sawOptimization {
		return nil, newArgumentError("no optimization specified")
	}
	if len(parsed.assemblies) == 0 {
		return nil, newArgumentError("no assembly paths specified")
	}
	return parsed, nil
}

// splitOption strips a leading -/ / and splits name=value or name:value.
func splitOption(tok string) (name, value string, hasValue bool) {
	tok = strings.TrimPrefix(tok, "-")
	tok = strings.TrimPrefix(tok, "-")
	tok = strings.TrimPrefix(tok, "/")

	if i := strings.IndexAny(tok, "=:"); i >= 0 {
		return tok[:i], tok[i+1:], true
	}
	return tok, "", false
}

func runOptimize(args *cliArgs) error {
	logger := ilog.New(args.verbose)
	codec := ilasm.JSONCodec{}

	for _, path := range args.assemblies {
		if args.filter != nil {
			matched, err := args.filter.MatchString(filepath.Base(path))
			if err == nil && !matched {
				continue
			}
		}
		if err := optimizeOne(path, args, codec, logger); err != nil {
			return err
		}
	}
	return nil
}

func optimizeOne(path string, args *cliArgs, codec ilasm.JSONCodec, logger *ilog.Logger) error {
	asm, err := codec.Read(path)
	if err != nil {
		logger.AssemblyIOFailed(path, err)
		return err
	}

	outDir := "optimized"
	outPath := filepath.Join(outDir, filepath.Base(path))
	absIn, _ := filepath.Abs(path)
	absOut, _ := filepath.Abs(outPath)
	if absIn == absOut {
		color.New(color.FgYellow).Printf("skipping %s: input path equals output path\n", path)
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(outPath); err == nil {
		if !confirmOverwrite(outPath) {
			color.New(color.FgYellow).Printf("skipping %s: %s already exists\n", path, outPath)
			return nil
		}
	}

	counts, oc, err := optimizer.Run(asm, args.mode, codec, outPath, optimizer.Options{
		Concurrency: args.concurrency,
		Log:         logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d modules, %d types, %d events, %d properties, %d methods\n",
		path, counts.Modules, counts.Types, counts.Events, counts.Properties, counts.Methods)
	fmt.Println(oc.String())
	return nil
}

func confirmOverwrite(path string) bool {
	fmt.Printf("%s already exists. Overwrite? [Y/n] ", path)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "" || answer == "y" || answer == "yes"
}

func newArgumentError(msg string) error {
	return ilerrors.New(ilerrors.ArgumentError, "%s", msg)
}
