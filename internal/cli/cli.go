// Package cli implements the vk-generate command line.
//
// The command line is
//
//	vk-generate <platform> <subcommand> <args...> [flags]
//
// The platform selector is validated but does not change what is generated;
// platform differences are expressed as #ifdef guards in the output.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sdboyer/loadergen"
	"github.com/sdboyer/loadergen/catalog"
	"github.com/sdboyer/loadergen/dispatch"
	"github.com/sdboyer/loadergen/exports"
)

const programName = "vk-generate"

var platforms = []string{"Win32", "Android", "Xcb", "Xlib", "Wayland", "Mir", "Display", "AllPlatforms"}

const (
	cmdDispatchTableOps = "dispatch-table-ops"
	cmdWinDefFile       = "win-def-file"
)

var subcommands = []string{cmdDispatchTableOps, cmdWinDefFile}

// ErrUsage is returned by Run when the platform selector or subcommand is
// missing or unrecognized. The usage text has already been printed.
var ErrUsage = errors.New("usage")

type options struct {
	platform    string
	catalogPath string
	strict      bool
	verify      bool
	verbose     bool
	logJSON     bool
	only        []string
}

// Run executes the command line args (without the program name).
//
// Malformed arguments to a subcommand print a usage line and return nil
// without generating anything. Only an unrecognized platform or subcommand
// returns ErrUsage.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 2 || !slices.Contains(platforms, args[0]) || !slices.Contains(subcommands, args[1]) {
		printUsage(stdout)
		return ErrUsage
	}

	root := newRootCommand(args[0], stdout, stderr)
	root.SetArgs(args[1:])
	return root.ExecuteContext(ctx)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <wsi> <subcommand> <option>\n\n", programName)
	fmt.Fprintf(w, "Available wsi are: %s\n", strings.Join(platforms, " "))
	fmt.Fprintf(w, "Available subcommands are: %s\n", strings.Join(subcommands, " "))
}

func newRootCommand(platform string, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{platform: platform}

	root := &cobra.Command{
		Use:           programName + " " + platform,
		Short:         "Generate Vulkan loader and layer sources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.catalogPath, "catalog", "", "Entry-point catalog file, .yaml or .toml (default: built-in Vulkan catalog)")
	pf.BoolVar(&opts.strict, "strict", false, "Validate the catalog before generating")
	pf.BoolVar(&opts.verify, "verify", false, "Compare the output file with a fresh generation instead of writing it")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&opts.logJSON, "log-json", false, "Log as JSON")

	root.AddCommand(newDispatchTableOpsCommand(opts), newWinDefFileCommand(opts))
	return root
}

func newDispatchTableOpsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   cmdDispatchTableOps + " <prefix> [outfile]",
		Short: "Generate inline functions that fill the instance and device dispatch tables",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				fmt.Fprintln(cmd.OutOrStdout(), cmdDispatchTableOps+": <prefix> unspecified")
				return nil
			}
			if len(args) > 2 {
				fmt.Fprintln(cmd.OutOrStdout(), cmdDispatchTableOps+": <prefix> [outfile]")
				return nil
			}
			return opts.emit(cmd, loadergen.DispatchTableOps{Prefix: args[0]}, outfileArg(args, 1))
		},
	}
}

func newWinDefFileCommand(opts *options) *cobra.Command {
	names := make([]string, 0, len(exports.Variants()))
	for _, v := range exports.Variants() {
		names = append(names, string(v))
	}
	usage := fmt.Sprintf("%s: <library-name> {%s} [outfile]", cmdWinDefFile, strings.Join(names, "|"))

	cmd := &cobra.Command{
		Use:   cmdWinDefFile + " <library-name> <variant> [outfile]",
		Short: "Generate a Windows module-definition file",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 || len(args) > 3 {
				fmt.Fprintln(cmd.OutOrStdout(), usage)
				return nil
			}
			variant, err := exports.ParseVariant(args[1])
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), usage)
				return nil
			}
			return opts.emit(cmd, loadergen.WinDefFile{
				Library: args[0],
				Variant: variant,
				Allow:   opts.only,
			}, outfileArg(args, 2))
		},
	}
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "Restrict the 'all' variant to these entry points")
	return cmd
}

func outfileArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

// emit generates g's file and prints, writes or verifies it.
func (o *options) emit(cmd *cobra.Command, g loadergen.Generator, outfile string) error {
	log := newLogger(cmd.ErrOrStderr(), o.verbose, o.logJSON).With(
		zap.String("platform", o.platform),
		zap.String("generator", g.JennyName()),
	)
	defer log.Sync() //nolint:errcheck

	if o.verify && outfile == "" {
		return errors.WithHint(errors.New("--verify needs an output file"), "pass the path of the committed file as [outfile]")
	}

	c, err := o.loadCatalog(log)
	if err != nil {
		return err
	}

	f, err := g.Generate(c)
	if err != nil {
		return err
	}
	if f == nil {
		log.Debug("nothing generated")
		return nil
	}
	log.Debug("generated", zap.Int("bytes", len(f.Data)))

	if outfile == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(f.Data))
		return err
	}

	dir, rel := splitOutput(outfile)
	f.RelativePath = rel
	fs := loadergen.NewFS()
	if err := fs.Add(*f); err != nil {
		return err
	}

	if o.verify {
		if err := fs.Verify(cmd.Context(), dir); err != nil {
			return errors.WithHintf(err, "regenerate %s without --verify", outfile)
		}
		log.Info("generated file is up to date", zap.String("path", outfile))
		return nil
	}
	if err := fs.Write(cmd.Context(), dir); err != nil {
		return err
	}
	log.Debug("wrote generated files", zap.Int("files", fs.Len()), zap.String("path", outfile))
	return nil
}

func (o *options) loadCatalog(log *zap.Logger) (catalog.Catalog, error) {
	var (
		c   catalog.Catalog
		err error
	)
	source := "builtin"
	if o.catalogPath == "" {
		c, err = catalog.Default()
	} else {
		source = o.catalogPath
		c, err = catalog.Load(o.catalogPath)
	}
	if err != nil {
		return catalog.Catalog{}, err
	}
	log.Debug("catalog loaded",
		zap.String("source", source),
		zap.Int("entry_points", len(c.DispatchEntryPoints())),
		zap.Int("extensions", len(c.Extensions)),
	)

	if o.strict {
		if err := dispatch.Validate(c); err != nil {
			return catalog.Catalog{}, errors.Wrapf(err, "catalog %s is invalid", source)
		}
	}
	return c, nil
}

// splitOutput turns an output path into an FS prefix and a relative path.
func splitOutput(path string) (dir, rel string) {
	if filepath.IsAbs(path) {
		return filepath.Dir(path), filepath.Base(path)
	}
	return "", filepath.Clean(path)
}
