package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meigma/fsop"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	cfgFile string
	cfg     *Config
	logger  *slog.Logger
	opts    []fsop.Option
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "fsop [path...]",
		Short: "Pack and unpack FSOP shader containers",
		Long: titleStyle.Render("fsop") + mutedStyle.Render(" - FOX Engine shader container tool") + `

Each path is handled on its own: a .fsop file is unpacked into a sibling
NAME_unpacked directory, and a directory is packed into a sibling container.
NAME_unpacked packs to NAME.fsop; any other directory DIR packs to DIR.fsop.

Unpacked directories hold one file per shader blob and a metadata.json
manifest listing the entries in container order. Shader files that the
manifest does not mention yet are added to it when packing.`,
		Example: `  fsop effects.fsop            unpack to effects_unpacked/
  fsop effects_unpacked        repack to effects.fsop
  fsop unpack effects.fsop out
  fsop inspect effects.fsop`,
		Args:              usageArgs(cobra.ArbitraryArgs),
		PersistentPreRunE: a.setup,
		RunE:              a.runAuto,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: exitUsage, Err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./fsop.yaml or the user config dir)")
	pf.BoolP("verbose", "v", false, "enable verbose output")
	pf.BoolP("force", "f", false, "overwrite existing output files")
	pf.String("encoding", "", "encoding tried first for entry names (shift-jis, windows-1252, utf-8, ascii)")
	pf.String("alt-encoding", "", "encoding tried when the first one fails")
	pf.String("ext", "", "shader file extension")
	pf.String("manifest", "", "manifest file name; the extension picks json, yaml or toml")
	pf.String("format", "", "container layout: table, stream or auto")
	pf.IntP("workers", "j", 0, "containers processed at once in auto mode (default: number of CPUs)")
	pf.Bool("discover", true, "add unreferenced shader files to the manifest when packing")

	root.AddCommand(newUnpackCmd(a), newPackCmd(a), newInspectCmd(a))
	return root
}

// setup loads the configuration once flags are parsed.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.cfgFile, cmd.Flags())
	if err != nil {
		return &ExitError{Code: exitUsage, Err: err}
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	opts, err := cfg.Options(a.logger)
	if err != nil {
		return &ExitError{Code: exitUsage, Err: err}
	}
	a.opts = opts
	return nil
}

func (a *app) runAuto(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageError("expected at least one %s file or directory", containerExt)
	}
	jobs := make([]fsop.Job, 0, len(args))
	for _, arg := range args {
		in, err := classify(arg)
		if err != nil {
			return err
		}
		jobs = append(jobs, in.Job(""))
	}
	a.logger.Debug("running batch", "jobs", len(jobs))

	results, err := fsop.Batch(cmd.Context(), jobs, a.opts...)
	out := cmd.OutOrStdout()
	for i, res := range results {
		if res != nil {
			report(out, jobs[i], res)
		}
	}
	return err
}

// report prints the outcome of one job.
func report(w io.Writer, job fsop.Job, res *fsop.Result) {
	fmt.Fprintf(w, "%s %s %s\n",
		successStyle.Render("✓"),
		describe(job),
		mutedStyle.Render(fmt.Sprintf("(%d entries, %d bytes)", res.Entries, res.Bytes)))
	if len(res.Discovered) > 0 {
		fmt.Fprintf(w, "  %s %s\n",
			warningStyle.Render(fmt.Sprintf("added %d new entries:", len(res.Discovered))),
			strings.Join(res.Discovered, ", "))
	}
	verb := "could also read as"
	if job.Mode == fsop.ModePack {
		verb = "will unpack as"
	}
	for _, amb := range res.Ambiguous {
		fmt.Fprintf(w, "  %s entry %d %q %s %q\n",
			warningStyle.Render("ambiguous:"), amb.Index, amb.Name, verb, amb.Alternate)
	}
}
