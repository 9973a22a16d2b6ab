package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/meigma/fsop"
)

func newUnpackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unpack <file.fsop> [dir]",
		Short: "Extract a container into a directory",
		Long: `Extract every shader blob of a container into its own file and write a
manifest describing them. The default directory is NAME_unpacked next to
the container. Existing files are only replaced with --force.`,
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := Input{Kind: InputContainer, Path: args[0]}
			job := in.Job(optionalArg(args, 1))
			res, err := fsop.UnpackFile(cmd.Context(), job.Input, job.Output, a.opts...)
			if err != nil {
				return err
			}
			report(cmd.OutOrStdout(), job, res)
			return nil
		},
	}
}

func newPackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pack <dir> [file.fsop]",
		Short: "Build a container from an unpacked directory",
		Long: `Read the manifest in a directory and pack the shader files it lists, in
manifest order, into a container. The default container is a sibling of
the directory: NAME_unpacked packs to NAME.fsop, DIR packs to DIR.fsop.`,
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := Input{Kind: InputDirectory, Path: args[0]}
			job := in.Job(optionalArg(args, 1))
			res, err := fsop.PackDir(cmd.Context(), job.Input, job.Output, a.opts...)
			if err != nil {
				return err
			}
			report(cmd.OutOrStdout(), job, res)
			return nil
		},
	}
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.fsop>",
		Short: "List the entries of a container",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := fsop.Inspect(cmd.Context(), args[0], a.opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderReport(r))
			return nil
		},
	}
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func renderReport(r *fsop.Report) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("#", "NAME", "ENCODING", "VERTEX", "PIXEL")
	for _, e := range r.Entries {
		t.Row(strconv.Itoa(e.Index), e.Name, e.Encoding.String(), blobCell(e.Vertex), blobCell(e.Pixel))
	}
	summary := fmt.Sprintf("%s  %s, %d bytes, %d entries",
		titleStyle.Render(r.Path), r.Format, r.Size, len(r.Entries))
	out := summary + "\n" + t.Render()
	for _, amb := range r.Ambiguous {
		out += fmt.Sprintf("\n%s entry %d %q could also read as %q",
			warningStyle.Render("ambiguous:"), amb.Index, amb.Name, amb.Alternate)
	}
	return out
}

func blobCell(b *fsop.BlobReport) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprintf("%d B %s", b.Size, b.Digest.Encoded()[:12])
}
