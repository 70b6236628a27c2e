package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"RoMagic/internal/editor"
	"RoMagic/internal/export"
	"RoMagic/internal/render"
	"RoMagic/internal/state"
)

var renderFlags struct {
	output    string
	format    string
	quality   int
	filters   map[state.FilterKind]*float64
	rotate    int
	flipH     bool
	flipV     bool
	text      string
	textX     float64
	textY     float64
	textSize  float64
	textColor string
	copy      bool
}

var renderCmd = &cobra.Command{
	Use:   "render <image>",
	Short: "Apply filters, transforms and text to an image and export it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		edit, err := editFromFlags()
		if err != nil {
			return err
		}

		s := newSession()
		if err := loadFile(s, args[0]); err != nil {
			return err
		}
		s.ApplyEdit(edit.Filters, edit.Transform)

		if renderFlags.text != "" {
			c, err := render.ParseColor(renderFlags.textColor)
			if err != nil {
				return err
			}
			s.AddText(renderFlags.text, renderFlags.textX, renderFlags.textY, c, renderFlags.textSize)
		}

		opts, err := exportOptions()
		if err != nil {
			return err
		}
		out := renderFlags.output
		if out == "" {
			out = filepath.Join(filepath.Dir(args[0]), opts.Name())
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := s.ExportFile(ctx, out, opts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", out, edit.Filters, edit.Transform.CSS())

		if renderFlags.copy {
			u, err := s.DataURL(ctx, opts)
			if err != nil {
				return err
			}
			if err := clipboard.WriteAll(u); err != nil {
				return fmt.Errorf("copy to clipboard: %w", err)
			}
		}
		return nil
	},
}

var removeBGFlags struct {
	output string
}

var removeBGCmd = &cobra.Command{
	Use:   "removebg <image>",
	Short: "Remove the background of an image through remove.bg",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession()
		if err := loadFile(s, args[0]); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RemoveBG.Timeout)
		defer cancel()
		if err := s.RemoveBackground(ctx); err != nil {
			return err
		}

		out := removeBGFlags.output
		if out == "" {
			base := filepath.Base(args[0])
			out = filepath.Join(filepath.Dir(args[0]), base[:len(base)-len(filepath.Ext(base))]+"-nobg.png")
		}
		opts := cfg.Export
		opts.Format = render.PNG
		if err := s.ExportFile(ctx, out, opts); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "romagic", Version)
	},
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderFlags.output, "output", "o", "", "output file (default: export.filename next to the input)")
	f.StringVar(&renderFlags.format, "format", "", "jpeg, png or pdf when the output has no extension")
	f.IntVar(&renderFlags.quality, "quality", 0, "JPEG quality 1-100")

	renderFlags.filters = make(map[state.FilterKind]*float64)
	for _, spec := range state.FilterSpecs {
		renderFlags.filters[spec.Kind] = f.Float64(string(spec.Kind), spec.Default,
			fmt.Sprintf("%s [%g, %g]", spec.Label, spec.Min, spec.Max))
	}
	f.IntVar(&renderFlags.rotate, "rotate", 0, "rotation in degrees, a multiple of 90")
	f.BoolVar(&renderFlags.flipH, "flip-h", false, "flip horizontally")
	f.BoolVar(&renderFlags.flipV, "flip-v", false, "flip vertically")
	f.StringVar(&renderFlags.text, "text", "", "text to overlay")
	f.Float64Var(&renderFlags.textX, "text-x", 10, "text baseline x in pixels")
	f.Float64Var(&renderFlags.textY, "text-y", 40, "text baseline y in pixels")
	f.Float64Var(&renderFlags.textSize, "text-size", render.DefaultTextSize, "text size in points")
	f.StringVar(&renderFlags.textColor, "text-color", "white", "text color name or #rrggbb")
	f.BoolVar(&renderFlags.copy, "copy", false, "also copy the result to the clipboard as a data URL")

	removeBGCmd.Flags().StringVarP(&removeBGFlags.output, "output", "o", "", "output PNG (default: <input>-nobg.png)")
}

func editFromFlags() (state.EditState, error) {
	if renderFlags.rotate%90 != 0 {
		return state.EditState{}, fmt.Errorf("--rotate %d is not a multiple of 90", renderFlags.rotate)
	}
	edit := state.DefaultEditState()
	for kind, v := range renderFlags.filters {
		edit.Filters = edit.Filters.With(kind, *v)
	}
	edit.Transform.Rotate = renderFlags.rotate
	if renderFlags.flipH {
		edit.Transform = edit.Transform.Flipped(state.Horizontal)
	}
	if renderFlags.flipV {
		edit.Transform = edit.Transform.Flipped(state.Vertical)
	}
	return edit, nil
}

func loadFile(s *editor.Session, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	return s.Load(filepath.Base(path), data)
}

func exportOptions() (export.Options, error) {
	opts := cfg.Export
	if renderFlags.format != "" {
		f, err := render.LookupFormat(renderFlags.format)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}
	if renderFlags.quality != 0 {
		opts.Quality = renderFlags.quality
	}
	return opts, nil
}
