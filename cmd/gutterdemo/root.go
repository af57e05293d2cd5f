package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/jesedit/gutter/config"
	"github.com/jesedit/gutter/document"
	"github.com/jesedit/gutter/draw"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	dark       bool
	font       string
	winsize    string
	mark       int
	service    string
	noplumb    bool
}

var rootCmd = newRootCmd(&options{})

func newRootCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gutterdemo [file]",
		Short: "Edit a file beside a line number gutter",
		Long: `Gutterdemo opens file, or an empty buffer, in a window with a line
number gutter. The gutter highlights the caret line or the selected
lines and shows one marked line.

Write "mark N", "nomark", "dark", "light", "focus", "unfocus" or
"goto N" to the ctl file of the posted 9P service to control it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}
			var filename string
			if len(args) == 1 {
				filename = args[0]
			}
			return launch(cmd.Context(), cfg, o, filename)
		},
	}
	cmd.Flags().StringVarP(&o.configPath, "config", "c", config.DefaultPath(), "settings file")
	cmd.Flags().BoolVar(&o.dark, "dark", false, "start in dark mode")
	cmd.Flags().StringVarP(&o.font, "font", "f", "", "editor font")
	cmd.Flags().StringVarP(&o.winsize, "winsize", "W", "", "window size as WxH")
	cmd.Flags().IntVarP(&o.mark, "mark", "m", 0, "initially marked line")
	cmd.Flags().StringVar(&o.service, "service", "", "9P service name, empty for the configured one")
	cmd.Flags().BoolVar(&o.noplumb, "no-plumb", false, "do not listen to the plumber")
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolve loads the settings file and applies the flags that were set.
func (o *options) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("dark") {
		cfg.Dark = o.dark
	}
	if flags.Changed("font") {
		cfg.Font = o.font
	}
	if flags.Changed("winsize") {
		cfg.Winsize = o.winsize
	}
	if flags.Changed("service") {
		cfg.Service = o.service
	}
	if o.mark < 0 {
		return nil, fmt.Errorf("bad --mark %d", o.mark)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loaddocument reads filename. A file that does not exist yet is an
// empty document.
func loaddocument(filename string) (*document.Document, error) {
	if filename == "" {
		return document.New(""), nil
	}
	doc, nulls, err := document.LoadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return document.New(""), nil
	}
	if err != nil {
		return nil, err
	}
	if nulls {
		log.Printf("%s: NUL bytes removed", filename)
	}
	return doc, nil
}

// launch opens the window and runs until the user quits.
func launch(ctx context.Context, cfg *config.Config, o *options, filename string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	doc, err := loaddocument(filename)
	if err != nil {
		return err
	}
	if filename != "" {
		if abs, err := filepath.Abs(filename); err == nil {
			filename = abs
		}
	}

	var runerr error
	draw.Main(func(dev *draw.Device) {
		errch := make(chan error, 1)
		display, err := dev.NewDisplay(errch, cfg.Font, "gutterdemo "+filepath.Base(filename), cfg.Winsize)
		if err != nil {
			runerr = fmt.Errorf("can't open display: %w", err)
			return
		}
		runerr = run(ctx, display, errch, doc, filename, cfg, o)
	})
	return runerr
}
