package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/soocke/simple-magnify-go/app"
	"github.com/soocke/simple-magnify-go/config"
	"github.com/soocke/simple-magnify-go/debug"
	"github.com/soocke/simple-magnify-go/domain/camera"
	"github.com/soocke/simple-magnify-go/domain/ocr"
	"github.com/soocke/simple-magnify-go/domain/preferences"
	"github.com/soocke/simple-magnify-go/domain/speech"
)

var errNoText = errors.New("no text recognized")

type rootOptions struct {
	configPath string
	debug      bool
	ephemeral  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "simplemagnify",
		Short: "Camera magnifier with text recognition and read-aloud",
		Long: `SimpleMagnify shows a live, zoomable camera preview. Freezing the
preview recognizes the text in the still, which can then be read
aloud, copied or viewed as large text.`,
		SilenceUsage: true,
		RunE:         opts.runGUI,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", config.DefaultPath(), "config file (.json, .toml, .yaml)")
	pf.BoolVar(&opts.debug, "debug", false, "debug logging and runtime stats")
	pf.BoolVar(&opts.ephemeral, "ephemeral", false, "keep preferences in memory only")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Start the magnifier window (default)",
		Args:  cobra.NoArgs,
		RunE:  opts.runGUI,
	})
	root.AddCommand(newOCRCmd(opts), newPrefsCmd(opts))
	return root
}

// load reads the config file and builds the logger. A broken config file
// falls back to defaults.
func (o *rootOptions) load(w io.Writer, base slog.Level) (*config.Config, *slog.Logger) {
	cfg, err := config.Load(o.configPath)
	if o.debug {
		cfg.Debug = true
	}
	_ = cfg.Validate()
	level := base
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := newLogger(w, level, cfg.LogFormat)
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", o.configPath, "error", err)
	}
	return cfg, logger
}

func (o *rootOptions) runGUI(cmd *cobra.Command, _ []string) error {
	cfg, logger := o.load(cmd.OutOrStdout(), slog.LevelInfo)
	if cfg.Debug {
		debug.StartGoroutineLogger(5*time.Second, logger)
		debug.StartMemLogger(5*time.Second, logger)
	}
	c, err := app.BuildContainer(cmd.Context(), cfg, logger, app.BuildOptions{Ephemeral: o.ephemeral})
	if err != nil {
		return err
	}
	app.NewApp("SimpleMagnify", c).Start()
	return nil
}

func newOCRCmd(opts *rootOptions) *cobra.Command {
	var lines, speak bool
	cmd := &cobra.Command{
		Use:   "ocr <image>",
		Short: "Recognize the text in an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := opts.load(cmd.ErrOrStderr(), slog.LevelWarn)
			img, err := camera.LoadImage(args[0])
			if err != nil {
				return err
			}
			engine, err := app.NewOCREngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			svc := ocr.NewService(engine, logger, ocr.WithPreprocess(cfg.OCR.Preprocess))
			defer svc.Close()

			mode := ocr.ModeFlat
			if lines {
				mode = ocr.ModeLines
			}
			text, ok := svc.Recognize(cmd.Context(), img, mode)
			if !ok {
				return errNoText
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			if !speak {
				return nil
			}
			voice, err := app.NewSpeechEngine(cfg)
			if err != nil {
				return err
			}
			defer voice.Close()
			return voice.Speak(cmd.Context(), text, speech.SlowRate)
		},
	}
	cmd.Flags().BoolVar(&lines, "lines", false, "keep line breaks in reading order")
	cmd.Flags().BoolVar(&speak, "speak", false, "read the recognized text aloud")
	return cmd
}

func newPrefsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect or edit stored preferences",
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "get [key]",
		Short:     "Print one or all preferences",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: preferences.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := opts.load(cmd.ErrOrStderr(), slog.LevelWarn)
			store, err := app.OpenPreferences(cmd.Context(), cfg, logger, opts.ephemeral)
			if err != nil {
				return err
			}
			defer store.Close()
			values := store.Snapshot().Values()
			keys := preferences.Keys
			if len(args) == 1 {
				if _, ok := values[args[0]]; !ok {
					return fmt.Errorf("%w: unknown key %q", preferences.ErrInvalidValue, args[0])
				}
				keys = args
			}
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, values[k])
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Store a preference",
		Args:      cobra.ExactArgs(2),
		ValidArgs: preferences.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := opts.load(cmd.ErrOrStderr(), slog.LevelWarn)
			store, err := app.OpenPreferences(cmd.Context(), cfg, logger, opts.ephemeral)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Set(cmd.Context(), args[0], args[1])
		},
	})
	return cmd
}
