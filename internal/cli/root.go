// Package cli wires the command line interface: flag parsing, configuration
// loading, and the run loop that feeds files into the translation pipeline.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/troosts/doctranslate/internal/config"
	"github.com/troosts/doctranslate/internal/logger"
	"github.com/troosts/doctranslate/internal/pipeline"
	"github.com/troosts/doctranslate/internal/translator"
	"github.com/troosts/doctranslate/pkg/providers/openai"
)

var (
	cfgFile       string
	targetLang    string
	saveAsPDF     bool
	debugMode     bool
	listLanguages bool
)

// NewRootCommand creates the root command.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "doctranslate [flags] file...",
		Short: "doctranslate translates documents while preserving their layout",
		Long: `doctranslate translates plain text, Word and PDF documents with an
OpenAI-compatible model while preserving the structure of the original:
whitespace and blank lines in text files, run formatting and tables in
.docx files, and page layout in PDFs.

Translated files are written to a "translations" folder next to each
input file, prefixed with the target language.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args: func(cmd *cobra.Command, args []string) error {
			if listLanguages {
				return nil
			}
			if len(args) < 1 {
				return fmt.Errorf("requires at least 1 file argument")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if listLanguages {
				for _, l := range config.Languages {
					fmt.Println(l)
				}
				return nil
			}
			return run(args)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.doctranslate.yaml)")
	rootCmd.PersistentFlags().StringVarP(&targetLang, "lang", "l", "", "target language (default from config)")
	rootCmd.PersistentFlags().BoolVar(&saveAsPDF, "save-as-pdf", false, "also convert text and Word output to PDF")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&listLanguages, "list-languages", false, "print the supported target languages and exit")

	return rootCmd
}

func run(files []string) error {
	log := logger.New(debugMode)
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if targetLang != "" {
		cfg.TargetLang = targetLang
	}
	if saveAsPDF {
		cfg.SaveAsPDF = true
	}
	if debugMode {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if !config.KnownLanguage(cfg.TargetLang) {
		if hint := config.ClosestLanguage(cfg.TargetLang); hint != "" && hint != cfg.TargetLang {
			color.New(color.FgYellow).Fprintf(os.Stderr,
				"Language %q is not in the known list; did you mean %q? Using %q as given.\n",
				cfg.TargetLang, hint, cfg.TargetLang)
		}
	}

	provider, err := openai.New(openai.Config{
		APIType:    cfg.Provider.APIType,
		Endpoint:   cfg.Provider.Endpoint,
		APIKey:     cfg.Provider.APIKey,
		APIVersion: cfg.Provider.APIVersion,
		Model:      cfg.Provider.Model,
		Timeout:    time.Duration(cfg.RequestTimeout) * time.Second,
	}, log)
	if err != nil {
		return err
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("cannot read %s: %w", f, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inv := translator.NewInvoker(provider, cfg.MaxChunkChars, log)
	driver := pipeline.NewDriver(cfg, inv, &pipeline.LibreOfficeConverter{}, log)

	log.Info("starting translation",
		zap.Int("files", len(files)),
		zap.String("target_lang", cfg.TargetLang),
		zap.String("provider", provider.Name()),
		zap.String("model", cfg.Provider.Model))

	results := driver.Run(ctx, files, printStatus)
	printSummary(results)

	for _, res := range results {
		if res.Err != nil {
			return fmt.Errorf("%d of %d files failed", countFailed(results), len(results))
		}
	}
	return nil
}

func countFailed(results []pipeline.Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
