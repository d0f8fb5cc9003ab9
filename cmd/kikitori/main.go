package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/kikitori/internal/anki"
	"codeberg.org/snonux/kikitori/internal/batch"
	"codeberg.org/snonux/kikitori/internal/cli"
	"codeberg.org/snonux/kikitori/internal/deps"
	"codeberg.org/snonux/kikitori/internal/models"
	"codeberg.org/snonux/kikitori/internal/pipeline"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx := cmd.Context()
	settings := cli.LoadSettings(viper.GetViper())
	logger := cli.NewLogger(settings.LogLevel, settings.LogFormat)
	out := cmd.OutOrStdout()

	// Handle --check-deps flag
	if flags.CheckDeps {
		statuses := deps.Check(cli.Dependencies(settings), nil)
		cli.RenderTable(out, []string{"Binary", "Purpose", "Status", "Path"}, deps.Rows(statuses), nil)
		if missing := deps.MissingRequired(statuses); len(missing) > 0 {
			return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
		}
		return nil
	}

	// Handle --list-models flag
	if flags.ListModels {
		catalog, err := models.NewLister(cli.GetOpenAIKey()).List(ctx)
		if err != nil {
			return err
		}
		cli.RenderTable(out, []string{"Stage", "Model"}, catalog.Rows(), nil)
		return nil
	}

	switch n := flags.Inputs(args); {
	case n == 0:
		return cmd.Help()
	case n > 1:
		return errors.New("give exactly one input: --url, --file, --text, --batch or text arguments")
	}

	keys := cli.Keys{OpenAI: cli.GetOpenAIKey(), Gemini: cli.GetGeminiKey()}
	opts := cli.BuildOptions{
		Audio:        flags.URL != "" || flags.File != "",
		KeepPrevious: flags.KeepPrevious,
	}
	runner, err := cli.BuildRunner(ctx, settings, keys, opts, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			logger.Warn("failed to release audio clips", "error", err)
		}
	}()

	res, err := run(ctx, runner, flags, args)
	if flags.Preview > 0 {
		if rows := runner.Preview(flags.Preview); len(rows) > 0 {
			cli.RenderPreview(out, rows)
		}
	}
	if err != nil {
		return err
	}

	if flags.AnkiCSV {
		csvPath := strings.TrimSuffix(res.Path, filepath.Ext(res.Path)) + ".csv"
		if err := anki.WriteCSV(res.Notes, csvPath, true); err != nil {
			return fmt.Errorf("failed to write CSV export: %w", err)
		}
		fmt.Fprintf(out, "CSV export created: %s\n", csvPath)
	}

	var size int64
	if info, err := os.Stat(res.Path); err == nil {
		size = info.Size()
	}
	fmt.Fprintln(out, cli.Summary(res, size))
	return nil
}

func run(ctx context.Context, runner *pipeline.Runner, flags *cli.Flags, args []string) (*anki.Result, error) {
	switch {
	case flags.URL != "":
		return runner.RunFromURL(ctx, flags.URL)
	case flags.File != "":
		return runner.RunFromFile(ctx, flags.File)
	case flags.BatchFile != "":
		entries, err := batch.ReadBatchFile(flags.BatchFile)
		if err != nil {
			return nil, err
		}
		return runner.RunFromWordList(ctx, entries)
	case flags.Text != "":
		return runner.RunFromText(ctx, flags.Text)
	default:
		return runner.RunFromText(ctx, strings.Join(args, " "))
	}
}
