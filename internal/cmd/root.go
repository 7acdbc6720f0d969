package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stegus64/plucklogviz/internal/model"
	"github.com/stegus64/plucklogviz/internal/output"
	"github.com/stegus64/plucklogviz/internal/render"
	"github.com/stegus64/plucklogviz/internal/timeline"
)

var cfgFile string

// rootCmd renders a log into a standalone document in one shot.
var rootCmd = &cobra.Command{
	Use:   "plucklogviz <log file>",
	Short: "plucklogviz — Gantt timelines from pluck batch logs",
	Long: `plucklogviz reads a pluck pipeline log, reconstructs every stream and
chunk lifecycle, and writes a self-contained interactive Gantt document.

The log needs no preparation: plain pipeline output with stream=/chunk=
tokens is enough. Failed streams carry their captured exception text into
the document.

Examples:
  plucklogviz pluck.log
  plucklogviz pluck.log -o out/nightly.html --title "Nightly pluck"
  plucklogviz pluck.log --summary json | jq .summary`,
	Args:          cobra.ExactArgs(1),
	RunE:          runRender,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.plucklogviz.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "gantt.html", "output HTML path")
	rootCmd.PersistentFlags().String("title", "Pluck Log Chunk Timeline", "chart title")
	rootCmd.PersistentFlags().String("summary", "none", "terminal summary after rendering: text, json, none")

	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("title", rootCmd.PersistentFlags().Lookup("title"))
	viper.BindPFlag("summary", rootCmd.PersistentFlags().Lookup("summary"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".plucklogviz")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("plucklogviz")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func runRender(cmd *cobra.Command, args []string) error {
	doc, tl, err := build(args[0], render.Options{})
	if err != nil {
		return err
	}

	outPath := viper.GetString("output")
	if err := os.WriteFile(outPath, doc, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Wrote %s with %d chunk bars.\n", outPath, tl.Summary.Chunks)

	return summarize(tl)
}

// build runs the scan and render pipeline without touching the filesystem
// beyond reading the log, so a failed scan never leaves a partial document.
func build(path string, opts render.Options) ([]byte, *model.Timeline, error) {
	tl, err := timeline.FromFile(path, timeline.Options{Title: viper.GetString("title")})
	if err != nil {
		return nil, nil, err
	}
	doc, err := render.HTML(tl, opts)
	if err != nil {
		return nil, nil, err
	}
	return doc, tl, nil
}

func summarize(tl *model.Timeline) error {
	switch strings.ToLower(viper.GetString("summary")) {
	case "json":
		return output.NewJSONRenderer(os.Stdout).Render(tl)
	case "text":
		return output.NewTextRenderer(os.Stdout).Render(tl)
	default:
		return nil
	}
}
