package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"genelink/internal/app"
	"genelink/internal/bus"
	"genelink/internal/cohort"
	"genelink/internal/config"
	"genelink/internal/dataset"
	"genelink/internal/log"
	"genelink/internal/mode"
	"genelink/internal/watcher"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugMode bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "genelink",
	Short:   "A terminal ui for exploring genomic mutation cohorts",
	Long:    `A terminal user interface for loading genomic mutation/sample datasets, composing cohort filters, and exploring linked views of the filtered cohort.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/genelink/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false,
		"enable debug logging to genelink.log")
	rootCmd.PersistentFlags().StringP("manifest", "m", "",
		"path to the dataset manifest (manifest.yaml)")
	rootCmd.PersistentFlags().StringP("dataset", "d", "",
		"dataset name from the manifest")
	rootCmd.Flags().Bool("no-auto-reload", false,
		"disable automatic reload when the dataset file changes")
	rootCmd.Flags().Bool("save-default", false,
		"persist the chosen dataset as the config default")

	// Bind flags to viper
	_ = viper.BindPFlag("manifest", rootCmd.PersistentFlags().Lookup("manifest"))
	_ = viper.BindPFlag("dataset", rootCmd.PersistentFlags().Lookup("dataset"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("auto_reload", defaults.AutoReload)
	viper.SetDefault("ui.show_counts", defaults.UI.ShowCounts)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.token_ttl_minutes", defaults.Server.TokenTTLMinutes)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .genelink/config.yaml (current directory)
		// 2. ~/.config/genelink/config.yaml (user config)
		if _, err := os.Stat(".genelink/config.yaml"); err == nil {
			viper.SetConfigFile(".genelink/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "genelink"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .genelink/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".genelink/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)

	if debugMode || os.Getenv("GENELINK_DEBUG") != "" {
		if _, err := log.Init("genelink.log"); err == nil {
			log.SetEnabled(true)
		}
	}
}

// configFilePath returns the config file in use, defaulting to the
// current-directory location when none was loaded.
func configFilePath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return ".genelink/config.yaml"
}

// resolveDataset picks the manifest entry named by flag or config and loads
// it. With no manifest configured it falls back to manifest.yaml in the
// current directory.
func resolveDataset() (dataset.Entry, *dataset.Dataset, error) {
	manifestPath := cfg.Manifest
	if manifestPath == "" {
		manifestPath = "manifest.yaml"
	}

	manifest, err := dataset.LoadManifest(manifestPath)
	if err != nil {
		return dataset.Entry{}, nil, fmt.Errorf("loading manifest: %w", err)
	}

	name := cfg.Dataset
	if name == "" {
		names := manifest.Names()
		if len(names) == 0 {
			return dataset.Entry{}, nil, fmt.Errorf("manifest %s has no datasets", manifestPath)
		}
		name = names[0]
	}

	entry, ok := manifest.Lookup(name)
	if !ok {
		return dataset.Entry{}, nil, fmt.Errorf("dataset %q not in manifest %s", name, manifestPath)
	}

	ds, err := dataset.Load(entry)
	if err != nil {
		return dataset.Entry{}, nil, fmt.Errorf("loading dataset %q: %w", name, err)
	}
	return entry, ds, nil
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	entry, ds, err := resolveDataset()
	if err != nil {
		return err
	}

	store := cohort.NewStore()
	if err := store.LoadData(ds.Mutations, ds.Samples); err != nil {
		return fmt.Errorf("loading cohort: %w", err)
	}

	if save, _ := cmd.Flags().GetBool("save-default"); save {
		if err := config.SaveDefaultDataset(configFilePath(), entry.Name); err != nil {
			log.Warn(log.CatConfig, "Failed to save default dataset", "error", err)
		}
	}

	// Handle --no-auto-reload flag (negated logic)
	if noReload, _ := cmd.Flags().GetBool("no-auto-reload"); noReload {
		cfg.AutoReload = false
	}

	var w *watcher.Watcher
	if cfg.AutoReload {
		w, err = watcher.New(watcher.DefaultConfig(entry.Path))
		if err != nil {
			// The app works fine without auto-reload.
			log.Warn(log.CatWatcher, "Watcher unavailable", "error", err)
			w = nil
		}
	}

	model, err := app.New(app.Config{
		Services: mode.Services{
			Store:       store,
			Bus:         bus.New(),
			Config:      &cfg,
			ConfigPath:  configFilePath(),
			DatasetName: entry.Name,
		},
		Watcher: w,
		Reload: func() error {
			ds, err := dataset.Load(entry)
			if err != nil {
				return err
			}
			return store.LoadData(ds.Mutations, ds.Samples)
		},
	})
	if err != nil {
		return fmt.Errorf("starting app: %w", err)
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()

	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
