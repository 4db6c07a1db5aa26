package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/cellar"
)

var (
	verbose   bool
	workspace string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cellar",
	Short: "A round-trip toolbox for Jupyter notebook documents",
	Long: `Cellar treats a directory of Jupyter notebooks as a queryable document
workspace. It converts between .ipynb and py:percent scripts, renders
outlines and HTML, and keeps an index over the whole tree.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: discovered from CWD)")
}

func initConfig() {
	viper.SetConfigName(".cellar")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if root, err := cellar.FindWorkspaceRoot("."); err == nil {
		viper.AddConfigPath(root)
	}

	viper.SetEnvPrefix("CELLAR")
	viper.AutomaticEnv()

	viper.SetDefault("version", cellar.DefaultVersion)

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// workspaceDir resolves the workspace directory for workspace-scoped
// commands: the --workspace flag wins, then the config file, then the
// nearest marker directory above CWD, then CWD itself.
func workspaceDir() string {
	if workspace != "" {
		return workspace
	}
	if ws := viper.GetString("workspace"); ws != "" {
		return ws
	}
	wd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get CWD", err)
	}
	if root, err := cellar.FindWorkspaceRoot(wd); err == nil {
		return root
	}
	return wd
}

// nbVersion is the nbformat version used when a source format does not
// carry one.
func nbVersion() string {
	return viper.GetString("version")
}
