// Package config loads vdjbench settings from flags, environment, .env and an
// optional config.yaml through viper.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"vdjbench/internal/loader"
)

// Defaults
const (
	DefaultIterations  = 10
	DefaultDatasetRoot = "../../datasets/"
	DefaultOutputPath  = "results.csv"
	DefaultLoader      = "tenx-csv"
	DefaultMemoryMode  = "always"
)

// Settings is the resolved configuration of a sweep.
type Settings struct {
	Iterations      int
	DatasetRoot     string
	OutputPath      string
	Loader          string
	LoaderFilename  string
	MemoryMode      string
	HistoryDB       string
	Label           string
	MetricsAddr     string
	SlackWebhookURL string
	Verbose         bool
	LogFile         string
}

// Load initializes the configuration from file and environment variables.
// A missing config.yaml is not an error and is never created.
func Load(cfgFile string) {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("VDJBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config file %s: %v\n", cfgFile, err)
	}
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("iterations", DefaultIterations)
	viper.SetDefault("dataset_root", DefaultDatasetRoot)
	viper.SetDefault("output_path", DefaultOutputPath)
	viper.SetDefault("loader", DefaultLoader)
	viper.SetDefault("memory_mode", DefaultMemoryMode)
	viper.SetDefault("loaders.tenx_csv.filename", loader.DefaultTenXFilename)
	viper.SetDefault("loaders.airr_tsv.filename", loader.DefaultAIRRFilename)
	viper.SetDefault("history_db", "")
	viper.SetDefault("label", "")
	viper.SetDefault("metrics_addr", "")
	viper.SetDefault("notifications.slack.webhook_url", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")
}

// Current reads the resolved settings from viper. The label falls back to
// the loader name.
func Current() Settings {
	s := Settings{
		Iterations:      viper.GetInt("iterations"),
		DatasetRoot:     viper.GetString("dataset_root"),
		OutputPath:      viper.GetString("output_path"),
		Loader:          viper.GetString("loader"),
		MemoryMode:      viper.GetString("memory_mode"),
		HistoryDB:       viper.GetString("history_db"),
		Label:           viper.GetString("label"),
		MetricsAddr:     viper.GetString("metrics_addr"),
		SlackWebhookURL: viper.GetString("notifications.slack.webhook_url"),
		Verbose:         viper.GetBool("verbose"),
		LogFile:         viper.GetString("log_file"),
	}
	s.LoaderFilename = viper.GetString(loaderKey(s.Loader) + ".filename")
	if s.Label == "" {
		s.Label = s.Loader
	}
	return s
}

// loaderKey maps a loader name such as "tenx-csv" to its config section.
func loaderKey(name string) string {
	return "loaders." + strings.ReplaceAll(name, "-", "_")
}
