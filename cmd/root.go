package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobscout"
)

type Config struct {
	Profile   string           `mapstructure:"profile"`
	Search    *SearchConfig    `mapstructure:"search"`
	Sources   *SourcesConfig   `mapstructure:"sources"`
	Relevance *RelevanceConfig `mapstructure:"relevance"`
	Filters   *FiltersConfig   `mapstructure:"filters"`
	AI        *AIConfig        `mapstructure:"ai"`
	Storage   *StorageConfig   `mapstructure:"storage"`
	Server    *ServerConfig    `mapstructure:"server"`
}

type SearchConfig struct {
	Text          string  `mapstructure:"text"`
	Location      string  `mapstructure:"location"`
	RemoteOnly    bool    `mapstructure:"remote-only"`
	MaxResults    int     `mapstructure:"max-results"`
	MinScore      float64 `mapstructure:"min-score"`
	SourceTimeout string  `mapstructure:"source-timeout"`
}

type SourcesConfig struct {
	Demo    bool           `mapstructure:"demo"`
	JSearch *JSearchConfig `mapstructure:"jsearch"`
}

type JSearchConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type RelevanceConfig struct {
	Weights map[string]float64 `mapstructure:"weights"`
}

type FiltersConfig struct {
	MinSalary        float64  `mapstructure:"min-salary"`
	MaxSalary        float64  `mapstructure:"max-salary"`
	AllowedLocations []string `mapstructure:"allowed-locations"`
	AllowRemote      bool     `mapstructure:"allow-remote"`
	ExcludedKeywords []string `mapstructure:"excluded-keywords"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type StorageConfig struct {
	DataDir string `mapstructure:"data-dir"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobscout is a cli for searching job postings across sources and matching them against your profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is only needed for run and serve.
	if runCmd.CalledAs() == "" && serveCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
