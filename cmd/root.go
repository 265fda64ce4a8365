package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/career-compass/internal/embedding"
	"github.com/spigell/career-compass/internal/lookup"
	"github.com/spigell/career-compass/internal/orchestrator"
)

const (
	app       = "career-compass"
	envPrefix = "CAREER_COMPASS"
)

type Config struct {
	DataDir    string          `mapstructure:"data-dir"`
	Employees  string          `mapstructure:"employees"`
	TokenFile  string          `mapstructure:"token-file"`
	UserAgent  string          `mapstructure:"user-agent"`
	Roles      string          `mapstructure:"roles"`
	RolesSheet string          `mapstructure:"roles-sheet"`
	Courses    string          `mapstructure:"courses"`
	Cache      CacheConfig     `mapstructure:"cache"`
	Embedding  EmbeddingConfig `mapstructure:"embedding"`
	Ingest     IngestConfig    `mapstructure:"ingest"`
	Lookup     LookupConfig    `mapstructure:"lookup"`
	Matching   MatchingConfig  `mapstructure:"matching"`
	Summary    SummaryConfig   `mapstructure:"summary"`
}

type CacheConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type EmbeddingConfig struct {
	Provider          string        `mapstructure:"provider"`
	Dimension         int           `mapstructure:"dimension"`
	BatchSize         int           `mapstructure:"batch-size"`
	MaxRetries        int           `mapstructure:"max-retries"`
	Backoff           time.Duration `mapstructure:"backoff"`
	RequestsPerSecond float64       `mapstructure:"requests-per-second"`
	SkillCacheSize    int           `mapstructure:"skill-cache-size"`
	Gemini            GeminiConfig  `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type IngestConfig struct {
	Workers int `mapstructure:"workers"`
}

type LookupConfig struct {
	Policy string `mapstructure:"policy"`
}

type MatchingConfig struct {
	RolesTopK   int `mapstructure:"roles-top-k"`
	GapsTopK    int `mapstructure:"gaps-top-k"`
	CoursesTopK int `mapstructure:"courses-top-k"`
	MentorsTopK int `mapstructure:"mentors-top-k"`
}

func (m MatchingConfig) Limits() orchestrator.Limits {
	return orchestrator.Limits{
		Roles:   m.RolesTopK,
		Gaps:    m.GapsTopK,
		Courses: m.CoursesTopK,
		Mentors: m.MentorsTopK,
	}
}

type SummaryConfig struct {
	Enabled bool         `mapstructure:"enabled"`
	Gemini  GeminiConfig `mapstructure:"gemini"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "career-compass matches employee profiles against roles, courses and mentors and builds career plans",
	}
)

// Execute executes the root command. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is career-compass.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("data-dir", "", "directory with catalog indices and the profile cache")
	rootCmd.PersistentFlags().String("employees", "", "employee profiles: a JSON file or an http(s) URL")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("employees", rootCmd.PersistentFlags().Lookup("employees"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("data-dir", "data")
	viper.SetDefault("cache.backend", "file")
	viper.SetDefault("embedding.provider", "hash")
	viper.SetDefault("embedding.dimension", 256)
	viper.SetDefault("embedding.batch-size", embedding.DefaultBatchSize)
	viper.SetDefault("embedding.max-retries", embedding.DefaultMaxAttempts)
	viper.SetDefault("embedding.backoff", embedding.DefaultBackoff)
	viper.SetDefault("embedding.skill-cache-size", embedding.DefaultSkillCacheSize)
	viper.SetDefault("ingest.workers", 4)
	viper.SetDefault("lookup.policy", lookup.StrictPolicy)

	limits := orchestrator.DefaultLimits()
	viper.SetDefault("matching.roles-top-k", limits.Roles)
	viper.SetDefault("matching.gaps-top-k", limits.Gaps)
	viper.SetDefault("matching.courses-top-k", limits.Courses)
	viper.SetDefault("matching.mentors-top-k", limits.Mentors)
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every key has a default, so a missing default config file is fine.
	// A file that exists but cannot be parsed is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
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
