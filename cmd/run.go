package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dkoval/jobscout/internal/agent"
	"github.com/dkoval/jobscout/internal/ai"
	"github.com/dkoval/jobscout/internal/ai/gemini"
	"github.com/dkoval/jobscout/internal/fetch"
	"github.com/dkoval/jobscout/internal/filtering"
	"github.com/dkoval/jobscout/internal/jobs"
	"github.com/dkoval/jobscout/internal/logger"
	"github.com/dkoval/jobscout/internal/profile"
	"github.com/dkoval/jobscout/internal/ranking"
	"github.com/dkoval/jobscout/internal/relevance"
	"github.com/dkoval/jobscout/internal/secrets"
	"github.com/dkoval/jobscout/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptExit            = "Exit"
	PromptReportByCompany = "Report by companies"
	PromptMatchesToFile   = "Dump matches to file"
	PromptShowExclusions  = "Show excluded jobs"
	PromptTrackApply      = "Record an application"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptReportByCompany, PromptMatchesToFile, PromptShowExclusions, PromptTrackApply, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a search against all configured sources and rank the results",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("no-interactive", "y", false, "print the ranked matches and exit without prompting")
	runCmd.Flags().StringP("profile", "p", "", "path to the profile file. Overrides the config value.")

	viper.BindPFlag("profile", runCmd.Flags().Lookup("profile"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobscout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	prof, err := resolveProfile(config)
	if err != nil {
		logger.Fatal("loading profile", zap.Error(err),
			zap.String("hint", "set the 'profile' key in the configuration file or the --profile flag"),
		)
	}

	a, err := buildAgent(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the search pipeline", zap.Error(err))
	}

	query := fetch.Query{}
	if config.Search != nil {
		query = fetch.Query{
			Text:       config.Search.Text,
			Location:   config.Search.Location,
			RemoteOnly: config.Search.RemoteOnly,
			MaxResults: config.Search.MaxResults,
		}
	}

	logger.Info("starting the search", zap.String("search", query.Text))

	result, err := a.Search(ctx, prof, query)
	if err != nil {
		logger.Fatal("search failed", zap.Error(err))
	}

	for source, reason := range result.SourceErrors {
		logger.Warn("source failed", zap.String("source", source), zap.String("reason", reason))
	}

	logger.Info("search finished",
		zap.Int("fetched", result.TotalFetched),
		zap.Int("matched", result.TotalMatched),
		zap.Int("excluded", len(result.Exclusions)),
	)

	if len(result.Matches) == 0 {
		logger.Info("exiting", zap.String("reason", "no matches left after filtering"))
		return
	}

	printMatches(logger, result.Matches)

	if saved, err := persistMatches(config, result.Matches); err != nil {
		logger.Warn("saving matches", zap.Error(err))
	} else if saved {
		logger.Info("matches saved", zap.Int("count", len(result.Matches)))
	}

	if cmd.Flag("no-interactive").Value.String() == "true" {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, config, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, result *ranking.Result) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(matchedJobs(result).ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("matches count", len(result.Matches)))
		return nil
	case PromptMatchesToFile:
		filename, err := matchedJobs(result).DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptShowExclusions:
		pretty, _ := json.MarshalIndent(result.Exclusions, "", "  ")
		logger.Info(string(pretty), zap.Int("excluded count", len(result.Exclusions)))
		return nil
	case PromptTrackApply:
		return trackApplication(logger, config, result)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func matchedJobs(result *ranking.Result) *jobs.Jobs {
	list := &jobs.Jobs{}
	for _, m := range result.Matches {
		list.Append(m.Job)
	}
	return list
}

func printMatches(logger *zap.Logger, matches []*ranking.Match) {
	for i, m := range matches {
		fields := []zap.Field{
			zap.Int("rank", i+1),
			zap.String("job_id", m.Job.ID),
			zap.String("title", m.Job.Title),
			zap.String("company", m.Job.Company),
			zap.String("location", m.Job.Location.String()),
		}
		if m.Score != nil {
			fields = append(fields, zap.Float64("score", m.Score.Overall))
			if len(m.Score.Missing) > 0 {
				fields = append(fields, zap.Strings("missing_skills", m.Score.Missing))
			}
		}
		logger.Info("match", fields...)
	}
}

// trackApplication lets the user pick one match and record an application
// for it in the local store.
func trackApplication(logger *zap.Logger, config *Config, result *ranking.Result) error {
	if config.Storage == nil || config.Storage.DataDir == "" {
		return errors.New("storage.data-dir must be configured to track applications")
	}

	items := make([]string, 0, len(result.Matches)+1)
	for _, m := range result.Matches {
		items = append(items, fmt.Sprintf("%s %s / %s", m.Job.ID, m.Job.Title, m.Job.Company))
	}

	const back = "back"
	matchPrompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: append(items, back),
	}

	_, selected, err := matchPrompt.Run()
	if err != nil {
		return err
	}
	if selected == back {
		return nil
	}

	jobID := strings.Split(selected, " ")[0]
	match := findMatch(result.Matches, jobID)
	if match == nil {
		return fmt.Errorf("there is no such job id %s", jobID)
	}

	st, err := store.Open(config.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	app, err := st.CreateApplication("default", match.Job.ID, match.Job.Title, match.Job.Company, "")
	if err != nil {
		return fmt.Errorf("recording application: %w", err)
	}

	logger.Info("application recorded",
		zap.String("application_id", app.ID),
		zap.String("job_id", app.JobID),
		zap.String("status", string(app.Status)),
	)
	return nil
}

func findMatch(matches []*ranking.Match, jobID string) *ranking.Match {
	for _, m := range matches {
		if m.Job.ID == jobID {
			return m
		}
	}
	return nil
}

func persistMatches(config *Config, matches []*ranking.Match) (bool, error) {
	if config.Storage == nil || config.Storage.DataDir == "" {
		return false, nil
	}

	st, err := store.Open(config.Storage.DataDir)
	if err != nil {
		return false, err
	}
	defer st.Close()

	return true, st.SaveMatches(matches)
}

func resolveProfile(config *Config) (*profile.Profile, error) {
	path := strings.TrimSpace(viper.GetString("profile"))
	if path == "" && config != nil {
		path = strings.TrimSpace(config.Profile)
	}
	if path == "" {
		return nil, errors.New("profile file is not configured")
	}
	return profile.Load(path)
}

// buildAgent assembles the fetchers, the scoring strategy and the filter
// chain from the configuration.
func buildAgent(ctx context.Context, config *Config, logger *zap.Logger) (*agent.Agent, error) {
	fetchers, err := buildFetchers(config, logger)
	if err != nil {
		return nil, err
	}

	strategy, err := buildStrategy(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	cfg, err := agentConfig(config)
	if err != nil {
		return nil, err
	}

	return agent.New(fetchers, strategy, agent.DefaultFilters, cfg, logger), nil
}

func buildFetchers(config *Config, logger *zap.Logger) ([]fetch.Fetcher, error) {
	fetchers := make([]fetch.Fetcher, 0, 2)

	src := config.Sources
	if src == nil || src.Demo {
		fetchers = append(fetchers, fetch.NewDemoFetcher())
	}

	if src != nil && src.JSearch != nil && src.JSearch.Enabled {
		apiKey, err := secrets.Load(secrets.Source{
			Name: "jsearch api key",
			File: src.JSearch.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("loading jsearch api key: %w", err)
		}
		fetchers = append(fetchers, fetch.NewJSearchFetcher(apiKey, logger))
	}

	if len(fetchers) == 0 {
		return nil, errors.New("no job sources are enabled")
	}

	return fetchers, nil
}

func buildStrategy(ctx context.Context, config *Config, logger *zap.Logger) (relevance.Strategy, error) {
	strategies := []relevance.Strategy{relevance.NewCompositeStrategy()}

	if config.AI != nil && config.AI.Enabled {
		matcher, err := newAIMatcher(ctx, config.AI, logger)
		if err != nil {
			return nil, fmt.Errorf("building ai matcher: %w", err)
		}
		strategies = append(strategies, relevance.NewModelStrategy(matcher, logger))
	}

	weights := relevance.DefaultWeights()
	if config.Relevance != nil && len(config.Relevance.Weights) > 0 {
		weights = relevance.Weights{}
		for name, w := range config.Relevance.Weights {
			weights[relevance.Dimension(name)] = w
		}
	}

	return relevance.NewHybrid(strategies, weights, logger), nil
}

func agentConfig(config *Config) (agent.Config, error) {
	cfg := agent.Config{Weights: relevance.DefaultWeights()}

	if config.Relevance != nil && len(config.Relevance.Weights) > 0 {
		cfg.Weights = relevance.Weights{}
		for name, w := range config.Relevance.Weights {
			cfg.Weights[relevance.Dimension(name)] = w
		}
	}

	if config.Search != nil {
		cfg.MinScore = config.Search.MinScore
		cfg.MaxResults = config.Search.MaxResults
		if config.Search.SourceTimeout != "" {
			d, err := time.ParseDuration(config.Search.SourceTimeout)
			if err != nil {
				return cfg, fmt.Errorf("parsing search.source-timeout: %w", err)
			}
			cfg.SourceTimeout = d
		}
	}

	if config.Filters != nil {
		cfg.Filters = filtering.Config{
			MinSalary:        config.Filters.MinSalary,
			MaxSalary:        config.Filters.MaxSalary,
			AllowedLocations: config.Filters.AllowedLocations,
			AllowRemote:      config.Filters.AllowRemote,
			ExcludedKeywords: config.Filters.ExcludedKeywords,
			MinScore:         cfg.MinScore,
		}
	} else {
		cfg.Filters = filtering.Config{MinScore: cfg.MinScore}
	}

	return cfg, nil
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Matcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when the model strategy is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	matcherLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
	)

	return gemini.NewMatcher(generator, matcherLogger, cfg.Gemini.MaxLogLength), nil
}
