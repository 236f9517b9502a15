package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-companion/internal/harvest"
	"github.com/pdiddy/paper-companion/internal/oracle"
	"github.com/pdiddy/paper-companion/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "paper-companion/0.1"
	defaultModel     = "gpt-4o-mini"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Harvest a journal's papers and build the controlled vocabulary",
	Long: `Keywords walks the configured year range of one journal, derives
keywords from each paper's abstract and (when an open-access PDF is
available) its methodology section, and consolidates them into a ranked
controlled vocabulary. Progress is checkpointed after every completed
year, so an interrupted run resumes without re-spending API budget.`,
	RunE: runKeywords,
}

func init() {
	keywordsCmd.Flags().String("issn", "", "journal ISSN to harvest")
	keywordsCmd.Flags().Int("start-year", 0, "first publication year")
	keywordsCmd.Flags().Int("end-year", 0, "last publication year (inclusive)")
	keywordsCmd.Flags().Int("top", 0, "size of the final vocabulary (default 100)")
	keywordsCmd.Flags().String("state-file", "", "checkpoint file (default state/harvest.yaml)")
	keywordsCmd.Flags().String("vocab-file", "", "vocabulary report file (default output/vocabulary.txt)")
	keywordsCmd.Flags().String("model", "", "chat model for keyword derivation (default "+defaultModel+")")
	keywordsCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	keywordsCmd.Flags().Bool("fresh", false, "discard the checkpoint and redo every year")

	rootCmd.AddCommand(keywordsCmd)
}

// flagOrConfig returns the flag value when set, else the config file value.
func flagOrConfig(cmd *cobra.Command, flag, key string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return viper.GetString(key)
}

func flagOrConfigInt(cmd *cobra.Command, flag, key string) int {
	if v, _ := cmd.Flags().GetInt(flag); v != 0 {
		return v
	}
	return viper.GetInt(key)
}

func runKeywords(cmd *cobra.Command, args []string) error {
	cfg := types.HarvestConfig{
		ISSN:        flagOrConfig(cmd, "issn", "harvest.issn"),
		StartYear:   flagOrConfigInt(cmd, "start-year", "harvest.start_year"),
		EndYear:     flagOrConfigInt(cmd, "end-year", "harvest.end_year"),
		TopKeywords: flagOrConfigInt(cmd, "top", "harvest.top_keywords"),
		StateFile:   flagOrConfig(cmd, "state-file", "harvest.state_file"),
		VocabFile:   flagOrConfig(cmd, "vocab-file", "harvest.vocab_file"),

		Mailto:                secretDefault("crossref-mailto", viper.GetString("harvest.mailto")),
		SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", ""),
	}
	if cfg.ISSN == "" {
		return fmt.Errorf("provide a journal ISSN via --issn or the config file")
	}
	if cfg.StartYear == 0 || cfg.EndYear == 0 {
		return fmt.Errorf("provide --start-year and --end-year")
	}
	if cfg.StartYear > cfg.EndYear {
		return fmt.Errorf("start year %d is after end year %d", cfg.StartYear, cfg.EndYear)
	}
	if cfg.StateFile == "" {
		cfg.StateFile = "state/harvest.yaml"
	}
	if cfg.VocabFile == "" {
		cfg.VocabFile = "output/vocabulary.txt"
	}

	cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.UserAgent = defaultUserAgent

	cfg.Model = flagOrConfig(cmd, "model", "harvest.model")
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	cfg.APIKey = secretDefault("openai-api-key", viper.GetString("harvest.api_key"))
	if cfg.APIKey == "" {
		return fmt.Errorf("no OpenAI API key: add .secrets/openai-api-key or set harvest.api_key")
	}

	fresh, _ := cmd.Flags().GetBool("fresh")

	client := &http.Client{Timeout: cfg.Timeout}
	backend := oracle.NewOpenAI(cfg.AIConfig)

	h := harvest.New(cfg, client, backend, os.Stdout)
	summary, err := h.Run(cmd.Context(), fresh)

	fmt.Printf("\nYears: %d processed, %d skipped, %d failed\n",
		summary.YearsProcessed, summary.YearsSkipped, summary.YearsFailed)
	fmt.Printf("Papers: %d analyzed, %d without abstracts, %d method sections, %d failed\n",
		summary.Papers, summary.NoAbstract, summary.MethodSections, summary.Failed)

	if err != nil {
		return err
	}
	if summary.HasFailures() {
		fmt.Println("some years or papers failed; failed years are redone on the next run")
	}
	return nil
}
