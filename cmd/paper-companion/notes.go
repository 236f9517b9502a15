package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-companion/internal/noteindex"
	"github.com/pdiddy/paper-companion/internal/notes"
	"github.com/pdiddy/paper-companion/internal/oracle"
	"github.com/pdiddy/paper-companion/internal/zotero"
	"github.com/pdiddy/paper-companion/pkg/types"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Generate literature notes for a Zotero collection",
	Long: `Notes generates one Markdown literature note per item in a Zotero
collection: it downloads each item's main PDF, extracts the text, asks the
model for a structured summary tagged from the controlled vocabulary, and
writes the note under a stable author-year filename. Items that already
have a note are skipped.`,
	RunE: runNotes,
}

func init() {
	notesCmd.Flags().String("collection", "", "Zotero collection key to process")
	notesCmd.Flags().String("library-id", "", "numeric Zotero user library ID")
	notesCmd.Flags().String("vault", "", "directory notes are written to (default vault/)")
	notesCmd.Flags().String("vocab-file", "", "controlled vocabulary report (default output/vocabulary.txt)")
	notesCmd.Flags().String("index-dir", "", "note index directory (default state/)")
	notesCmd.Flags().String("duplicates", "", "filename collision policy: suffix or replace (default suffix)")
	notesCmd.Flags().String("model", "", "chat model for summaries (default "+defaultModel+")")
	notesCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	notesCmd.Flags().Bool("yes", false, "answer yes to precondition prompts")
	notesCmd.Flags().Bool("force", false, "regenerate notes for items already in the index")

	rootCmd.AddCommand(notesCmd)
}

func runNotes(cmd *cobra.Command, args []string) error {
	cfg := types.NotesConfig{
		LibraryID:    flagOrConfig(cmd, "library-id", "notes.library_id"),
		CollectionID: flagOrConfig(cmd, "collection", "notes.collection_id"),
		VaultDir:     flagOrConfig(cmd, "vault", "notes.vault_dir"),
		VocabFile:    flagOrConfig(cmd, "vocab-file", "notes.vocab_file"),
		IndexDir:     flagOrConfig(cmd, "index-dir", "notes.index_dir"),

		ZoteroAPIKey: secretDefault("zotero-api-key", viper.GetString("notes.zotero_api_key")),
	}
	if cfg.LibraryID == "" {
		cfg.LibraryID = secretDefault("zotero-library-id", "")
	}
	if cfg.LibraryID == "" {
		return fmt.Errorf("provide a Zotero library ID via --library-id, the config file, or .secrets/zotero-library-id")
	}
	if cfg.CollectionID == "" {
		return fmt.Errorf("provide a Zotero collection key via --collection or the config file")
	}
	if cfg.VaultDir == "" {
		cfg.VaultDir = "vault"
	}
	if cfg.VocabFile == "" {
		cfg.VocabFile = "output/vocabulary.txt"
	}
	if cfg.IndexDir == "" {
		cfg.IndexDir = "state"
	}

	if mode, _ := cmd.Flags().GetString("duplicates"); mode != "" {
		switch types.DuplicateMode(mode) {
		case types.DuplicateReplace, types.DuplicateSuffix:
			cfg.Duplicates = types.DuplicateMode(mode)
		default:
			return fmt.Errorf("unknown duplicates policy %q (use suffix or replace)", mode)
		}
	}

	cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.UserAgent = defaultUserAgent

	cfg.Model = flagOrConfig(cmd, "model", "notes.model")
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	cfg.APIKey = secretDefault("openai-api-key", viper.GetString("notes.api_key"))
	if cfg.APIKey == "" {
		return fmt.Errorf("no OpenAI API key: add .secrets/openai-api-key or set notes.api_key")
	}

	client := &http.Client{Timeout: cfg.Timeout}
	zc := zotero.NewClient(cfg.LibraryID, cfg.ZoteroAPIKey, client)
	zc.UserAgent = cfg.UserAgent
	backend := oracle.NewOpenAI(cfg.AIConfig)

	idx, err := noteindex.Open(cfg.IndexDir)
	if err != nil {
		return err
	}
	defer idx.Close()

	gen := notes.New(cfg, zc, backend, idx, os.Stdout)
	gen.Force, _ = cmd.Flags().GetBool("force")
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		gen.Confirm = func(string) bool { return true }
	} else {
		gen.Confirm = promptYesNo
	}

	summary, err := gen.Run(cmd.Context())

	fmt.Printf("\nNotes: %d generated, %d replaced, %d skipped, %d failed\n",
		summary.Generated, summary.Replaced, summary.Skipped, summary.Failed)

	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d item(s) failed note generation", summary.Failed)
	}
	return nil
}

// promptYesNo asks the operator a yes/no question on the terminal.
func promptYesNo(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
