// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-companion/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call the OpenAI API.
type AIConfig struct {
	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the OpenAI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// HarvestConfig holds settings for the vocabulary-harvest stage.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline"`
	AIConfig   `yaml:",inline"`

	// ISSN identifies the journal whose papers are harvested.
	ISSN string `json:"issn" yaml:"issn"`

	// StartYear and EndYear bound the inclusive range of publication years.
	StartYear int `json:"start_year" yaml:"start_year"`
	EndYear   int `json:"end_year" yaml:"end_year"`

	// TopKeywords is the size of the final controlled vocabulary (default 100).
	TopKeywords int `json:"top_keywords" yaml:"top_keywords"`

	// Mailto is sent to CrossRef for polite pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// StateFile is the path of the harvest checkpoint.
	StateFile string `json:"state_file" yaml:"state_file"`

	// VocabFile is the path of the final vocabulary report.
	VocabFile string `json:"vocab_file" yaml:"vocab_file"`

	// MetadataDelay is the minimum interval between metadata API calls (default 1s).
	MetadataDelay time.Duration `json:"metadata_delay" yaml:"metadata_delay"`

	// DownloadDelay is the minimum interval between PDF downloads (default 2s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// OracleDelay is the minimum interval between keyword-derivation calls (default 500ms).
	OracleDelay time.Duration `json:"oracle_delay" yaml:"oracle_delay"`
}

// DuplicateMode selects how note filename collisions are handled.
type DuplicateMode string

const (
	// DuplicateReplace overwrites an existing note with the same name.
	DuplicateReplace DuplicateMode = "replace"

	// DuplicateSuffix appends a letter (2024a, 2024b, ...) to the year
	// until the name is free.
	DuplicateSuffix DuplicateMode = "suffix"
)

// NotesConfig holds settings for the note-generation stage.
type NotesConfig struct {
	HTTPConfig `yaml:",inline"`
	AIConfig   `yaml:",inline"`

	// LibraryID is the numeric Zotero user library ID.
	LibraryID string `json:"library_id" yaml:"library_id"`

	// ZoteroAPIKey authenticates against the Zotero Web API.
	ZoteroAPIKey string `json:"zotero_api_key,omitempty" yaml:"zotero_api_key,omitempty"`

	// CollectionID is the 8-character Zotero collection key to process.
	CollectionID string `json:"collection_id" yaml:"collection_id"`

	// VaultDir is the directory notes are written to.
	VaultDir string `json:"vault_dir" yaml:"vault_dir"`

	// VocabFile is the controlled vocabulary report produced by the harvest stage.
	VocabFile string `json:"vocab_file" yaml:"vocab_file"`

	// IndexDir is the directory holding the note index database.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// Duplicates selects the filename collision policy (default suffix).
	Duplicates DuplicateMode `json:"duplicates" yaml:"duplicates"`

	// OracleDelay is the minimum interval between summary calls (default 1s).
	OracleDelay time.Duration `json:"oracle_delay" yaml:"oracle_delay"`

	// MaxTextChars caps the extracted full text sent to the oracle (default 100000).
	MaxTextChars int `json:"max_text_chars" yaml:"max_text_chars"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Harvest HarvestConfig `json:"harvest" yaml:"harvest"`
	Notes   NotesConfig   `json:"notes" yaml:"notes"`
}
