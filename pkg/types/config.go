package types

import "time"

// Provider identifies the language-model service behind a pass.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// HTTPConfig holds shared HTTP settings used by passes that call a model API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litreview/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for passes that call a language model.
type AIConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the model service: openai or anthropic.
	Provider Provider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gpt-4o").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the sampling temperature sent with each request.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxRetries bounds the retries on HTTP 429 responses (0 uses the
	// default of 5, negative disables retrying).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Debug replaces the network call with the contents of FixturePath.
	Debug bool `json:"debug" yaml:"debug"`

	// FixturePath is the canned model response used in debug mode.
	FixturePath string `json:"fixture_path" yaml:"fixture_path"`
}

// ScreeningConfig holds settings for the screening pass.
type ScreeningConfig struct {
	AIConfig `yaml:",inline"`

	// PDFDir is the directory of candidate PDFs.
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir"`

	// OutputCSV is the screening CSV written at the end of the run.
	OutputCSV string `json:"output_csv" yaml:"output_csv"`

	// PageBudget stops text extraction once this many characters were read (default 3000).
	PageBudget int `json:"page_budget" yaml:"page_budget"`

	// ExcerptLimit caps the characters sent to the model (default 6000).
	ExcerptLimit int `json:"excerpt_limit" yaml:"excerpt_limit"`
}

// ReviewConfig holds settings for the detailed extraction pass.
type ReviewConfig struct {
	AIConfig `yaml:",inline"`

	// PDFDir is the directory of candidate PDFs.
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir"`

	// OutputCSV is the review CSV that records are appended to.
	OutputCSV string `json:"output_csv" yaml:"output_csv"`

	// ScreenedCSV is the human-checked screening CSV gating eligibility.
	// Empty disables gating.
	ScreenedCSV string `json:"screened_csv" yaml:"screened_csv"`

	// ScreenedDelimiter is the field separator of ScreenedCSV.
	ScreenedDelimiter rune `json:"screened_delimiter" yaml:"screened_delimiter"`

	// JSONDir receives one artifact per processed PDF.
	JSONDir string `json:"json_dir" yaml:"json_dir"`

	// MaxChars caps the extracted paper text (0 = whole paper).
	MaxChars int `json:"max_chars" yaml:"max_chars"`
}

// ReportConfig holds settings for the reporting pass.
type ReportConfig struct {
	// ReviewCSV is the processed review CSV (semicolon-separated).
	ReviewCSV string `json:"review_csv" yaml:"review_csv"`

	// ResultsXLSX is the spreadsheet of extracted quantitative results.
	ResultsXLSX string `json:"results_xlsx" yaml:"results_xlsx"`

	// FiguresDir receives the rendered charts.
	FiguresDir string `json:"figures_dir" yaml:"figures_dir"`

	// SampleSize is the assumed per-study N behind the placeholder standard error.
	SampleSize int `json:"sample_size" yaml:"sample_size"`
}

// LedgerConfig holds settings for the SQLite review index.
type LedgerConfig struct {
	// JSONDir is the artifact directory ingested by the index.
	JSONDir string `json:"json_dir" yaml:"json_dir"`

	// IndexDir holds review.db and exports.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all pass configurations.
type PipelineConfig struct {
	Screening ScreeningConfig `json:"screening" yaml:"screening"`
	Review    ReviewConfig    `json:"review" yaml:"review"`
	Report    ReportConfig    `json:"report" yaml:"report"`
	Ledger    LedgerConfig    `json:"ledger" yaml:"ledger"`
}
