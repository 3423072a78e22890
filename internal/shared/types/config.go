package types

import (
	"sort"
	"time"

	"github.com/diillson/aws-log-remediator/pkg/retry"
)

// FileConfig representa o arquivo de configuração local (TOML, YAML ou JSON).
// As chaves espelham as variáveis de ambiente em minúsculas. Durações são
// strings no formato de time.ParseDuration ("1s", "250ms").
type FileConfig struct {
	CloudRegion       string   `json:"cloud_region" yaml:"cloud_region" toml:"cloud_region"`
	CloudAccessKey    string   `json:"cloud_access_key" yaml:"cloud_access_key" toml:"cloud_access_key"`
	CloudSecretKey    string   `json:"cloud_secret_key" yaml:"cloud_secret_key" toml:"cloud_secret_key"`
	CloudSessionToken string   `json:"cloud_session_token" yaml:"cloud_session_token" toml:"cloud_session_token"`
	OpenAIAPIKey      string   `json:"openai_api_key" yaml:"openai_api_key" toml:"openai_api_key"`
	OpenAIModel       string   `json:"openai_model" yaml:"openai_model" toml:"openai_model"`
	OpenAIBaseURL     string   `json:"openai_base_url" yaml:"openai_base_url" toml:"openai_base_url"`
	SlackWebhookURL   string   `json:"slack_webhook_url" yaml:"slack_webhook_url" toml:"slack_webhook_url"`
	SlackChannel      string   `json:"slack_channel" yaml:"slack_channel" toml:"slack_channel"`
	MaxLogGroups      int      `json:"max_log_groups" yaml:"max_log_groups" toml:"max_log_groups"`
	LogGroupPrefix    string   `json:"log_group_prefix" yaml:"log_group_prefix" toml:"log_group_prefix"`
	RetryMaxAttempts  int      `json:"retry_max_attempts" yaml:"retry_max_attempts" toml:"retry_max_attempts"`
	RetryBaseDelay    string   `json:"retry_base_delay" yaml:"retry_base_delay" toml:"retry_base_delay"`
	RetryMultiplier   float64  `json:"retry_multiplier" yaml:"retry_multiplier" toml:"retry_multiplier"`
	RetryMaxJitter    string   `json:"retry_max_jitter" yaml:"retry_max_jitter" toml:"retry_max_jitter"`
	RetryMaxDelay     string   `json:"retry_max_delay" yaml:"retry_max_delay" toml:"retry_max_delay"`
	RequestTimeout    string   `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	SendRunSummary    bool     `json:"send_run_summary" yaml:"send_run_summary" toml:"send_run_summary"`
	EnrichResources   bool     `json:"enrich_resources" yaml:"enrich_resources" toml:"enrich_resources"`
	ReportTypes       []string `json:"report_types" yaml:"report_types" toml:"report_types"`
	ReportDir         string   `json:"report_dir" yaml:"report_dir" toml:"report_dir"`
	ReportS3Bucket    string   `json:"report_s3_bucket" yaml:"report_s3_bucket" toml:"report_s3_bucket"`
}

// RetrySettings são os parâmetros da política de retry compartilhada.
type RetrySettings struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxJitter   time.Duration
	MaxDelay    time.Duration
}

// Config é a configuração resolvida, montada uma vez no início do processo
// e passada explicitamente para cada componente.
type Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	SessionToken string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	SlackWebhookURL string
	SlackChannel    string

	MaxLogGroups   int
	LogGroupPrefix string

	Retry          RetrySettings
	RequestTimeout time.Duration

	SendRunSummary  bool
	EnrichResources bool

	ReportTypes    []string
	ReportDir      string
	ReportS3Bucket string

	// Source lista de onde veio cada chave (env, .env, arquivo, default), para diagnóstico.
	Source map[string]string
}

// Default values.
const (
	DefaultMaxLogGroups   = 3
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultRequestTimeout = 60 * time.Second
)

// DefaultRetrySettings espelha retry.DefaultPolicy.
func DefaultRetrySettings() RetrySettings {
	p := retry.DefaultPolicy()
	return RetrySettings{
		MaxAttempts: p.MaxAttempts,
		BaseDelay:   p.BaseDelay,
		Multiplier:  p.Multiplier,
		MaxJitter:   p.MaxJitter,
		MaxDelay:    p.MaxDelay,
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
