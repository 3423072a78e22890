package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/aws-log-remediator/internal/domain/repository"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Nomes das variáveis de ambiente (e chaves do arquivo, em minúsculas).
const (
	EnvConfigFile        = "REMEDIATOR_CONFIG_FILE"
	EnvCloudRegion       = "CLOUD_REGION"
	EnvCloudAccessKey    = "CLOUD_ACCESS_KEY"
	EnvCloudSecretKey    = "CLOUD_SECRET_KEY"
	EnvCloudSessionToken = "CLOUD_SESSION_TOKEN"
	EnvOpenAIAPIKey      = "OPENAI_API_KEY"
	EnvOpenAIModel       = "OPENAI_MODEL"
	EnvOpenAIBaseURL     = "OPENAI_BASE_URL"
	EnvSlackWebhookURL   = "SLACK_WEBHOOK_URL"
	EnvSlackChannel      = "SLACK_CHANNEL"
	EnvMaxLogGroups      = "MAX_LOG_GROUPS"
	EnvLogGroupPrefix    = "LOG_GROUP_PREFIX"
	EnvRetryMaxAttempts  = "RETRY_MAX_ATTEMPTS"
	EnvRetryBaseDelay    = "RETRY_BASE_DELAY"
	EnvRetryMultiplier   = "RETRY_MULTIPLIER"
	EnvRetryMaxJitter    = "RETRY_MAX_JITTER"
	EnvRetryMaxDelay     = "RETRY_MAX_DELAY"
	EnvRequestTimeout    = "REQUEST_TIMEOUT"
	EnvSendRunSummary    = "SEND_RUN_SUMMARY"
	EnvEnrichResources   = "ENRICH_RESOURCES"
	EnvReportTypes       = "REPORT_TYPES"
	EnvReportDir         = "REPORT_DIR"
	EnvReportS3Bucket    = "REPORT_S3_BUCKET"
)

// Origem de cada valor resolvido.
const (
	SourceEnv     = "env"
	SourceDotEnv  = ".env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// defaultConfigFiles são procurados no diretório de trabalho, nesta ordem.
var defaultConfigFiles = []string{"remediator.toml", "remediator.yaml", "remediator.yml", "remediator.json"}

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct {
	lookupEnv func(string) (string, bool)
	workDir   string
}

// Option configura o ConfigRepositoryImpl.
type Option func(*ConfigRepositoryImpl)

// WithEnvLookup substitui os.LookupEnv.
func WithEnvLookup(fn func(string) (string, bool)) Option {
	return func(r *ConfigRepositoryImpl) { r.lookupEnv = fn }
}

// WithWorkDir define onde procurar .env e remediator.{toml,yaml,yml,json}.
func WithWorkDir(dir string) Option {
	return func(r *ConfigRepositoryImpl) { r.workDir = dir }
}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository(opts ...Option) repository.ConfigRepository {
	r := &ConfigRepositoryImpl{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.FileConfig, error) {
	fileExtension := filepath.Ext(filePath)
	fileExtension = strings.ToLower(fileExtension)

	// Verifica se o arquivo existe
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.FileConfig

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	return &config, nil
}

// layer é uma fonte de valores com sua origem.
type layer struct {
	source string
	values map[string]string
}

// Resolve monta a configuração final. Precedência: ambiente do processo,
// depois .env, depois o arquivo de configuração, depois os defaults.
// Qualquer problema é reportado de uma vez em um *types.ConfigurationError.
func (r *ConfigRepositoryImpl) Resolve() (*types.Config, error) {
	cerr := &types.ConfigurationError{Invalid: map[string]string{}}

	dotenv, err := r.readDotEnv()
	if err != nil {
		cerr.Invalid[SourceDotEnv] = err.Error()
	}

	layers := []layer{
		{source: SourceEnv, values: r.envValues()},
		{source: SourceDotEnv, values: dotenv},
	}

	fileValues, err := r.readConfigFile(layers)
	if err != nil {
		cerr.Invalid[EnvConfigFile] = err.Error()
	}
	layers = append(layers, layer{source: SourceFile, values: fileValues})

	cfg := buildConfig(layers, cerr)
	if cerr.HasProblems() {
		if len(cerr.Invalid) == 0 {
			cerr.Invalid = nil
		}
		return nil, cerr
	}
	return cfg, nil
}

// envValues lê apenas as chaves conhecidas do ambiente do processo.
func (r *ConfigRepositoryImpl) envValues() map[string]string {
	values := make(map[string]string)
	for _, key := range knownKeys() {
		if v, ok := r.lookupEnv(key); ok && strings.TrimSpace(v) != "" {
			values[key] = strings.TrimSpace(v)
		}
	}
	return values
}

// readDotEnv lê o .env sem alterar o ambiente do processo.
func (r *ConfigRepositoryImpl) readDotEnv() (map[string]string, error) {
	path := filepath.Join(r.workDir, ".env")
	if _, err := os.Stat(path); err != nil {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return map[string]string{}, fmt.Errorf("error parsing %s: %w", path, err)
	}
	for k, v := range values {
		values[k] = strings.TrimSpace(v)
	}
	return values, nil
}

func (r *ConfigRepositoryImpl) readConfigFile(higher []layer) (map[string]string, error) {
	path := ""
	for _, l := range higher {
		if v := l.values[EnvConfigFile]; v != "" {
			path = v
			break
		}
	}

	explicit := path != ""
	if !explicit {
		for _, name := range defaultConfigFiles {
			candidate := filepath.Join(r.workDir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	} else if !filepath.IsAbs(path) && r.workDir != "" {
		path = filepath.Join(r.workDir, path)
	}

	if path == "" {
		return map[string]string{}, nil
	}

	fc, err := r.LoadConfigFile(path)
	if err != nil {
		return map[string]string{}, err
	}
	return fileConfigValues(fc), nil
}
