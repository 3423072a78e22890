package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/aws-log-remediator/internal/shared/types"
)

var requiredKeys = []string{
	EnvCloudRegion,
	EnvCloudAccessKey,
	EnvCloudSecretKey,
	EnvOpenAIAPIKey,
	EnvSlackWebhookURL,
}

var supportedReportTypes = map[string]bool{"csv": true, "json": true, "pdf": true}

func knownKeys() []string {
	return []string{
		EnvConfigFile,
		EnvCloudRegion, EnvCloudAccessKey, EnvCloudSecretKey, EnvCloudSessionToken,
		EnvOpenAIAPIKey, EnvOpenAIModel, EnvOpenAIBaseURL,
		EnvSlackWebhookURL, EnvSlackChannel,
		EnvMaxLogGroups, EnvLogGroupPrefix,
		EnvRetryMaxAttempts, EnvRetryBaseDelay, EnvRetryMultiplier, EnvRetryMaxJitter, EnvRetryMaxDelay,
		EnvRequestTimeout,
		EnvSendRunSummary, EnvEnrichResources,
		EnvReportTypes, EnvReportDir, EnvReportS3Bucket,
	}
}

// fileConfigValues achata o arquivo no mesmo espaço de chaves das variáveis de ambiente.
// Zeros e strings vazias contam como "não definido".
func fileConfigValues(fc *types.FileConfig) map[string]string {
	values := make(map[string]string)
	set := func(key, v string) {
		if v = strings.TrimSpace(v); v != "" {
			values[key] = v
		}
	}
	setInt := func(key string, v int) {
		if v != 0 {
			values[key] = strconv.Itoa(v)
		}
	}

	set(EnvCloudRegion, fc.CloudRegion)
	set(EnvCloudAccessKey, fc.CloudAccessKey)
	set(EnvCloudSecretKey, fc.CloudSecretKey)
	set(EnvCloudSessionToken, fc.CloudSessionToken)
	set(EnvOpenAIAPIKey, fc.OpenAIAPIKey)
	set(EnvOpenAIModel, fc.OpenAIModel)
	set(EnvOpenAIBaseURL, fc.OpenAIBaseURL)
	set(EnvSlackWebhookURL, fc.SlackWebhookURL)
	set(EnvSlackChannel, fc.SlackChannel)
	setInt(EnvMaxLogGroups, fc.MaxLogGroups)
	set(EnvLogGroupPrefix, fc.LogGroupPrefix)
	setInt(EnvRetryMaxAttempts, fc.RetryMaxAttempts)
	set(EnvRetryBaseDelay, fc.RetryBaseDelay)
	if fc.RetryMultiplier != 0 {
		values[EnvRetryMultiplier] = strconv.FormatFloat(fc.RetryMultiplier, 'g', -1, 64)
	}
	set(EnvRetryMaxJitter, fc.RetryMaxJitter)
	set(EnvRetryMaxDelay, fc.RetryMaxDelay)
	set(EnvRequestTimeout, fc.RequestTimeout)
	if fc.SendRunSummary {
		values[EnvSendRunSummary] = "true"
	}
	if fc.EnrichResources {
		values[EnvEnrichResources] = "true"
	}
	set(EnvReportTypes, strings.Join(fc.ReportTypes, ","))
	set(EnvReportDir, fc.ReportDir)
	set(EnvReportS3Bucket, fc.ReportS3Bucket)
	return values
}

// resolver busca cada chave na primeira camada que a define.
type resolver struct {
	layers []layer
	source map[string]string
	cerr   *types.ConfigurationError
}

func (r *resolver) get(key string) (string, bool) {
	for _, l := range r.layers {
		if v, ok := l.values[key]; ok && strings.TrimSpace(v) != "" {
			r.source[key] = l.source
			return v, true
		}
	}
	return "", false
}

func (r *resolver) str(key, def string) string {
	if v, ok := r.get(key); ok {
		return v
	}
	if def != "" {
		r.source[key] = SourceDefault
	}
	return def
}

func (r *resolver) integer(key string, def, floor int) int {
	v, ok := r.get(key)
	if !ok {
		r.source[key] = SourceDefault
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.cerr.Invalid[key] = fmt.Sprintf("%q is not an integer", v)
		return def
	}
	if n < floor {
		r.cerr.Invalid[key] = fmt.Sprintf("must be >= %d, got %d", floor, n)
		return def
	}
	return n
}

func (r *resolver) float(key string, def, floor float64) float64 {
	v, ok := r.get(key)
	if !ok {
		r.source[key] = SourceDefault
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.cerr.Invalid[key] = fmt.Sprintf("%q is not a number", v)
		return def
	}
	if f < floor {
		r.cerr.Invalid[key] = fmt.Sprintf("must be >= %g, got %g", floor, f)
		return def
	}
	return f
}

func (r *resolver) duration(key string, def time.Duration, allowZero bool) time.Duration {
	v, ok := r.get(key)
	if !ok {
		r.source[key] = SourceDefault
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.cerr.Invalid[key] = fmt.Sprintf("%q is not a duration", v)
		return def
	}
	if d < 0 || (d == 0 && !allowZero) {
		r.cerr.Invalid[key] = fmt.Sprintf("must be positive, got %s", d)
		return def
	}
	return d
}

func (r *resolver) boolean(key string) bool {
	v, ok := r.get(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.cerr.Invalid[key] = fmt.Sprintf("%q is not a boolean", v)
		return false
	}
	return b
}

func (r *resolver) httpURL(key string, required bool) string {
	v, ok := r.get(key)
	if !ok {
		if required {
			r.cerr.Missing = append(r.cerr.Missing, key)
		}
		return ""
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		r.cerr.Invalid[key] = "must be an absolute http(s) URL"
		return ""
	}
	return v
}

func (r *resolver) reportTypes() []string {
	v, ok := r.get(EnvReportTypes)
	if !ok {
		return nil
	}
	var out []string
	for _, t := range strings.Split(v, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !supportedReportTypes[t] {
			r.cerr.Invalid[EnvReportTypes] = fmt.Sprintf("unsupported report type %q (csv, json, pdf)", t)
			continue
		}
		out = append(out, t)
	}
	return out
}

func buildConfig(layers []layer, cerr *types.ConfigurationError) *types.Config {
	r := &resolver{layers: layers, source: map[string]string{}, cerr: cerr}

	for _, key := range requiredKeys {
		if key == EnvSlackWebhookURL {
			continue
		}
		if _, ok := r.get(key); !ok {
			cerr.Missing = append(cerr.Missing, key)
		}
	}

	defaults := types.DefaultRetrySettings()
	cfg := &types.Config{
		Region:          r.str(EnvCloudRegion, ""),
		AccessKey:       r.str(EnvCloudAccessKey, ""),
		SecretKey:       r.str(EnvCloudSecretKey, ""),
		SessionToken:    r.str(EnvCloudSessionToken, ""),
		OpenAIAPIKey:    r.str(EnvOpenAIAPIKey, ""),
		OpenAIModel:     r.str(EnvOpenAIModel, types.DefaultOpenAIModel),
		OpenAIBaseURL:   r.httpURL(EnvOpenAIBaseURL, false),
		SlackWebhookURL: r.httpURL(EnvSlackWebhookURL, true),
		SlackChannel:    r.str(EnvSlackChannel, ""),
		MaxLogGroups:    r.integer(EnvMaxLogGroups, types.DefaultMaxLogGroups, 1),
		LogGroupPrefix:  r.str(EnvLogGroupPrefix, ""),
		Retry: types.RetrySettings{
			MaxAttempts: r.integer(EnvRetryMaxAttempts, defaults.MaxAttempts, 1),
			BaseDelay:   r.duration(EnvRetryBaseDelay, defaults.BaseDelay, true),
			Multiplier:  r.float(EnvRetryMultiplier, defaults.Multiplier, 1),
			MaxJitter:   r.duration(EnvRetryMaxJitter, defaults.MaxJitter, true),
			MaxDelay:    r.duration(EnvRetryMaxDelay, defaults.MaxDelay, true),
		},
		RequestTimeout:  r.duration(EnvRequestTimeout, types.DefaultRequestTimeout, false),
		SendRunSummary:  r.boolean(EnvSendRunSummary),
		EnrichResources: r.boolean(EnvEnrichResources),
		ReportTypes:     r.reportTypes(),
		ReportDir:       r.str(EnvReportDir, ""),
		ReportS3Bucket:  r.str(EnvReportS3Bucket, ""),
	}
	cfg.Source = r.source
	return cfg
}
