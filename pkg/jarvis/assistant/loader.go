package assistant

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} or $VAR_NAME in config values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Z_][A-Z0-9_]*)`)

// Environment variables consulted for secrets.
const (
	EnvAPIKey       = "JARVIS_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvMailSender   = "GMAIL_EMAIL"
	EnvMailPassword = "GMAIL_APP_PASSWORD"
	EnvGatewayToken = "JARVIS_GATEWAY_TOKEN"
)

// LoadConfig loads path when given, otherwise a discovered config file,
// otherwise the defaults. Environment secrets are applied in every case.
// The returned path is empty when no file was used.
func LoadConfig(path string) (*Config, string, error) {
	if path == "" {
		path = FindConfigFile()
	}
	if path == "" {
		loadEnvFiles()
		cfg := DefaultConfig()
		resolveSecrets(cfg)
		return cfg, "", nil
	}

	cfg, err := LoadConfigFromFile(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// LoadConfigFromFile reads and parses a YAML configuration file.
// .env files are loaded first and ${VAR} references expanded.
func LoadConfigFromFile(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := ParseConfig([]byte(expandEnvVars(string(data))))
	if err != nil {
		return nil, err
	}

	resolveSecrets(cfg)
	checkFilePermissions(path)
	return cfg, nil
}

// ParseConfig parses YAML bytes over DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}

// SaveConfigToFile writes cfg as YAML with owner-only permissions.
// Secrets that came from the environment are written back as references.
func SaveConfigToFile(cfg *Config, path string) error {
	sanitized := *cfg
	sanitized.LLM.APIKey = sanitizeSecret(cfg.LLM.APIKey, EnvAPIKey, EnvOpenAIKey, EnvGeminiKey)
	sanitized.Mail.Password = sanitizeSecret(cfg.Mail.Password, EnvMailPassword)
	sanitized.Gateway.AuthToken = sanitizeSecret(cfg.Gateway.AuthToken, EnvGatewayToken)

	data, err := yaml.Marshal(&sanitized)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// FindConfigFile searches the standard locations.
func FindConfigFile() string {
	candidates := []string{
		"config.yaml",
		"config.yml",
		"jarvis.yaml",
		"jarvis.yml",
		"configs/jarvis.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// AuditSecrets warns about secrets hardcoded in the config file.
func AuditSecrets(cfg *Config, logger *slog.Logger) {
	if looksLikeRealKey(cfg.LLM.APIKey) {
		logger.Warn("API key appears to be hardcoded in config. "+
			"Use the keyring or "+EnvAPIKey+" instead.",
			"hint", "Run 'jarvis config set-key'")
	}
	if cfg.Mail.Password != "" && !IsEnvReference(cfg.Mail.Password) && os.Getenv(EnvMailPassword) == "" {
		logger.Warn("mail password is stored in config",
			"hint", "Set "+EnvMailPassword+" or run 'jarvis config set-key --mail'")
	}
}

// ---------- Internal ----------

func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		// godotenv.Load does not overwrite existing variables.
		_ = godotenv.Load(f)
	}
}

// expandEnvVars replaces ${VAR} and $VAR references with their values.
// Unset variables are left as-is.
func expandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		var name string
		if strings.HasPrefix(match, "${") {
			name = match[2 : len(match)-1]
		} else {
			name = match[1:]
		}
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// resolveSecrets fills empty or placeholder secrets from the environment.
func resolveSecrets(cfg *Config) {
	if unset(cfg.LLM.APIKey) {
		keys := []string{EnvAPIKey, EnvOpenAIKey}
		if cfg.LLM.Provider == "gemini" {
			keys = []string{EnvAPIKey, EnvGeminiKey}
		}
		cfg.LLM.APIKey = firstEnv(keys...)
	}
	if unset(cfg.Mail.Sender) {
		cfg.Mail.Sender = os.Getenv(EnvMailSender)
	}
	if unset(cfg.Mail.Password) {
		cfg.Mail.Password = os.Getenv(EnvMailPassword)
	}
	if unset(cfg.Gateway.AuthToken) {
		cfg.Gateway.AuthToken = os.Getenv(EnvGatewayToken)
	}
}

func unset(v string) bool {
	return v == "" || IsEnvReference(v)
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// sanitizeSecret replaces a secret with a reference to the environment
// variable that currently holds the same value.
func sanitizeSecret(value string, envVars ...string) string {
	if value == "" || IsEnvReference(value) {
		return value
	}
	for _, env := range envVars {
		if os.Getenv(env) == value {
			return "${" + env + "}"
		}
	}
	return value
}

// IsEnvReference reports whether s is an unexpanded variable reference.
func IsEnvReference(s string) bool {
	return strings.HasPrefix(s, "$")
}

func looksLikeRealKey(s string) bool {
	if s == "" || IsEnvReference(s) {
		return false
	}
	for _, env := range []string{EnvAPIKey, EnvOpenAIKey, EnvGeminiKey} {
		if os.Getenv(env) == s {
			return false
		}
	}
	return strings.HasPrefix(s, "sk-") || strings.HasPrefix(s, "AIza") || len(s) > 20
}

// checkFilePermissions warns if the config file is readable by others.
func checkFilePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if mode := info.Mode().Perm(); mode&0o044 != 0 {
		slog.Warn("config file has open permissions, consider restricting",
			"path", path,
			"current", fmt.Sprintf("%04o", mode),
			"fix", fmt.Sprintf("chmod 600 %s", path),
		)
	}
}
