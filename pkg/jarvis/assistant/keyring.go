package assistant

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	keyringService = "jarvis"

	// KeyringAPIKey holds the model provider key.
	KeyringAPIKey = "api_key"

	// KeyringMailPassword holds the SMTP app password.
	KeyringMailPassword = "mail_password"
)

// StoreKeyring saves a secret to the OS keyring.
func StoreKeyring(key, value string) error {
	return keyring.Set(keyringService, key, value)
}

// GetKeyring retrieves a secret from the OS keyring.
// Returns empty string if not found.
func GetKeyring(key string) string {
	val, err := keyring.Get(keyringService, key)
	if err != nil {
		return ""
	}
	return val
}

// DeleteKeyring removes a secret from the OS keyring.
func DeleteKeyring(key string) error {
	return keyring.Delete(keyringService, key)
}

// KeyringAvailable checks if the OS keyring is accessible.
func KeyringAvailable() bool {
	testKey := "__jarvis_test__"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, testKey)
	return true
}

// ResolveSecrets fills the API key and mail password from the keyring,
// which takes priority over the environment and the config file.
func ResolveSecrets(cfg *Config, logger *slog.Logger) {
	if val := GetKeyring(KeyringAPIKey); val != "" {
		cfg.LLM.APIKey = val
		logger.Debug("API key loaded from OS keyring")
	} else if cfg.LLM.APIKey == "" || IsEnvReference(cfg.LLM.APIKey) {
		cfg.LLM.APIKey = ""
		logger.Debug("no API key found, model fallback and chat disabled",
			"hint", "Run 'jarvis config set-key'")
	}

	if val := GetKeyring(KeyringMailPassword); val != "" {
		cfg.Mail.Password = val
		logger.Debug("mail password loaded from OS keyring")
	}
}

// ReadPassword reads a password from the terminal without echoing.
// Falls back to regular stdin reading if terminal is not available.
func ReadPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		var buf [1024]byte
		n, readErr := os.Stdin.Read(buf[:])
		if readErr != nil {
			return "", fmt.Errorf("reading password: %w", readErr)
		}
		password = buf[:n]
	}
	fmt.Fprintln(os.Stderr)

	return strings.TrimRight(string(password), "\r\n"), nil
}
