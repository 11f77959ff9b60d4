package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/vault/api"

	"internmatch/internal/errors"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets are KVv2 paths. APIKeys is read from its "keys" field as a
// comma-separated list, GeminiKey from its "api_key" field.
type VaultSecrets struct {
	APIKeys   string `mapstructure:"apiKeys"`
	GeminiKey string `mapstructure:"geminiKey"`
}

// VaultSecret is one KVv2 secret version
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// VaultClient reads KVv2 secrets
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// secretBinding maps one Vault field onto the configuration
type secretBinding struct {
	name  string
	path  string
	field string
	apply func(cfg *Config, value string, logger *errors.Logger)
}

func (c *Config) secretBindings() []secretBinding {
	return []secretBinding{
		{
			name:  "server API keys",
			path:  c.Vault.Secrets.APIKeys,
			field: "keys",
			apply: func(cfg *Config, value string, logger *errors.Logger) {
				keys := splitAndTrim(value)
				if len(keys) == 0 {
					logger.Warn("No API keys found in Vault", "path", cfg.Vault.Secrets.APIKeys)
					return
				}
				cfg.Server.APIKeys = keys
				logger.Info("API keys loaded from Vault", "count", len(keys))
			},
		},
		{
			name:  "Gemini API key",
			path:  c.Vault.Secrets.GeminiKey,
			field: "api_key",
			apply: func(cfg *Config, value string, logger *errors.Logger) {
				if value == "" {
					logger.Warn("Empty Gemini API key found in Vault", "path", cfg.Vault.Secrets.GeminiKey)
					return
				}
				applyGeminiKeyToConfig(cfg, value)
				logger.Info("Gemini API key loaded from Vault")
			},
		},
	}
}

// ApplyVaultSecrets overlays secrets from Vault onto cfg. Unset paths are
// skipped; a configured path that cannot be read is an error.
func ApplyVaultSecrets(cfg *Config, logger *errors.Logger) error {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	if !cfg.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}

	client, err := NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}

	for _, b := range cfg.secretBindings() {
		if b.path == "" {
			continue
		}
		value, err := client.GetStringSecret(b.path, b.field)
		if err != nil {
			logger.LogError(err, "Failed to load secret from Vault", "secret", b.name, "path", b.path)
			return fmt.Errorf("failed to load %s from vault: %w", b.name, err)
		}
		b.apply(cfg, value, logger)
	}
	return nil
}

// NewVaultClient connects to Vault and checks its health
func NewVaultClient(vc VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	apiCfg := api.DefaultConfig()
	if vc.Address != "" {
		apiCfg.Address = vc.Address
	}
	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if vc.Namespace != "" {
		client.SetNamespace(vc.Namespace)
	}

	token, err := resolveVaultToken(vc, logger)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		logger.LogError(err, "Failed to connect to Vault", "address", apiCfg.Address)
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	logger.Info("Connected to Vault",
		"address", apiCfg.Address,
		"version", health.Version,
		"sealed", health.Sealed)

	return &VaultClient{client: client, logger: logger}, nil
}

// resolveVaultToken prefers the inline token over the token file
func resolveVaultToken(vc VaultConfig, logger *errors.Logger) (string, error) {
	token := vc.Token
	if token == "" && vc.TokenFile != "" {
		raw, err := os.ReadFile(vc.TokenFile)
		if err != nil {
			logger.LogError(err, "Failed to read Vault token file", "file", vc.TokenFile)
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 reads a KVv2 secret and its version
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	version, err := parseVersionValue(metadata["version"], path)
	if err != nil {
		return nil, err
	}

	vc.logger.Debug("Secret read from Vault", "path", path, "version", version)
	return &VaultSecret{Data: data, Version: version}, nil
}

// GetStringSecret reads one string field of a KVv2 secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	return s, nil
}

// parseVersionValue accepts the numeric encodings the Vault client produces
func parseVersionValue(raw any, path string) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		return parseVersionValue(string(v), path)
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	case nil:
		return 0, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, raw)
	}
}

// applyGeminiKeyToConfig sets the global key and fills every operation
// that has no key of its own
func applyGeminiKeyToConfig(cfg *Config, geminiKey string) {
	cfg.AI.APIKey = geminiKey
	for _, key := range []*string{&cfg.AI.Rerank.APIKey, &cfg.AI.DeepParse.APIKey, &cfg.AI.Embedding.APIKey} {
		if *key == "" {
			*key = geminiKey
		}
	}
}
