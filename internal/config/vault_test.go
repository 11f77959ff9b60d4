package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internmatch/internal/errors"
)

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(7), expected: 7},
		{name: "string value", input: "42", expected: 42},
		{name: "json number", input: json.Number("3"), expected: 3},
		{name: "missing version", input: nil, expectError: true},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "secret/data/test")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestApplyGeminiKeyToConfig(t *testing.T) {
	config := &Config{
		AI: AIConfig{
			Rerank:    OperationAIConfig{APIKey: "existing-rerank-key"},
			DeepParse: OperationAIConfig{},
			Embedding: EmbeddingConfig{},
		},
	}

	applyGeminiKeyToConfig(config, "vault-key")

	assert.Equal(t, "vault-key", config.AI.APIKey)
	assert.Equal(t, "existing-rerank-key", config.AI.Rerank.APIKey, "operation keys are not overwritten")
	assert.Equal(t, "vault-key", config.AI.DeepParse.APIKey)
	assert.Equal(t, "vault-key", config.AI.Embedding.APIKey)
}

func TestResolveVaultToken(t *testing.T) {
	logger := errors.NewNopLogger()

	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, logger)
		require.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file is trimmed", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		require.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read vault token file")
	})

	t.Run("blank token file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "empty-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("   \n"), 0600))

		_, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})

	t.Run("no token", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{AI: AIConfig{APIKey: "from-env"}}
	require.NoError(t, ApplyVaultSecrets(config, errors.NewNopLogger()))
	assert.Equal(t, "from-env", config.AI.APIKey)
}

// fakeVault serves the health endpoint and KVv2 reads from a fixed map.
func fakeVault(t *testing.T, secrets map[string]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/v1/sys/health" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"initialized": true,
				"sealed":      false,
				"version":     "1.15.0",
			})
			return
		}
		data, ok := secrets[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"data":     data,
				"metadata": map[string]any{"version": 3},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestApplyVaultSecretsFromKV(t *testing.T) {
	srv := fakeVault(t, map[string]map[string]any{
		"/v1/secret/data/internmatch/api-keys": {"keys": "alpha, beta ,gamma"},
		"/v1/secret/data/internmatch/gemini":   {"api_key": "gemini-from-vault"},
	})

	config := &Config{
		Vault: VaultConfig{
			Enabled: true,
			Address: srv.URL,
			Token:   "root",
			Secrets: VaultSecrets{
				APIKeys:   "secret/data/internmatch/api-keys",
				GeminiKey: "secret/data/internmatch/gemini",
			},
		},
	}

	require.NoError(t, ApplyVaultSecrets(config, errors.NewNopLogger()))
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, config.Server.APIKeys)
	assert.Equal(t, "gemini-from-vault", config.AI.APIKey)
	assert.Equal(t, "gemini-from-vault", config.AI.Embedding.APIKey)
}

func TestVaultClientSecretErrors(t *testing.T) {
	srv := fakeVault(t, map[string]map[string]any{
		"/v1/secret/data/numbers": {"api_key": 1234},
	})

	client, err := NewVaultClient(VaultConfig{Enabled: true, Address: srv.URL, Token: "root"}, errors.NewNopLogger())
	require.NoError(t, err)

	secret, err := client.GetSecretV2("secret/data/numbers")
	require.NoError(t, err)
	assert.Equal(t, int64(3), secret.Version)

	_, err = client.GetStringSecret("secret/data/numbers", "api_key")
	assert.ErrorContains(t, err, "is not a string")

	_, err = client.GetStringSecret("secret/data/numbers", "missing")
	assert.ErrorContains(t, err, "not found")

	_, err = client.GetSecretV2("secret/data/absent")
	assert.Error(t, err)
}

func TestNilVaultClient(t *testing.T) {
	var client *VaultClient
	_, err := client.GetSecretV2("secret/data/any")
	assert.ErrorContains(t, err, "not initialized")
}
