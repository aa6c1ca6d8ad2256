package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// secretsAPI is the part of the Key Vault client used here
type secretsAPI interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// VaultClient reads secrets from Azure Key Vault and keeps recently used
// values in a bounded, expiring cache.
type VaultClient struct {
	api       secretsAPI
	vaultName string
	logger    *zap.Logger
	cache     *expirable.LRU[string, string]
}

// VaultConfig holds configuration for the vault client
type VaultConfig struct {
	VaultName    string
	CacheEnabled bool
	CacheTTL     time.Duration
	CacheSize    int
}

// NewVaultClient creates a new Azure Key Vault client.
// Authentication goes through DefaultAzureCredential (environment, managed identity, Azure CLI).
func NewVaultClient(cfg *VaultConfig, logger *zap.Logger) (*VaultClient, error) {
	if cfg.VaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	logger.Info("Initializing Azure Key Vault client",
		zap.String("vault_name", cfg.VaultName),
		zap.Bool("cache_enabled", cfg.CacheEnabled),
	)

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		logger.Error("Failed to create Azure credential", zap.Error(err))
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", cfg.VaultName)

	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		logger.Error("Failed to create Key Vault client", zap.Error(err))
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	logger.Info("Azure Key Vault client initialized successfully",
		zap.String("vault_url", vaultURL),
	)

	return newVaultClient(client, cfg, logger), nil
}

func newVaultClient(api secretsAPI, cfg *VaultConfig, logger *zap.Logger) *VaultClient {
	v := &VaultClient{
		api:       api,
		vaultName: cfg.VaultName,
		logger:    logger,
	}

	if cfg.CacheEnabled {
		ttl := cfg.CacheTTL
		if ttl == 0 {
			ttl = 5 * time.Minute
		}
		size := cfg.CacheSize
		if size <= 0 {
			size = 128
		}
		v.cache = expirable.NewLRU[string, string](size, nil, ttl)
	}

	return v
}

// GetSecret retrieves a secret from Azure Key Vault
func (v *VaultClient) GetSecret(ctx context.Context, secretName string) (string, error) {
	if v.cache != nil {
		if value, ok := v.cache.Get(secretName); ok {
			v.logger.Debug("Secret retrieved from cache", zap.String("secret_name", secretName))
			return value, nil
		}
	}

	v.logger.Debug("Fetching secret from Key Vault", zap.String("secret_name", secretName))

	resp, err := v.api.GetSecret(ctx, secretName, "", nil)
	if err != nil {
		v.logger.Error("Failed to get secret from Key Vault",
			zap.String("secret_name", secretName),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to get secret '%s': %w", secretName, err)
	}

	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", secretName)
	}

	value := *resp.Value
	if v.cache != nil {
		v.cache.Add(secretName, value)
	}

	return value, nil
}

// ClearCache drops every cached secret
func (v *VaultClient) ClearCache() {
	if v.cache != nil {
		v.cache.Purge()
	}
}
