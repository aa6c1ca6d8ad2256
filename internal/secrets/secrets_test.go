package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSecretsAPI struct {
	values map[string]string
	calls  int
}

func (f *fakeSecretsAPI) GetSecret(_ context.Context, name string, _ string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	f.calls++
	v, ok := f.values[name]
	if !ok {
		return azsecrets.GetSecretResponse{}, errors.New("SecretNotFound")
	}
	return azsecrets.GetSecretResponse{Secret: azsecrets.Secret{Value: &v}}, nil
}

func TestVaultClient_CachesSecrets(t *testing.T) {
	api := &fakeSecretsAPI{values: map[string]string{"jwt-secret": "s3cret"}}
	client := newVaultClient(api, &VaultConfig{VaultName: "kv", CacheEnabled: true, CacheTTL: time.Minute}, zap.NewNop())

	for i := 0; i < 3; i++ {
		value, err := client.GetSecret(context.Background(), "jwt-secret")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", value)
	}
	assert.Equal(t, 1, api.calls)

	client.ClearCache()
	_, err := client.GetSecret(context.Background(), "jwt-secret")
	require.NoError(t, err)
	assert.Equal(t, 2, api.calls)
}

func TestVaultClient_WithoutCache(t *testing.T) {
	api := &fakeSecretsAPI{values: map[string]string{"admin-api-key": "key"}}
	client := newVaultClient(api, &VaultConfig{VaultName: "kv"}, zap.NewNop())

	_, _ = client.GetSecret(context.Background(), "admin-api-key")
	_, _ = client.GetSecret(context.Background(), "admin-api-key")
	assert.Equal(t, 2, api.calls)
}

func TestVaultClient_MissingSecret(t *testing.T) {
	client := newVaultClient(&fakeSecretsAPI{values: map[string]string{}}, &VaultConfig{VaultName: "kv", CacheEnabled: true}, zap.NewNop())

	_, err := client.GetSecret(context.Background(), "nope")
	assert.Error(t, err)
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		source      SecretSource
		environment string
		want        SecretSource
	}{
		{SourceAuto, "development", SourceEnvironment},
		{SourceAuto, "", SourceEnvironment},
		{SourceAuto, "production", SourceVault},
		{SourceAuto, "staging", SourceVault},
		{SourceEnvironment, "production", SourceEnvironment},
		{SourceVault, "development", SourceVault},
	}

	for _, tt := range tests {
		t.Run(string(tt.source)+"/"+tt.environment, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSource(tt.source, tt.environment))
		})
	}
}

func TestProvider_GetSecretOrEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")

	p := &Provider{
		source: SourceVault,
		vault:  newVaultClient(&fakeSecretsAPI{values: map[string]string{"jwt-secret": "from-vault", "other": "v"}}, &VaultConfig{VaultName: "kv"}, zap.NewNop()),
		logger: zap.NewNop(),
	}

	value, err := p.GetSecretOrEnv(context.Background(), "jwt-secret", "JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)

	value, err = p.GetSecretOrEnv(context.Background(), "other", "UNSET_BACKOFFICE_VAR")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}
