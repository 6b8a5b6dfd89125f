package secrets

import (
	"context"
	"fmt"
	"hash/crc32"
	"log/slog"
	"os"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"

	apperrors "github.com/fitai/fitai-server/pkg/errors"
)

// AccessFunc reads one secret version.
type AccessFunc func(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error)

// SecretsAdapter fetches secrets from Google Secret Manager.
// It falls back to environment variables if the secret name exists as an env var.
type SecretsAdapter struct {
	// Access overrides the Secret Manager call. Nil uses a new client per lookup.
	Access AccessFunc
}

func (a *SecretsAdapter) GetSecret(ctx context.Context, projectID, secretName string) (string, error) {
	// 1. Local Fallback
	if val := os.Getenv(secretName); val != "" {
		slog.Debug("Using local env var for secret", "component", "secrets", "name", secretName)
		return val, nil
	}

	access := a.Access
	if access == nil {
		client, err := secretmanager.NewClient(ctx)
		if err != nil {
			return "", apperrors.ErrSecretError.WithCause(fmt.Errorf("failed to create secretmanager client: %w", err))
		}
		defer client.Close()
		access = func(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
			return client.AccessSecretVersion(ctx, req)
		}
	}

	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretName),
	}
	result, err := access(ctx, req)
	if err != nil {
		return "", apperrors.ErrSecretError.WithCause(fmt.Errorf("failed to access secret version: %w", err)).WithMetadata("secret", secretName)
	}

	if err := verifyPayload(result.GetPayload()); err != nil {
		return "", apperrors.ErrSecretError.WithCause(err).WithMetadata("secret", secretName)
	}
	return string(result.GetPayload().GetData()), nil
}

// verifyPayload checks the CRC32C checksum when the server sent one.
func verifyPayload(p *secretmanagerpb.SecretPayload) error {
	if p == nil {
		return fmt.Errorf("secret payload is empty")
	}
	crc32c := crc32.MakeTable(crc32.Castagnoli)
	checksum := int64(crc32.Checksum(p.Data, crc32c))
	if p.DataCrc32C != nil && *p.DataCrc32C != checksum {
		return fmt.Errorf("data corruption detected")
	}
	return nil
}
