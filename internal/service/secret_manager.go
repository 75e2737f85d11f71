package service

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretLoader resolves named secrets at startup. Used for the LLM API key
// when it is not provided directly through the environment.
type SecretLoader interface {
	LoadSecret(ctx context.Context, name string) (string, error)
	Close() error
}

type secretLoader struct {
	client    *secretmanager.Client
	projectID string
}

// NewSecretLoader creates a Secret Manager backed SecretLoader.
func NewSecretLoader(ctx context.Context, projectID string) (SecretLoader, error) {
	if projectID == "" {
		return nil, fmt.Errorf("GCP project ID is not set")
	}
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	return &secretLoader{client: client, projectID: projectID}, nil
}

// LoadSecret fetches the latest version of the named secret.
func (s *secretLoader) LoadSecret(ctx context.Context, name string) (string, error) {
	resourceName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.projectID, name)
	result, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resourceName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %w", name, err)
	}
	return string(result.Payload.Data), nil
}

func (s *secretLoader) Close() error {
	return s.client.Close()
}
