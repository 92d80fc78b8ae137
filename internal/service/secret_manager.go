package service

import (
	"context"
	"fmt"
	"os"

	"syllabye/internal/config"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

type SecretManagerService interface {
	AccessSecret(ctx context.Context, secretName string) (string, error)
	Close() error
}

type secretManagerService struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretManagerService(ctx context.Context, cfg *config.Config) (SecretManagerService, error) {
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("GCP Project ID is not set")
	}

	var opts []option.ClientOption
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}

	return &secretManagerService{
		client:    client,
		projectID: cfg.GCPProjectID,
	}, nil
}

// AccessSecret returns the latest version of a secret.
func (s *secretManagerService) AccessSecret(ctx context.Context, secretName string) (string, error) {
	resourceName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.projectID, secretName)

	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: resourceName,
	}

	result, err := s.client.AccessSecretVersion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %w", secretName, err)
	}

	return string(result.Payload.Data), nil
}

func (s *secretManagerService) Close() error {
	return s.client.Close()
}

// ResolveStateSecret returns the login state signing key: from Secret Manager
// when STATE_SECRET_NAME is set, otherwise from STATE_SECRET.
func ResolveStateSecret(ctx context.Context, cfg *config.Config, newManager func(context.Context, *config.Config) (SecretManagerService, error)) ([]byte, error) {
	if cfg.StateSecretName == "" {
		if cfg.StateSecret == "" {
			return nil, fmt.Errorf("neither STATE_SECRET nor STATE_SECRET_NAME is set")
		}
		return []byte(cfg.StateSecret), nil
	}

	sm, err := newManager(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer sm.Close()

	secret, err := sm.AccessSecret(ctx, cfg.StateSecretName)
	if err != nil {
		return nil, err
	}
	return []byte(secret), nil
}
