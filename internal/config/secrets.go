package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretFetcher returns the key/value pairs stored in a secret.
type SecretFetcher func(ctx context.Context, secretID, region string) (map[string]string, error)

func fetchAWSSecret(ctx context.Context, secretID, region string) (map[string]string, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	out, err := secretsmanager.NewFromConfig(awsCfg).GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, err
	}

	switch {
	case out.SecretString != nil:
		return parseSecretPayload([]byte(*out.SecretString))
	case len(out.SecretBinary) > 0:
		return parseSecretPayload(out.SecretBinary)
	default:
		return nil, fmt.Errorf("secret has no payload")
	}
}

// parseSecretPayload decodes a JSON object whose values become strings.
func parseSecretPayload(payload []byte) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("secret is not a JSON object: %w", err)
	}
	values := make(map[string]string, len(raw))
	for key, val := range raw {
		if val == nil {
			continue
		}
		values[key] = fmt.Sprint(val)
	}
	return values, nil
}
