package config

import (
	"context"
	"fmt"
	"strings"

	"gocloud.dev/runtimevar"
	_ "gocloud.dev/runtimevar/constantvar"
	_ "gocloud.dev/runtimevar/filevar"
)

// ReadSecret returns the current value of a runtimevar URI such as
// "file:///run/secrets/maptiler" or "constant://?val=abc&decoder=string".
func ReadSecret(ctx context.Context, uri string) (string, error) {
	v, err := runtimevar.OpenVariable(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("open variable: %w", err)
	}
	defer v.Close()

	snap, err := v.Latest(ctx)
	if err != nil {
		return "", fmt.Errorf("read variable: %w", err)
	}

	switch val := snap.Value.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case []byte:
		return strings.TrimSpace(string(val)), nil
	default:
		return "", fmt.Errorf("variable has unsupported type %T", snap.Value)
	}
}

// ResolveSecrets fills secrets that are configured by URI.
func (c *Config) ResolveSecrets(ctx context.Context) error {
	if c.CRSSearch.APIKey == "" && c.CRSSearch.APIKeyURI != "" {
		key, err := ReadSecret(ctx, c.CRSSearch.APIKeyURI)
		if err != nil {
			return fmt.Errorf("crs_search.api_key_uri: %w", err)
		}
		c.CRSSearch.APIKey = key
	}
	return nil
}
