package secrets

import (
	"context"
	"os"
)

// EnvProvider reads secrets from environment variables on every call.
type EnvProvider struct {
	lookup    func(string) (string, bool)
	decryptor Decryptor
}

// EnvProviderOptions configures NewEnvProvider.
type EnvProviderOptions struct {
	Decryptor Decryptor
	// Lookup defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// NewEnvProvider creates an EnvProvider.
func NewEnvProvider(opts EnvProviderOptions) *EnvProvider {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &EnvProvider{lookup: lookup, decryptor: opts.Decryptor}
}

// GetSecret returns the value of the environment variable name.
func (p *EnvProvider) GetSecret(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, _ := p.lookup(name)
	return reveal(name, value, p.decryptor)
}
