package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider reads each secret from a file named after it under a root directory,
// the layout used by Kubernetes and Docker mounted secrets.
type FileProvider struct {
	root      string
	decryptor Decryptor
}

// NewFileProvider creates a FileProvider rooted at dir.
func NewFileProvider(dir string, dec Decryptor) *FileProvider {
	return &FileProvider{root: filepath.Clean(dir), decryptor: dec}
}

// GetSecret reads the file root/name.
func (p *FileProvider) GetSecret(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := p.pathFor(name)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("read secret file %q: %w", name, err)
	}
	return reveal(name, string(data), p.decryptor)
}

func (p *FileProvider) pathFor(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid secret name %q", name)
	}
	return filepath.Join(p.root, name), nil
}
