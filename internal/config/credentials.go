package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const credFileName = "credentials.json"

// Credential is the stored API key for the enhancer.
type Credential struct {
	APIKey    string    `json:"api_key"`
	Source    string    `json:"source"`     // "env" | "config" | "file"
	CreatedAt time.Time `json:"created_at"` // when we saved to file
}

func (c *Config) credFilePath() string {
	return filepath.Join(c.Storage.Dir, credFileName)
}

// Credential resolves the API key: environment or config file first, then
// the credentials file. A nil result means no key is configured.
func (c *Config) Credential() (*Credential, error) {
	if key := strings.TrimSpace(c.Enhancer.APIKey); key != "" {
		src := "config"
		if envKeySet() {
			src = "env"
		}
		return &Credential{APIKey: key, Source: src}, nil
	}

	b, err := os.ReadFile(c.credFilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var cred Credential
	if err := json.Unmarshal(b, &cred); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	cred.APIKey = strings.TrimSpace(cred.APIKey)
	cred.Source = "file"
	if cred.APIKey == "" {
		return nil, nil
	}
	return &cred, nil
}

// SaveCredential stores key in the credentials file (owner-only).
func (c *Config) SaveCredential(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("empty api key")
	}
	if err := os.MkdirAll(c.Storage.Dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(Credential{
		APIKey:    key,
		Source:    "file",
		CreatedAt: time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(c.credFilePath(), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// DeleteCredential removes the credentials file; missing is not an error.
func (c *Config) DeleteCredential() error {
	if err := os.Remove(c.credFilePath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func envKeySet() bool {
	for _, name := range []string{"QUICKCOLLECT_API_KEY", "GEMINI_API_KEY", "API_KEY"} {
		if strings.TrimSpace(os.Getenv(name)) != "" {
			return true
		}
	}
	return false
}
