package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
)

// CredentialStore manages plain-text API credentials kept in
// <data_dir>/credentials.toml with 0600 permissions.
type CredentialStore struct {
	mu          sync.RWMutex
	dataDir     string
	credentials map[string]string // providerID → API key
}

// NewCredentialStore creates a new credential store
func NewCredentialStore(dataDir string) *CredentialStore {
	return &CredentialStore{
		dataDir:     dataDir,
		credentials: make(map[string]string),
	}
}

type credentialsFile struct {
	Credentials map[string]string `toml:"credentials"`
}

// Load loads credentials from disk. A missing file is not an error.
func (c *CredentialStore) Load() error {
	path := credentialsPath(c.dataDir)

	if !FileExists(path) {
		return nil
	}

	var cf credentialsFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return fmt.Errorf("failed to parse credentials file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.credentials = make(map[string]string, len(cf.Credentials))
	for k, v := range cf.Credentials {
		c.credentials[k] = v
	}
	return nil
}

// Save writes credentials with 0600 permissions
func (c *CredentialStore) Save() error {
	if err := os.MkdirAll(c.dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	c.mu.RLock()
	cf := credentialsFile{Credentials: make(map[string]string, len(c.credentials))}
	for k, v := range c.credentials {
		cf.Credentials[k] = v
	}
	c.mu.RUnlock()

	// Create file with 0600 permissions (owner read/write only)
	f, err := os.OpenFile(credentialsPath(c.dataDir), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create credentials file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cf); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	return nil
}

// Get retrieves a credential for a provider
func (c *CredentialStore) Get(providerID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.credentials[providerID]
}

// Set stores a credential for a provider
func (c *CredentialStore) Set(providerID string, apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credentials[providerID] = apiKey
}

// Delete removes a credential for a provider
func (c *CredentialStore) Delete(providerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.credentials, providerID)
}

// Providers returns the IDs that have a stored credential, sorted.
func (c *CredentialStore) Providers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.credentials))
	for id, key := range c.credentials {
		if key != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// credentialsPath returns the path to the plain text credentials file
func credentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.toml")
}
