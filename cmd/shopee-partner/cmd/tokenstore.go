package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ordersync/shopee-partner/internal/shopee"
)

// fileTokenStore persists the token pair as a YAML file so tokens survive
// between CLI invocations. Reads are lazy; a missing file just means no
// token yet.
type fileTokenStore struct {
	mu   sync.Mutex
	path string
}

func newFileTokenStore(path string) *fileTokenStore {
	return &fileTokenStore{path: path}
}

func (s *fileTokenStore) Get() (shopee.TokenRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return shopee.TokenRecord{}, false
	}
	if err != nil {
		return shopee.TokenRecord{}, false
	}

	var rec shopee.TokenRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return shopee.TokenRecord{}, false
	}
	return rec, rec.AccessToken != ""
}

func (s *fileTokenStore) Put(rec shopee.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}
