package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/99designs/keyring"

	"mdxpad/internal/config"
)

const serviceName = "mdxpad"

// CredentialKey is the single slot holding the last API key that started a
// generation. It is never cleared automatically.
const CredentialKey = "ai-api-key"

// KeyringService caches the API key in the OS credential store.
type KeyringService struct {
	mu   sync.Mutex
	cfg  config.KeyringConfig
	ring keyring.Keyring
}

// NewKeyringService opens the keyring lazily on first use.
func NewKeyringService(cfg config.KeyringConfig) *KeyringService {
	return &KeyringService{cfg: cfg}
}

// NewKeyringServiceWith wraps an already opened keyring.
func NewKeyringServiceWith(ring keyring.Keyring) *KeyringService {
	return &KeyringService{ring: ring}
}

func (s *KeyringService) open() (keyring.Keyring, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ring != nil {
		return s.ring, nil
	}

	kc := keyring.Config{
		ServiceName:              serviceName,
		KeychainTrustApplication: true,
		FileDir:                  config.ExpandPath(s.cfg.FileDir),
		FilePasswordFunc:         keyring.FixedStringPrompt(filePassword()),
	}
	if kc.FileDir == "" {
		kc.FileDir = filepath.Join(config.GetConfigDir(), "keyring")
	}
	if b := strings.TrimSpace(s.cfg.Backend); b != "" {
		kc.AllowedBackends = []keyring.BackendType{keyring.BackendType(b)}
	}

	ring, err := keyring.Open(kc)
	if err != nil {
		return nil, fmt.Errorf("keyring: open: %w", err)
	}
	s.ring = ring
	return ring, nil
}

func filePassword() string {
	if v := os.Getenv("MDXPAD_KEYRING_PASSWORD"); v != "" {
		return v
	}
	return serviceName
}

func (s *KeyringService) StoreApiKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key is empty")
	}
	ring, err := s.open()
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{
		Key:         CredentialKey,
		Data:        []byte(apiKey),
		Label:       "mdxpad API key",
		Description: "API key used by mdxpad for AI generation",
	}); err != nil {
		return fmt.Errorf("keyring: store: %w", err)
	}
	return nil
}

// GetApiKey returns "" when nothing has been stored yet.
func (s *KeyringService) GetApiKey() (string, error) {
	ring, err := s.open()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(CredentialKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("keyring: get: %w", err)
	}
	return string(item.Data), nil
}

func (s *KeyringService) DeleteApiKey() error {
	ring, err := s.open()
	if err != nil {
		return err
	}
	if err := ring.Remove(CredentialKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("keyring: delete: %w", err)
	}
	return nil
}
