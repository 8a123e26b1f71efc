package mocks

import (
	"context"
	"sync"

	"mdxpad/internal/models"
)

// ModelSettingRepositoryMock keeps settings in memory unless a Func overrides it.
type ModelSettingRepositoryMock struct {
	ListFunc               func(ctx context.Context) ([]models.ModelSetting, error)
	UpsertFunc             func(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error)
	SetProviderEnabledFunc func(ctx context.Context, provider string, enabled bool) error

	mu   sync.Mutex
	rows map[string]models.ModelSetting
}

func (m *ModelSettingRepositoryMock) List(ctx context.Context) ([]models.ModelSetting, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ModelSetting, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	return out, nil
}

func (m *ModelSettingRepositoryMock) GetByKey(ctx context.Context, modelKey string) (*models.ModelSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[modelKey]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *ModelSettingRepositoryMock) Upsert(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, modelKey, provider, enabled)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = make(map[string]models.ModelSetting)
	}
	r := models.ModelSetting{ModelKey: modelKey, Provider: provider, Enabled: enabled}
	m.rows[modelKey] = r
	return &r, nil
}

func (m *ModelSettingRepositoryMock) SetProviderEnabled(ctx context.Context, provider string, enabled bool) error {
	if m.SetProviderEnabledFunc != nil {
		return m.SetProviderEnabledFunc(ctx, provider, enabled)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, r := range m.rows {
		if r.Provider == provider {
			r.Enabled = enabled
			m.rows[k] = r
		}
	}
	return nil
}
