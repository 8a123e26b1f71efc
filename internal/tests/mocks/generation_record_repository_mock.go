package mocks

import (
	"context"

	"mdxpad/internal/models"
)

type GenerationRecordRepositoryMock struct {
	CreateFunc         func(ctx context.Context, record *models.GenerationRecord) error
	FinishFunc         func(ctx context.Context, sessionID, state, strategy, errText string, outputLength int) error
	GetBySessionIDFunc func(ctx context.Context, sessionID string) (*models.GenerationRecord, error)
	ListFunc           func(ctx context.Context, limit int) ([]models.GenerationRecord, error)
	DeleteAllFunc      func(ctx context.Context) error
}

func (m *GenerationRecordRepositoryMock) Create(ctx context.Context, record *models.GenerationRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	return nil
}

func (m *GenerationRecordRepositoryMock) Finish(ctx context.Context, sessionID, state, strategy, errText string, outputLength int) error {
	if m.FinishFunc != nil {
		return m.FinishFunc(ctx, sessionID, state, strategy, errText, outputLength)
	}
	return nil
}

func (m *GenerationRecordRepositoryMock) GetBySessionID(ctx context.Context, sessionID string) (*models.GenerationRecord, error) {
	if m.GetBySessionIDFunc != nil {
		return m.GetBySessionIDFunc(ctx, sessionID)
	}
	return nil, nil
}

func (m *GenerationRecordRepositoryMock) List(ctx context.Context, limit int) ([]models.GenerationRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return []models.GenerationRecord{}, nil
}

func (m *GenerationRecordRepositoryMock) DeleteAll(ctx context.Context) error {
	if m.DeleteAllFunc != nil {
		return m.DeleteAllFunc(ctx)
	}
	return nil
}
