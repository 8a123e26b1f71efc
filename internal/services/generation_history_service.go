package services

import (
	"context"
	"fmt"

	"mdxpad/internal/generation"
	"mdxpad/internal/models"
	"mdxpad/internal/repositories"
)

const defaultHistoryLimit = 50

type GenerationHistoryService interface {
	Startup(ctx context.Context)
	Begin(sess *generation.Session) error
	Finish(res generation.Result) error
	List(limit int) ([]models.GenerationRecord, error)
	Clear() error
}

type generationHistoryService struct {
	repo repositories.GenerationRecordRepository
	ctx  context.Context
}

func NewGenerationHistoryService(repo repositories.GenerationRecordRepository) GenerationHistoryService {
	return &generationHistoryService{repo: repo, ctx: context.Background()}
}

func (s *generationHistoryService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// Begin records a started session. The API key is not part of the record.
func (s *generationHistoryService) Begin(sess *generation.Session) error {
	if sess == nil {
		return fmt.Errorf("service: begin history: session is required")
	}
	record := &models.GenerationRecord{
		SessionID: sess.ID,
		Provider:  string(sess.Request.Provider),
		Model:     sess.Request.Model,
		Prompt:    sess.Request.Prompt,
		Target:    sess.Target(),
		State:     generation.StateRequesting.String(),
	}
	if sess.Snapshot.Range != nil {
		record.Range = sess.Snapshot.Range.String()
	}
	if err := s.repo.Create(s.ctx, record); err != nil {
		return fmt.Errorf("service: begin history %s: %w", sess.ID, err)
	}
	return nil
}

func (s *generationHistoryService) Finish(res generation.Result) error {
	var errText string
	if res.Err != nil {
		errText = res.Err.Error()
	}
	if err := s.repo.Finish(s.ctx, res.SessionID, res.State.String(), string(res.Strategy), errText, len(res.Output)); err != nil {
		return fmt.Errorf("service: finish history %s: %w", res.SessionID, err)
	}
	return nil
}

func (s *generationHistoryService) List(limit int) ([]models.GenerationRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	list, err := s.repo.List(s.ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("service: list history: %w", err)
	}
	return list, nil
}

func (s *generationHistoryService) Clear() error {
	if err := s.repo.DeleteAll(s.ctx); err != nil {
		return fmt.Errorf("service: clear history: %w", err)
	}
	return nil
}
