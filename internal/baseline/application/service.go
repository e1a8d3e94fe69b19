package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	baseline "highxofy/internal/baseline/domain"
)

// RunRequest selects the demand range to calculate.
type RunRequest struct {
	SubjectID string
	From      time.Time
	To        time.Time
	Save      bool
}

// Service loads demand from a source, calculates and optionally stores results.
type Service struct {
	calculator *Calculator
	source     baseline.DemandSource
	repo       baseline.ResultRepository
}

// NewService constructs a Service. repo may be nil when results are never saved.
func NewService(calculator *Calculator, source baseline.DemandSource, repo baseline.ResultRepository) (*Service, error) {
	if calculator == nil {
		return nil, errors.New("baseline service: nil calculator")
	}
	if source == nil {
		return nil, errors.New("baseline service: nil demand source")
	}
	return &Service{calculator: calculator, source: source, repo: repo}, nil
}

// Run executes one calculation. Loading fails fast, so a parse error
// aborts before anything is written.
func (s *Service) Run(ctx context.Context, req RunRequest) (*Result, error) {
	if req.SubjectID == "" {
		return nil, baseline.ErrEmptySubjectID
	}
	if !req.From.IsZero() && !req.To.IsZero() && !req.To.After(req.From) {
		return nil, errors.New("baseline service: to must be after from")
	}
	if req.Save && s.repo == nil {
		return nil, errors.New("baseline service: save requested without repository")
	}

	holidays, err := s.source.LoadHolidays(ctx)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	records, err := s.source.LoadDemand(ctx, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("load demand: %w", err)
	}

	result, err := s.calculator.Calculate(ctx, req.SubjectID, records, holidays)
	if err != nil {
		return nil, err
	}
	if req.Save {
		if err := s.repo.SaveResults(ctx, req.SubjectID, result.Records); err != nil {
			return nil, fmt.Errorf("save results: %w", err)
		}
	}
	return result, nil
}
