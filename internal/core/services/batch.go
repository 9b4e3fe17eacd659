package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driving"
	"github.com/custodia-labs/reveal-cli/internal/logger"
)

// Ensure BatchService implements the interface.
var _ driving.BatchService = (*BatchService)(nil)

// maxLocatorLine bounds one input line.
const maxLocatorLine = 1 << 20

// BatchService runs many locators through a QueryService.
// Failures are isolated per locator and records are emitted in input order.
type BatchService struct {
	query   driving.QueryService
	workers int
}

// NewBatchService creates a batch service. workers below 1 is treated as 1.
func NewBatchService(query driving.QueryService, workers int) *BatchService {
	if workers < 1 {
		workers = 1
	}
	return &BatchService{query: query, workers: workers}
}

// ReadLocators reads one locator per line. Blank lines and lines starting
// with '#' are skipped.
func ReadLocators(r io.Reader) ([]string, error) {
	var locators []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLocatorLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		locators = append(locators, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read locators: %w", err)
	}
	return locators, nil
}

// Run reads locators from r and runs them.
func (s *BatchService) Run(ctx context.Context, r io.Reader, emit func(domain.BatchRecord)) (domain.BatchSummary, error) {
	locators, err := ReadLocators(r)
	if err != nil {
		return domain.BatchSummary{}, err
	}
	return s.RunLocators(ctx, locators, emit), nil
}

// RunLocators runs up to s.workers locators at once. Each record is emitted
// as soon as it and every record before it have finished.
func (s *BatchService) RunLocators(ctx context.Context, locators []string, emit func(domain.BatchRecord)) domain.BatchSummary {
	summary := domain.BatchSummary{RunID: uuid.NewString()}
	logger.Section("Batch")
	logger.Debug("Run %s: %d locator(s), %d worker(s)", summary.RunID, len(locators), s.workers)

	records := make([]domain.BatchRecord, len(locators))
	done := make([]chan struct{}, len(locators))
	for i := range done {
		done[i] = make(chan struct{})
	}

	var g errgroup.Group
	g.SetLimit(s.workers)

	go func() {
		for i, raw := range locators {
			g.Go(func() error {
				defer close(done[i])
				records[i] = s.runOne(ctx, i, raw)
				return nil
			})
		}
		_ = g.Wait()
	}()

	for i := range locators {
		<-done[i]
		summary.Add(records[i])
		if emit != nil {
			emit(records[i])
		}
	}

	logger.Debug("Run %s: %d succeeded, %d failed", summary.RunID, summary.Succeeded, summary.Failed)
	return summary
}

// runOne never fails; errors and panics become error records.
func (s *BatchService) runOne(ctx context.Context, index int, raw string) (rec domain.BatchRecord) {
	rec = domain.BatchRecord{Index: index, Locator: raw}

	defer func() {
		if r := recover(); r != nil {
			errRec := domain.ClassifyError(raw, fmt.Errorf("panic: %v", r))
			rec.Envelope = nil
			rec.Error = &errRec
		}
	}()

	env, err := s.query.Query(ctx, raw)
	if err != nil {
		errRec := domain.ClassifyError(raw, err)
		rec.Error = &errRec
		return rec
	}
	rec.Envelope = env
	return rec
}
