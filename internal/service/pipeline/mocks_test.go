package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/service/intake"
	"github.com/heartmarshall/spiral-worksheets/internal/service/promotion"
	"github.com/heartmarshall/spiral-worksheets/internal/service/questions"
)

type importerMock struct {
	RunFunc func(ctx context.Context) (intake.Result, error)
	calls   int
}

func (m *importerMock) Run(ctx context.Context) (intake.Result, error) {
	m.calls++
	if m.RunFunc == nil {
		return intake.Result{}, nil
	}
	return m.RunFunc(ctx)
}

type questionGeneratorMock struct {
	RunFunc func(ctx context.Context) (questions.Result, error)
	calls   int
}

func (m *questionGeneratorMock) Run(ctx context.Context) (questions.Result, error) {
	m.calls++
	if m.RunFunc == nil {
		return questions.Result{}, nil
	}
	return m.RunFunc(ctx)
}

type promoterMock struct {
	RunFunc func(ctx context.Context) (promotion.Result, error)
	calls   int
}

func (m *promoterMock) Run(ctx context.Context) (promotion.Result, error) {
	m.calls++
	if m.RunFunc == nil {
		return promotion.Result{}, nil
	}
	return m.RunFunc(ctx)
}

type runLogMock struct {
	mu        sync.Mutex
	RecordErr error
	records   []domain.Run
	pruned    []time.Time
}

func (m *runLogMock) Record(ctx context.Context, run domain.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.records = append(m.records, run)
	return nil
}

func (m *runLogMock) Prune(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruned = append(m.pruned, before)
	return 0, nil
}

func (m *runLogMock) Recent(ctx context.Context, limit int) ([]domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records, nil
}

type txManagerMock struct{ calls int }

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}
