// Package llmtest provides a test double for llm.Completer.
package llmtest

import (
	"context"
	"sync"

	"github.com/heartmarshall/spiral-worksheets/internal/llm"
)

var _ llm.Completer = &CompleterMock{}

// CompleterMock is a mock implementation of llm.Completer.
type CompleterMock struct {
	CompleteFunc func(ctx context.Context, req llm.Request) (llm.Reply, error)

	calls struct {
		Complete []struct {
			Ctx context.Context
			Req llm.Request
		}
	}
	lockComplete sync.RWMutex
}

// Complete calls CompleteFunc.
func (mock *CompleterMock) Complete(ctx context.Context, req llm.Request) (llm.Reply, error) {
	if mock.CompleteFunc == nil {
		panic("CompleterMock.CompleteFunc: method is nil but Completer.Complete was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Req llm.Request
	}{Ctx: ctx, Req: req}
	mock.lockComplete.Lock()
	mock.calls.Complete = append(mock.calls.Complete, callInfo)
	mock.lockComplete.Unlock()
	return mock.CompleteFunc(ctx, req)
}

// CompleteCalls gets all the calls that were made to Complete.
func (mock *CompleterMock) CompleteCalls() []struct {
	Ctx context.Context
	Req llm.Request
} {
	mock.lockComplete.RLock()
	calls := mock.calls.Complete
	mock.lockComplete.RUnlock()
	return calls
}

// Text returns a mock that answers every request with the given text.
func Text(text string) *CompleterMock {
	return &CompleterMock{
		CompleteFunc: func(context.Context, llm.Request) (llm.Reply, error) {
			return llm.Reply{Text: text}, nil
		},
	}
}
