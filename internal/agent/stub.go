package agent

import (
	"context"
	"sync"
)

// StubInvoker is a canned-response invoker for tests and offline runs.
// Responses are keyed by task target; the fallback applies to unknown
// targets. Safe for concurrent use.
type StubInvoker struct {
	mu        sync.Mutex
	responses map[string]*Result
	errs      map[string]error
	fallback  *Result
	calls     []Task
}

// NewStubInvoker returns a stub whose unknown targets yield an empty
// (no_data) result.
func NewStubInvoker() *StubInvoker {
	return &StubInvoker{
		responses: map[string]*Result{},
		errs:      map[string]error{},
		fallback:  &Result{Data: map[string]any{}},
	}
}

// Respond sets the canned result for a target.
func (s *StubInvoker) Respond(target string, res *Result) *StubInvoker {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[target] = res
	return s
}

// Fail sets the canned error for a target.
func (s *StubInvoker) Fail(target string, err error) *StubInvoker {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[target] = err
	return s
}

// Fallback sets the result for targets with no canned response.
func (s *StubInvoker) Fallback(res *Result) *StubInvoker {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = res
	return s
}

// Calls returns a copy of every task the stub has been invoked with.
func (s *StubInvoker) Calls() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.calls))
	copy(out, s.calls)
	return out
}

// Invoke implements Invoker.
func (s *StubInvoker) Invoke(ctx context.Context, task Task) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, task)
	if err, ok := s.errs[task.Target]; ok {
		return nil, err
	}
	if res, ok := s.responses[task.Target]; ok {
		return res, nil
	}
	return s.fallback, nil
}
