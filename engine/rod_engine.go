package engine

import (
	"context"
	"fmt"
)

// RodFetchFunc renders a page in the browser. It is injected from main.go
// so that engine/ never imports browser/.
type RodFetchFunc func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

// RodEngine is the browser fallback engine. It only runs when the HTTP
// engine failed at the transport level (blocked, reset, TLS refusal).
type RodEngine struct {
	fetchFunc RodFetchFunc
}

// NewRodEngine creates a RodEngine around the browser callback.
func NewRodEngine(fetchFunc RodFetchFunc) *RodEngine {
	return &RodEngine{fetchFunc: fetchFunc}
}

func (e *RodEngine) Name() string { return "rod" }

func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.fetchFunc == nil {
		return nil, fmt.Errorf("rod: fetchFunc not configured")
	}

	result, err := e.fetchFunc(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("rod: %w", err)
	}
	// The browser reports 0 when the navigation entry is unavailable.
	if result.StatusCode != 0 && !IsSuccess(result.StatusCode) {
		return nil, &StatusError{Engine: e.Name(), URL: req.URL, StatusCode: result.StatusCode}
	}

	result.EngineName = e.Name()
	return result, nil
}
