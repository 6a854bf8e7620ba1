package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
)

// Dispatcher tries engines one after another until one fetches the page.
//
// A StatusError ends the attempt immediately: the site answered, so a
// heavier engine would only get the same answer more slowly. Any other
// error escalates to the next engine. The engine that succeeded for a
// domain is tried first on later requests to that domain.
type Dispatcher struct {
	engines []Engine
	memory  *DomainMemory
}

// NewDispatcher creates a Dispatcher. Engines are tried in the given order.
// memory may be nil.
func NewDispatcher(engines []Engine, memory *DomainMemory) *Dispatcher {
	return &Dispatcher{engines: engines, memory: memory}
}

// Names returns the configured engine names in escalation order.
func (d *Dispatcher) Names() []string {
	names := make([]string, len(d.engines))
	for i, e := range d.engines {
		names[i] = e.Name()
	}
	return names
}

// Fetch implements Engine so a Dispatcher can stand in for a single engine.
func (d *Dispatcher) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	return d.Dispatch(ctx, req)
}

// Name implements Engine.
func (d *Dispatcher) Name() string { return "dispatcher" }

// Dispatch fetches req with the first engine that succeeds.
func (d *Dispatcher) Dispatch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if len(d.engines) == 0 {
		return nil, fmt.Errorf("dispatcher: no engines configured")
	}

	domain := extractDomain(req.URL)
	remembered := ""
	if d.memory != nil {
		remembered = d.memory.Get(domain)
	}

	var lastErr error
	for _, eng := range d.order(remembered) {
		result, err := eng.Fetch(ctx, req)
		if err == nil {
			if d.memory != nil {
				d.memory.Set(domain, eng.Name())
			}
			return result, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) || ctx.Err() != nil {
			return nil, err
		}

		if eng.Name() == remembered && d.memory != nil {
			d.memory.Delete(domain)
		}
		slog.Info("engine failed, escalating", "engine", eng.Name(), "url", req.URL, "error", err)
		lastErr = err
	}

	return nil, lastErr
}

// order puts the remembered engine first, keeping the rest in configured order.
func (d *Dispatcher) order(remembered string) []Engine {
	if remembered == "" {
		return d.engines
	}
	ordered := make([]Engine, 0, len(d.engines))
	for _, e := range d.engines {
		if e.Name() == remembered {
			ordered = append(ordered, e)
		}
	}
	for _, e := range d.engines {
		if e.Name() != remembered {
			ordered = append(ordered, e)
		}
	}
	return ordered
}

// extractDomain parses the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
