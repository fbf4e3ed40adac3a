// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/magnus/pkg/llm"
)

// Reply is one scripted provider response.
type Reply struct {
	Text    string
	Sources []llm.Source
	Err     error
}

// Provider replays a fixed script of replies in order and records every
// request it receives. If Handler is set it takes precedence over the script.
type Provider struct {
	mu      sync.Mutex
	script  []Reply
	next    int
	Handler func(req *llm.Request) (*llm.Response, error)

	Requests []*llm.Request
}

// New creates a scripted provider that returns the given replies in order.
func New(replies ...Reply) *Provider {
	return &Provider{script: replies}
}

// Generate pops the next scripted reply, or delegates to Handler when set.
func (p *Provider) Generate(_ context.Context, req *llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Requests = append(p.Requests, req)

	if p.Handler != nil {
		return p.Handler(req)
	}
	if p.next >= len(p.script) {
		return nil, fmt.Errorf("llmtest: no scripted reply for request %d", p.next+1)
	}
	reply := p.script[p.next]
	p.next++
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &llm.Response{Text: reply.Text, Sources: reply.Sources}, nil
}

// CallCount returns how many requests the provider has served.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}

// LastRequest returns the most recent request, or nil if none were made.
func (p *Provider) LastRequest() *llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Requests) == 0 {
		return nil
	}
	return p.Requests[len(p.Requests)-1]
}
