package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/lernpath/internal/store"
)

// loggingProvider records every call, success or failure, as an LLM
// event: purpose, tokens, latency, and the full request and response
// bodies that the llm view command renders.
type loggingProvider struct {
	inner Provider
	name  string
	repo  store.EventRepo
}

// WithLogging wraps a provider so every Generate lands in the event
// journal under the given provider name.
func WithLogging(p Provider, name string, repo store.EventRepo) Provider {
	return &loggingProvider{inner: p, name: name, repo: repo}
}

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: renderRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// A failed journal write must not fail the tutoring call.
	if logErr := l.repo.AppendLLMRequest(ctx, data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record LLM event: %v\n", logErr)
	}

	return resp, err
}

func (l *loggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// renderRequest flattens a request into the readable form kept in the
// journal.
func renderRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}

	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}

	return b.String()
}
