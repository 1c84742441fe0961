package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"nexora-campus-be/pkg/ai/assembler"
	"nexora-campus-be/pkg/ai/pipeline"
	"nexora-campus-be/pkg/ai/prompt"
	"nexora-campus-be/pkg/campus"
	"nexora-campus-be/pkg/llm"
	"nexora-campus-be/pkg/metrics"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Intent classifies a composed turn.
type Intent string

const (
	IntentCampus     Intent = "campus"
	IntentModeration Intent = "moderation"
	IntentRedirect   Intent = "redirect"
)

// Error codes placed in ComposedResponse.Error. They never carry upstream
// error text.
const (
	CodeAllToolsFailed = "all_tools_failed"
	CodeModelError     = "model_error"
)

var (
	ErrAllToolsFailed = errors.New("all selected tools failed")
	ErrUpstreamModel  = errors.New("language model call failed")
)

// ComposedResponse is the single result of a turn.
type ComposedResponse struct {
	ResponseText string
	AgentUsed    string
	Intent       Intent
	Success      bool
	// Error is empty on success.
	Error     string
	ToolsUsed []campus.ToolName
	Rationale string
}

// Phraser rewords a deterministic draft. It is optional.
type Phraser interface {
	Phrase(ctx context.Context, req pipeline.PhraseRequest) (string, error)
}

type Options struct {
	Phraser Phraser
	// RequirePhrasing turns a phrasing failure into ErrUpstreamModel
	// instead of falling back to the draft.
	RequirePhrasing bool
	// ToolTimeout bounds each tool call; zero means no extra bound.
	ToolTimeout time.Duration
}

type Orchestrator struct {
	registry *campus.Registry
	messages prompt.Messages
	opts     Options
	tracer   trace.Tracer
}

func NewOrchestrator(registry *campus.Registry, messages prompt.Messages, opts Options) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		messages: messages,
		opts:     opts,
		tracer:   otel.Tracer("nexora-campus-be/router"),
	}
}

// Blocked is the reply for a turn stopped by moderation. No tool runs.
func (o *Orchestrator) Blocked() ComposedResponse {
	return ComposedResponse{
		ResponseText: o.messages.ModerationBlock,
		AgentUsed:    o.messages.Markers.Moderation,
		Intent:       IntentModeration,
		Success:      true,
	}
}

// Route produces exactly one ComposedResponse per call. The returned error
// is non-nil only for ErrUpstreamModel; every other failure is folded into
// the response.
func (o *Orchestrator) Route(ctx context.Context, qc assembler.QueryContext, history []llm.Message) (ComposedResponse, error) {
	decision := Decide(qc, o.registry)
	log.Printf("[INFO] [ROUTER] session=%s decision: %s", qc.SessionID, decision.Rationale)

	base := ComposedResponse{Intent: IntentCampus, Success: true, Rationale: decision.Rationale}

	switch {
	case decision.IsRedirect:
		base.ResponseText = o.messages.Redirect
		base.AgentUsed = o.messages.Markers.Redirect
		base.Intent = IntentRedirect
		return base, nil
	case decision.TimeOnly:
		base.ResponseText = fmt.Sprintf(o.messages.TimeAnswer, qc.DateTime().FormattedReadable)
		base.AgentUsed = o.messages.Markers.Datetime
		return base, nil
	case decision.KnowledgeOffline:
		base.ResponseText = o.messages.KnowledgeOffline
		base.AgentUsed = o.messages.Markers.Knowledge
		return base, nil
	}

	base.ToolsUsed = decision.Tools()
	results := o.fanOut(ctx, decision.Selected)

	if len(results) > 0 {
		var merr *multierror.Error
		for _, r := range results {
			if !r.Success {
				merr = multierror.Append(merr, fmt.Errorf("%s: %s", r.ToolName, r.Error))
			}
		}
		if merr != nil && merr.Len() == len(results) {
			log.Printf("[WARN] [ROUTER] %v: %v", ErrAllToolsFailed, merr.ErrorOrNil())
			base.ResponseText = o.messages.AllToolsFailed
			base.AgentUsed = o.agentUsed(decision, qc)
			base.Success = false
			base.Error = CodeAllToolsFailed
			return base, nil
		}
	}

	sections := o.sections(results, qc)
	timeLine := ""
	if decision.TimeReferenced {
		timeLine = fmt.Sprintf(o.messages.TimeAnswer, qc.DateTime().FormattedReadable)
	}
	base.ResponseText = renderDraft(timeLine, sections)
	base.AgentUsed = o.agentUsed(decision, qc)

	if o.opts.Phraser == nil {
		return base, nil
	}

	phrased, err := o.opts.Phraser.Phrase(ctx, pipeline.PhraseRequest{
		Question:    qc.RawMessage,
		CurrentTime: qc.DateTime().FormattedReadable,
		Sections:    sections,
		History:     history,
	})
	switch {
	case err != nil && o.opts.RequirePhrasing:
		base.ResponseText = o.messages.GeneralError
		base.Success = false
		base.Error = CodeModelError
		return base, fmt.Errorf("%w: %v", ErrUpstreamModel, err)
	case err != nil:
		log.Printf("[WARN] [ROUTER] phrasing failed, using draft: %v", err)
	case keepsSections(phrased, sections):
		base.ResponseText = strings.TrimSpace(phrased)
	default:
		log.Printf("[WARN] [ROUTER] phrased reply dropped section labels, using draft")
	}
	return base, nil
}

// fanOut runs every selected tool concurrently and waits for all of them.
// Each tool's failure stays inside its own Result.
func (o *Orchestrator) fanOut(ctx context.Context, selected []Selection) []campus.Result {
	results := make([]campus.Result, len(selected))
	var g errgroup.Group
	for i, s := range selected {
		g.Go(func() error {
			results[i] = o.invoke(ctx, s)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (o *Orchestrator) invoke(ctx context.Context, s Selection) campus.Result {
	if s.Tool == "" {
		return campus.Result{Domain: s.Domain, Error: campus.ErrNotImplemented.Error()}
	}

	ctx, span := o.tracer.Start(ctx, "tool."+string(s.Tool),
		trace.WithAttributes(
			attribute.String("tool.domain", s.Domain.String()),
			attribute.String("tool.query", s.Args.Query),
		))
	defer span.End()

	if o.opts.ToolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.ToolTimeout)
		defer cancel()
	}

	start := time.Now()
	res := o.registry.Invoke(ctx, s.Tool, s.Args)
	metrics.ToolLatency.WithLabelValues(string(s.Tool)).Observe(time.Since(start).Seconds())
	metrics.ToolInvocations.WithLabelValues(string(s.Tool), metrics.Outcome(res.Success)).Inc()

	if !res.Success {
		span.SetStatus(codes.Error, res.Error)
		log.Printf("[WARN] [ROUTER] tool %s failed: %s", s.Tool, res.Error)
	}
	// Registry results for unknown tools carry no domain.
	res.Domain = s.Domain
	return res
}

// sections renders results and knowledge snippets in the fixed order.
func (o *Orchestrator) sections(results []campus.Result, qc assembler.QueryContext) []prompt.Section {
	byDomain := make(map[campus.Domain]campus.Result, len(results))
	for _, r := range results {
		byDomain[r.Domain] = r
	}

	var out []prompt.Section
	for _, d := range campus.SectionOrder {
		if d == campus.DomainKnowledge {
			if qc.HasSnippets() {
				out = append(out, prompt.Section{Title: d.Section(), Body: o.knowledgeBody(qc)})
			}
			continue
		}
		r, ok := byDomain[d]
		if !ok {
			continue
		}
		out = append(out, prompt.Section{Title: d.Section(), Body: o.resultBody(d, r)})
	}
	return out
}

func (o *Orchestrator) resultBody(d campus.Domain, r campus.Result) string {
	if r.Success {
		return r.Payload.Render()
	}
	if r.Error == campus.ErrUserIDRequired.Error() {
		return fmt.Sprintf(o.messages.SignInRequired, strings.ToLower(d.Section()))
	}
	return fmt.Sprintf(o.messages.ToolErrorNote, d.Section())
}

func (o *Orchestrator) knowledgeBody(qc assembler.QueryContext) string {
	parts := make([]string, 0, len(qc.Snippets()))
	for _, s := range qc.Snippets() {
		parts = append(parts, strings.TrimSpace(s.Excerpt)+"\n"+fmt.Sprintf(o.messages.KnowledgeSource, s.Source, s.Score))
	}
	return strings.Join(parts, "\n\n")
}

// agentUsed names the single answering domain, or the orchestrator when
// several contributed.
func (o *Orchestrator) agentUsed(decision Decision, qc assembler.QueryContext) string {
	contributors := len(decision.Selected)
	if qc.HasSnippets() {
		contributors++
	}
	switch {
	case contributors == 1 && len(decision.Selected) == 1:
		return decision.Selected[0].Domain.String()
	case contributors == 1:
		return o.messages.Markers.Knowledge
	default:
		return o.messages.Markers.Orchestrator
	}
}

func renderDraft(timeLine string, sections []prompt.Section) string {
	var parts []string
	if timeLine != "" {
		parts = append(parts, timeLine)
	}
	if len(sections) == 1 {
		parts = append(parts, sections[0].Body)
	} else {
		for _, s := range sections {
			parts = append(parts, SectionLabel(s.Title)+"\n"+s.Body)
		}
	}
	return strings.Join(parts, "\n\n")
}

// SectionLabel is the heading line used for each section of a
// multi-domain reply.
func SectionLabel(title string) string {
	return "**" + title + "**"
}

// keepsSections accepts a phrased reply only if every label survives in
// order.
func keepsSections(reply string, sections []prompt.Section) bool {
	if strings.TrimSpace(reply) == "" {
		return false
	}
	if len(sections) < 2 {
		return true
	}
	rest := reply
	for _, s := range sections {
		i := strings.Index(rest, SectionLabel(s.Title))
		if i < 0 {
			return false
		}
		rest = rest[i+len(SectionLabel(s.Title)):]
	}
	return true
}
