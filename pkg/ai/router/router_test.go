package router

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nexora-campus-be/pkg/ai/assembler"
	"nexora-campus-be/pkg/ai/pipeline"
	"nexora-campus-be/pkg/ai/prompt"
	"nexora-campus-be/pkg/campus"
	"nexora-campus-be/pkg/knowledge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// bleve starts its analysis workers at package init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/blevesearch/bleve_index_api.AnalysisWorker"))
}

var (
	sampleEvents = campus.Events{{Name: "Nexora 1.0 Datathon", Venue: "Main Hall", Date: "2025-06-20"}}
	sampleMenu   = campus.Menu{{Name: "Vegetable Fried Rice", Category: "Lunch", Price: 380}}
	sampleRoutes = campus.BusRoutes{{RouteNumber: "12", RouteName: "Campus Express", StartPoint: "Colombo", EndPoint: "Campus", DepartureTime: "07:30"}}
)

type toolSpy struct {
	calls sync.Map
	total atomic.Int32
}

func (s *toolSpy) tool(name campus.ToolName, domain campus.Domain, kind campus.Kind, invoke campus.InvokeFunc) campus.Descriptor {
	return campus.NewDescriptor(name, domain, kind, string(name), func(ctx context.Context, args campus.Args) (campus.Payload, error) {
		s.total.Add(1)
		n, _ := s.calls.LoadOrStore(name, new(atomic.Int32))
		n.(*atomic.Int32).Add(1)
		return invoke(ctx, args)
	})
}

func (s *toolSpy) count(name campus.ToolName) int32 {
	n, ok := s.calls.Load(name)
	if !ok {
		return 0
	}
	return n.(*atomic.Int32).Load()
}

func returns(p campus.Payload) campus.InvokeFunc {
	return func(context.Context, campus.Args) (campus.Payload, error) { return p, nil }
}

func fails(err error) campus.InvokeFunc {
	return func(context.Context, campus.Args) (campus.Payload, error) { return nil, err }
}

type overrides map[campus.ToolName]campus.InvokeFunc

func newRegistry(t *testing.T, spy *toolSpy, o overrides) *campus.Registry {
	t.Helper()
	pick := func(name campus.ToolName, def campus.InvokeFunc) campus.InvokeFunc {
		if fn, ok := o[name]; ok {
			return fn
		}
		return def
	}
	reg, err := campus.NewRegistry(
		spy.tool(campus.ToolFetchEvents, campus.DomainEvents, campus.KindFetchAll, pick(campus.ToolFetchEvents, returns(sampleEvents))),
		spy.tool(campus.ToolSearchEvents, campus.DomainEvents, campus.KindSearch, pick(campus.ToolSearchEvents, returns(sampleEvents))),
		spy.tool(campus.ToolFetchMenu, campus.DomainCafeteria, campus.KindFetchAll, pick(campus.ToolFetchMenu, returns(sampleMenu))),
		spy.tool(campus.ToolSearchMenu, campus.DomainCafeteria, campus.KindSearch, pick(campus.ToolSearchMenu, returns(sampleMenu))),
		spy.tool(campus.ToolFetchBusRoutes, campus.DomainBus, campus.KindFetchAll, pick(campus.ToolFetchBusRoutes, returns(sampleRoutes))),
		spy.tool(campus.ToolSearchBusRoutes, campus.DomainBus, campus.KindSearch, pick(campus.ToolSearchBusRoutes, returns(sampleRoutes))),
		spy.tool(campus.ToolFetchExamResults, campus.DomainExam, campus.KindFetchAll, pick(campus.ToolFetchExamResults, returns(campus.ExamResults{}))),
	)
	require.NoError(t, err)
	return reg
}

var fixedNow = time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)

func query(msg string, snippets ...knowledge.Snippet) assembler.QueryContext {
	return assembler.NewQueryContext(msg, "session-1", "", fixedNow, snippets, false)
}

func countLabels(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") {
			n++
		}
	}
	return n
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		domains []campus.Domain
		timeRef bool
	}{
		{name: "single domain", message: "Show me bus routes", domains: []campus.Domain{campus.DomainBus}},
		{name: "two domains in section order", message: "What's on the cafeteria menu and what events are happening?", domains: []campus.Domain{campus.DomainEvents, campus.DomainCafeteria}},
		{name: "first person exam", message: "Show my exam results", domains: []campus.Domain{campus.DomainExam}},
		{name: "exam without first person", message: "How are exam results published?"},
		{name: "profile", message: "What does my profile say?", domains: []campus.Domain{campus.DomainUser}},
		{name: "time only", message: "What time is it?", timeRef: true},
		{name: "date only", message: "What's today's date?", timeRef: true},
		{name: "off topic", message: "Who won the football world cup?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.message)
			assert.Equal(t, tt.domains, c.Domains)
			assert.Equal(t, tt.timeRef, c.TimeReferenced)
		})
	}
}

func TestDecideSearchOrFetch(t *testing.T) {
	reg := newRegistry(t, &toolSpy{}, nil)

	d := Decide(query("Show me bus routes"), reg)
	require.Len(t, d.Selected, 1)
	assert.Equal(t, campus.ToolFetchBusRoutes, d.Selected[0].Tool)

	d = Decide(query("Any morning buses to Colombo?"), reg)
	require.Len(t, d.Selected, 1)
	assert.Equal(t, campus.ToolSearchBusRoutes, d.Selected[0].Tool)
	assert.Equal(t, "colombo", d.Selected[0].Args.Query)
	assert.Equal(t, "05:00", d.Selected[0].Args.From)
	assert.Equal(t, "11:59", d.Selected[0].Args.To)

	d = Decide(query("Any vegetarian lunch options?"), reg)
	require.Len(t, d.Selected, 1)
	assert.Equal(t, campus.ToolSearchMenu, d.Selected[0].Tool)
	assert.Contains(t, d.Selected[0].Args.Query, "vegetarian")
}

func TestDecideIsDeterministic(t *testing.T) {
	reg := newRegistry(t, &toolSpy{}, nil)
	qc := query("What events are happening and is the canteen open for lunch?")
	first := Decide(qc, reg)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Decide(qc, reg))
	}
}

func TestRouteSingleDomain(t *testing.T) {
	spy := &toolSpy{}
	o := NewOrchestrator(newRegistry(t, spy, nil), prompt.Default(), Options{})

	resp, err := o.Route(context.Background(), query("Show me bus routes"), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), spy.total.Load())
	assert.Equal(t, int32(1), spy.count(campus.ToolFetchBusRoutes))
	assert.Equal(t, "bus", resp.AgentUsed)
	assert.Equal(t, IntentCampus, resp.Intent)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	assert.Contains(t, resp.ResponseText, "Campus Express")
	assert.Zero(t, countLabels(resp.ResponseText))
}

func TestRouteMultiDomainSections(t *testing.T) {
	spy := &toolSpy{}
	msgs := prompt.Default()
	o := NewOrchestrator(newRegistry(t, spy, nil), msgs, Options{})

	resp, err := o.Route(context.Background(), query("What's on the cafeteria menu and what events are happening?"), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), spy.total.Load())
	assert.Equal(t, 2, countLabels(resp.ResponseText))
	assert.Equal(t, msgs.Markers.Orchestrator, resp.AgentUsed)
	assert.Less(t, strings.Index(resp.ResponseText, "**Events**"), strings.Index(resp.ResponseText, "**Cafeteria**"))
	assert.ElementsMatch(t, []campus.ToolName{campus.ToolFetchEvents, campus.ToolFetchMenu}, resp.ToolsUsed)
}

func TestRouteRunsToolsConcurrently(t *testing.T) {
	var arrived sync.WaitGroup
	arrived.Add(2)
	release := make(chan struct{})
	go func() {
		arrived.Wait()
		close(release)
	}()
	barrier := func(p campus.Payload) campus.InvokeFunc {
		return func(ctx context.Context, _ campus.Args) (campus.Payload, error) {
			arrived.Done()
			select {
			case <-release:
				return p, nil
			case <-time.After(2 * time.Second):
				return nil, errors.New("tools ran sequentially")
			}
		}
	}
	spy := &toolSpy{}
	reg := newRegistry(t, spy, overrides{
		campus.ToolFetchEvents: barrier(sampleEvents),
		campus.ToolFetchMenu:   barrier(sampleMenu),
	})
	o := NewOrchestrator(reg, prompt.Default(), Options{})

	resp, err := o.Route(context.Background(), query("What's on the cafeteria menu and what events are happening?"), nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.ResponseText, "Nexora 1.0 Datathon")
	assert.Contains(t, resp.ResponseText, "Vegetable Fried Rice")
}

func TestRoutePartialFailure(t *testing.T) {
	spy := &toolSpy{}
	reg := newRegistry(t, spy, overrides{campus.ToolFetchEvents: fails(errors.New("connection refused"))})
	o := NewOrchestrator(reg, prompt.Default(), Options{})

	resp, err := o.Route(context.Background(), query("What's on the cafeteria menu and what events are happening?"), nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.ResponseText, "Events information is temporarily unavailable.")
	assert.Contains(t, resp.ResponseText, "Vegetable Fried Rice")
	assert.NotContains(t, resp.ResponseText, "connection refused")
}

func TestRoutePanickingToolIsIsolated(t *testing.T) {
	spy := &toolSpy{}
	reg := newRegistry(t, spy, overrides{
		campus.ToolFetchMenu: func(context.Context, campus.Args) (campus.Payload, error) { panic("boom") },
	})
	o := NewOrchestrator(reg, prompt.Default(), Options{})

	resp, err := o.Route(context.Background(), query("What's on the cafeteria menu and what events are happening?"), nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.ResponseText, "Cafeteria information is temporarily unavailable.")
}

func TestRouteAllToolsFailed(t *testing.T) {
	spy := &toolSpy{}
	reg := newRegistry(t, spy, overrides{
		campus.ToolFetchEvents: fails(errors.New("timeout")),
		campus.ToolFetchMenu:   fails(errors.New("timeout")),
	})
	msgs := prompt.Default()
	o := NewOrchestrator(reg, msgs, Options{})

	resp, err := o.Route(context.Background(), query("What's on the cafeteria menu and what events are happening?"), nil)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, msgs.AllToolsFailed, resp.ResponseText)
	assert.Equal(t, CodeAllToolsFailed, resp.Error)
}

func TestDecideKeepsDomainWithoutTool(t *testing.T) {
	reg := newRegistry(t, &toolSpy{}, nil)

	d := Decide(query("List the departments"), reg)
	assert.False(t, d.IsRedirect)
	require.Len(t, d.Selected, 1)
	assert.Equal(t, campus.DomainDepartments, d.Selected[0].Domain)
	assert.Empty(t, d.Selected[0].Tool)
	assert.Empty(t, d.Tools())
	assert.Contains(t, d.Rationale, "departments has no registered tool")
}

func TestRouteDomainWithoutToolKeepsSection(t *testing.T) {
	spy := &toolSpy{}
	o := NewOrchestrator(newRegistry(t, spy, nil), prompt.Default(), Options{})

	resp, err := o.Route(context.Background(), query("Show me the departments and the events"), nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, IntentCampus, resp.Intent)
	assert.Equal(t, int32(1), spy.total.Load())
	assert.Equal(t, 2, countLabels(resp.ResponseText))
	assert.Contains(t, resp.ResponseText, "**Departments**\nDepartments information is temporarily unavailable.")
	assert.Contains(t, resp.ResponseText, "Nexora 1.0 Datathon")
	assert.Equal(t, []campus.ToolName{campus.ToolFetchEvents}, resp.ToolsUsed)
}

func TestRouteDomainWithoutToolDoesNotRedirect(t *testing.T) {
	spy := &toolSpy{}
	msgs := prompt.Default()
	o := NewOrchestrator(newRegistry(t, spy, nil), msgs, Options{})

	resp, err := o.Route(context.Background(), query("List the departments"), nil)
	require.NoError(t, err)
	assert.Equal(t, IntentCampus, resp.Intent)
	assert.NotEqual(t, msgs.Redirect, resp.ResponseText)
	assert.False(t, resp.Success)
	assert.Equal(t, CodeAllToolsFailed, resp.Error)
	assert.Equal(t, "departments", resp.AgentUsed)
	assert.Zero(t, spy.total.Load())
}

func TestRoutePersonalDomainWithoutUser(t *testing.T) {
	spy := &toolSpy{}
	o := NewOrchestrator(newRegistry(t, spy, nil), prompt.Default(), Options{})

	resp, err := o.Route(context.Background(), query("Show my exam results and the bus routes"), nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.ResponseText, "Please include your user ID so I can look up your exam results.")
	assert.Contains(t, resp.ResponseText, "Campus Express")
	// The descriptor rejects the call before the lookup runs.
	assert.Zero(t, spy.count(campus.ToolFetchExamResults))
}

func TestRouteRedirect(t *testing.T) {
	spy := &toolSpy{}
	msgs := prompt.Default()
	o := NewOrchestrator(newRegistry(t, spy, nil), msgs, Options{})

	resp, err := o.Route(context.Background(), query("Who won the football world cup?"), nil)
	require.NoError(t, err)
	assert.Equal(t, IntentRedirect, resp.Intent)
	assert.True(t, resp.Success)
	assert.Equal(t, msgs.Redirect, resp.ResponseText)
	assert.Equal(t, msgs.Markers.Redirect, resp.AgentUsed)
	assert.Zero(t, spy.total.Load())
}

func TestRouteTimeOnly(t *testing.T) {
	spy := &toolSpy{}
	o := NewOrchestrator(newRegistry(t, spy, nil), prompt.Default(), Options{})

	resp, err := o.Route(context.Background(), query("What time is it?"), nil)
	require.NoError(t, err)
	assert.Zero(t, spy.total.Load())
	assert.Equal(t, "It is currently Saturday, June 14, 2025 at 09:30 AM.", resp.ResponseText)
	assert.NotEqual(t, IntentRedirect, resp.Intent)
}

func TestRouteTimeWithDomain(t *testing.T) {
	o := NewOrchestrator(newRegistry(t, &toolSpy{}, nil), prompt.Default(), Options{})
	resp, err := o.Route(context.Background(), query("What day is it, and what events are coming up?"), nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ResponseText, "It is currently Saturday"))
	assert.Contains(t, resp.ResponseText, "Nexora 1.0 Datathon")
}

func TestRouteKnowledgeOnly(t *testing.T) {
	spy := &toolSpy{}
	msgs := prompt.Default()
	o := NewOrchestrator(newRegistry(t, spy, nil), msgs, Options{})

	qc := query("Tell me about Nexora 1.0", knowledge.Snippet{
		Source:  "nexora.md",
		Excerpt: "Nexora 1.0 is an inter-university datathon.",
		Score:   0.82,
	})
	resp, err := o.Route(context.Background(), qc, nil)
	require.NoError(t, err)
	assert.Equal(t, IntentCampus, resp.Intent)
	assert.Zero(t, spy.total.Load())
	assert.Contains(t, resp.ResponseText, "inter-university datathon")
	assert.Contains(t, resp.ResponseText, "(Source: nexora.md, relevance 0.82)")
	assert.Equal(t, msgs.Markers.Knowledge, resp.AgentUsed)
}

func TestRouteKnowledgeAlongsideTool(t *testing.T) {
	o := NewOrchestrator(newRegistry(t, &toolSpy{}, nil), prompt.Default(), Options{})
	qc := query("Show me bus routes", knowledge.Snippet{Source: "transport.md", Excerpt: "Buses stop at Gate 2.", Score: 0.7})

	resp, err := o.Route(context.Background(), qc, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, countLabels(resp.ResponseText))
	assert.Less(t, strings.Index(resp.ResponseText, "**Bus Routes**"), strings.Index(resp.ResponseText, "**Knowledge Base Information**"))
}

func TestRouteKnowledgeOffline(t *testing.T) {
	spy := &toolSpy{}
	msgs := prompt.Default()
	o := NewOrchestrator(newRegistry(t, spy, nil), msgs, Options{})

	degraded := assembler.NewQueryContext("Where is the library?", "s", "", fixedNow, nil, true)
	resp, err := o.Route(context.Background(), degraded, nil)
	require.NoError(t, err)
	assert.Equal(t, msgs.KnowledgeOffline, resp.ResponseText)
	assert.Equal(t, IntentCampus, resp.Intent)

	resp, err = o.Route(context.Background(), query("Where is the library?"), nil)
	require.NoError(t, err)
	assert.Equal(t, IntentRedirect, resp.Intent)
}

func TestBlocked(t *testing.T) {
	msgs := prompt.Default()
	o := NewOrchestrator(newRegistry(t, &toolSpy{}, nil), msgs, Options{})
	resp := o.Blocked()
	assert.Equal(t, IntentModeration, resp.Intent)
	assert.Equal(t, msgs.ModerationBlock, resp.ResponseText)
	assert.Equal(t, msgs.Markers.Moderation, resp.AgentUsed)
	assert.True(t, resp.Success)
}

type fakePhraser struct {
	reply string
	err   error
	got   pipeline.PhraseRequest
}

func (f *fakePhraser) Phrase(_ context.Context, req pipeline.PhraseRequest) (string, error) {
	f.got = req
	return f.reply, f.err
}

func TestRoutePhrasing(t *testing.T) {
	multi := "What's on the cafeteria menu and what events are happening?"

	t.Run("phrased reply keeps labels", func(t *testing.T) {
		p := &fakePhraser{reply: "**Events**\nThe datathon is on Friday.\n\n**Cafeteria**\nTry the fried rice."}
		o := NewOrchestrator(newRegistry(t, &toolSpy{}, nil), prompt.Default(), Options{Phraser: p})
		resp, err := o.Route(context.Background(), query(multi), nil)
		require.NoError(t, err)
		assert.Equal(t, p.reply, resp.ResponseText)
		require.Len(t, p.got.Sections, 2)
		assert.Equal(t, "Events", p.got.Sections[0].Title)
	})

	t.Run("reply without labels falls back to draft", func(t *testing.T) {
		p := &fakePhraser{reply: "There is a datathon and fried rice."}
		o := NewOrchestrator(newRegistry(t, &toolSpy{}, nil), prompt.Default(), Options{Phraser: p})
		resp, err := o.Route(context.Background(), query(multi), nil)
		require.NoError(t, err)
		assert.Equal(t, 2, countLabels(resp.ResponseText))
	})

	t.Run("model error falls back to draft", func(t *testing.T) {
		p := &fakePhraser{err: errors.New("503 from provider")}
		o := NewOrchestrator(newRegistry(t, &toolSpy{}, nil), prompt.Default(), Options{Phraser: p})
		resp, err := o.Route(context.Background(), query("Show me bus routes"), nil)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Contains(t, resp.ResponseText, "Campus Express")
	})

	t.Run("required model error surfaces", func(t *testing.T) {
		msgs := prompt.Default()
		p := &fakePhraser{err: errors.New("503 from provider")}
		o := NewOrchestrator(newRegistry(t, &toolSpy{}, nil), msgs, Options{Phraser: p, RequirePhrasing: true})
		resp, err := o.Route(context.Background(), query("Show me bus routes"), nil)
		assert.ErrorIs(t, err, ErrUpstreamModel)
		assert.False(t, resp.Success)
		assert.Equal(t, msgs.GeneralError, resp.ResponseText)
		assert.Equal(t, CodeModelError, resp.Error)
	})
}
