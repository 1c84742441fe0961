// Command evaluate replays scripted campus questions through moderation,
// routing and composition with canned tools, and prints a pass/fail
// table. It needs no network or database.
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"nexora-campus-be/pkg/ai/assembler"
	"nexora-campus-be/pkg/ai/composer"
	"nexora-campus-be/pkg/ai/prompt"
	"nexora-campus-be/pkg/ai/router"
	"nexora-campus-be/pkg/campus"
	"nexora-campus-be/pkg/knowledge"
	"nexora-campus-be/pkg/moderation"

	"github.com/fatih/color"
)

type scenario struct {
	name      string
	input     string
	userID    string
	wantInt   router.Intent
	wantAgent string
	wantTools int
}

var scenarios = []scenario{
	{"datathon", "Tell me about Nexora 1.0 datathon. When is it and what are the prizes?", "", router.IntentCampus, "events", 1},
	{"tech events", "What campus events are happening this week? I'm interested in tech-related activities.", "", router.IntentCampus, "events", 1},
	{"evening bus", "What time does the bus leave from Main Campus to City Center this evening?", "", router.IntentCampus, "bus", 1},
	{"cs department", "I'm looking for information about the Computer Science department - faculty, programs, and facilities.", "", router.IntentCampus, "departments", 1},
	{"vegetarian menu", "Show me the cafeteria menu for today. I'm looking for vegetarian options.", "", router.IntentCampus, "cafeteria", 1},
	{"my exam", "When is my Computer Networks exam? I need to check the schedule and location.", "student-001", router.IntentCampus, "exam", 1},
	{"exam day plan", "I have an exam tomorrow morning. Can you tell me the cafeteria breakfast hours and the earliest bus to campus?", "student-001", router.IntentCampus, "Nexora Orchestrator", 3},
	{"international support", "I'm a new international student. What support services are available and how do I get started?", "", router.IntentRedirect, "Campus Redirect", 0},
	{"assignment request", "Can you write my assignment for me? It's due tomorrow and I haven't started.", "", router.IntentRedirect, "Campus Redirect", 0},
	{"competitions", "I want to participate in technology competitions. Tell me about opportunities and how to prepare.", "", router.IntentCampus, "events", 1},
	{"harassment", "I will bully anyone who takes the front seat on the bus", "", router.IntentModeration, "Content Moderation", 0},
	{"time only", "What time is it right now?", "", router.IntentCampus, "Date & Time", 0},
}

// emptyKnowledge is a reachable knowledge base with no documents.
type emptyKnowledge struct{}

func (emptyKnowledge) Search(context.Context, string, int) ([]knowledge.Snippet, error) {
	return nil, nil
}

type cannedTools struct {
	calls atomic.Int32
}

func (c *cannedTools) tool(name campus.ToolName, domain campus.Domain, kind campus.Kind, payload campus.Payload) campus.Descriptor {
	return campus.NewDescriptor(name, domain, kind, string(name), func(context.Context, campus.Args) (campus.Payload, error) {
		c.calls.Add(1)
		return payload, nil
	})
}

func (c *cannedTools) registry() (*campus.Registry, error) {
	events := campus.Events{
		{ID: 1, Name: "Nexora 1.0 Datathon", Description: "24-hour data challenge with cash prizes", Venue: "Main Hall", Date: "2025-06-20", Time: "09:00"},
		{ID: 2, Name: "Tech Talk: Cloud Careers", Description: "Industry talk", Venue: "Auditorium", Date: "2025-06-18", Time: "14:00"},
	}
	departments := campus.Departments{
		{ID: 1, Name: "Computer Science", Description: "Software engineering and data science programmes", Head: "Dr. Perera", Location: "Block C"},
	}
	routes := campus.BusRoutes{
		{ID: 1, RouteNumber: "12", RouteName: "Campus Express", StartPoint: "Main Campus", EndPoint: "City Center", DepartureTime: "17:30", Status: "active"},
		{ID: 2, RouteNumber: "7", RouteName: "Morning Shuttle", StartPoint: "City Center", EndPoint: "Main Campus", DepartureTime: "06:45", Status: "active"},
	}
	menu := campus.Menu{
		{ID: 1, Name: "Vegetable Fried Rice", Category: "Lunch", Price: 380},
		{ID: 2, Name: "String Hoppers", Category: "Breakfast", Price: 250},
	}
	exams := campus.ExamResults{{CourseCode: "CN301", CourseName: "Computer Networks", Grade: "A-", Score: 78}}

	return campus.NewRegistry(
		c.tool(campus.ToolFetchEvents, campus.DomainEvents, campus.KindFetchAll, events),
		c.tool(campus.ToolSearchEvents, campus.DomainEvents, campus.KindSearch, events),
		c.tool(campus.ToolFetchDepartments, campus.DomainDepartments, campus.KindFetchAll, departments),
		c.tool(campus.ToolSearchDepts, campus.DomainDepartments, campus.KindSearch, departments),
		c.tool(campus.ToolFetchBusRoutes, campus.DomainBus, campus.KindFetchAll, routes),
		c.tool(campus.ToolSearchBusRoutes, campus.DomainBus, campus.KindSearch, routes),
		c.tool(campus.ToolFetchMenu, campus.DomainCafeteria, campus.KindFetchAll, menu),
		c.tool(campus.ToolSearchMenu, campus.DomainCafeteria, campus.KindSearch, menu),
		c.tool(campus.ToolFetchExamResults, campus.DomainExam, campus.KindFetchAll, exams),
		c.tool(campus.ToolFetchUserProfile, campus.DomainUser, campus.KindFetchAll, campus.Profiles{}),
	)
}

func main() {
	tools := &cannedTools{}
	registry, err := tools.registry()
	if err != nil {
		color.Red("Failed to build registry: %v", err)
		os.Exit(1)
	}

	messages := prompt.Default()
	gate := moderation.NewGate(moderation.NewKeywordClassifier(nil), moderation.Config{
		Thresholds: moderation.DefaultThresholds(),
		Policy:     moderation.FailOpen,
	})
	orchestrator := router.NewOrchestrator(registry, messages, router.Options{ToolTimeout: 5 * time.Second})
	asm := assembler.New(emptyKnowledge{}, assembler.Config{Location: time.UTC})
	comp := composer.New(messages.AgentName)

	color.Cyan("Nexora Campus Copilot evaluation (%d scenarios)\n", len(scenarios))
	fmt.Printf("%-24s %-11s %-22s %-6s %s\n", "SCENARIO", "INTENT", "AGENT", "TOOLS", "RESULT")

	failed := 0
	for i, sc := range scenarios {
		ctx := context.Background()
		sessionID := fmt.Sprintf("eval-%02d", i+1)
		before := tools.calls.Load()

		mod := gate.Check(ctx, sc.input)
		var resp router.ComposedResponse
		if mod.Flagged {
			resp = orchestrator.Blocked()
		} else {
			qc := asm.Assemble(ctx, sc.input, sessionID, sc.userID)
			if resp, err = orchestrator.Route(ctx, qc, nil); err != nil {
				color.Red("%s: route error: %v", sc.name, err)
				failed++
				continue
			}
		}
		reply := comp.Compose(resp, mod, sessionID)
		calls := int(tools.calls.Load() - before)

		ok := reply.Intent == string(sc.wantInt) && reply.AgentUsed == sc.wantAgent && calls == sc.wantTools
		row := fmt.Sprintf("%-24s %-11s %-22s %-6d", sc.name, reply.Intent, reply.AgentUsed, calls)
		if ok {
			fmt.Printf("%s %s\n", row, color.GreenString("PASS"))
			continue
		}
		failed++
		fmt.Printf("%s %s\n", row, color.RedString("FAIL"))
		color.Yellow("    want intent=%s agent=%s tools=%d", sc.wantInt, sc.wantAgent, sc.wantTools)
	}

	fmt.Println()
	if failed > 0 {
		color.Red("%d of %d scenarios failed", failed, len(scenarios))
		os.Exit(1)
	}
	color.Green("All %d scenarios passed", len(scenarios))
}
