package campus

import (
	"context"
	"strings"
	"time"
)

// Tools builds the standard campus tool set backed by the API client.
func Tools(c *Client) []Descriptor {
	return []Descriptor{
		NewDescriptor(ToolFetchEvents, DomainEvents, KindFetchAll,
			"List all upcoming campus events.",
			func(ctx context.Context, _ Args) (Payload, error) {
				return c.Events(ctx, 0)
			}),
		NewDescriptor(ToolSearchEvents, DomainEvents, KindSearch,
			"Find campus events matching a keyword or topic.",
			func(ctx context.Context, args Args) (Payload, error) {
				all, err := c.Events(ctx, 0)
				if err != nil {
					return nil, err
				}
				return FilterEvents(all, args.Query), nil
			}),
		NewDescriptor(ToolFetchDepartments, DomainDepartments, KindFetchAll,
			"List all academic departments.",
			func(ctx context.Context, _ Args) (Payload, error) {
				return c.Departments(ctx, 0)
			}),
		NewDescriptor(ToolSearchDepts, DomainDepartments, KindSearch,
			"Find departments by name or description.",
			func(ctx context.Context, args Args) (Payload, error) {
				all, err := c.Departments(ctx, 0)
				if err != nil {
					return nil, err
				}
				return FilterDepartments(all, args.Query), nil
			}),
		NewDescriptor(ToolFetchBusRoutes, DomainBus, KindFetchAll,
			"List all campus bus routes.",
			func(ctx context.Context, _ Args) (Payload, error) {
				return c.BusRoutes(ctx, 0)
			}),
		NewDescriptor(ToolSearchBusRoutes, DomainBus, KindSearch,
			"Find bus routes by stop, route name or number, status or departure window.",
			func(ctx context.Context, args Args) (Payload, error) {
				all, err := c.BusRoutes(ctx, 0)
				if err != nil {
					return nil, err
				}
				return FilterBusRoutes(all, args), nil
			}),
		NewDescriptor(ToolFetchMenu, DomainCafeteria, KindFetchAll,
			"Show the full cafeteria menu.",
			func(ctx context.Context, _ Args) (Payload, error) {
				return c.Menu(ctx, 0)
			}),
		NewDescriptor(ToolSearchMenu, DomainCafeteria, KindSearch,
			"Find menu items by name, category or ingredient.",
			func(ctx context.Context, args Args) (Payload, error) {
				all, err := c.Menu(ctx, 0)
				if err != nil {
					return nil, err
				}
				return FilterMenu(all, args.Query), nil
			}),
		NewDescriptor(ToolFetchExamResults, DomainExam, KindFetchAll,
			"Fetch the signed-in student's exam results.",
			func(ctx context.Context, args Args) (Payload, error) {
				return c.ExamResults(ctx, args.UserID)
			}),
		NewDescriptor(ToolFetchUserProfile, DomainUser, KindFetchAll,
			"Fetch the signed-in student's profile.",
			func(ctx context.Context, args Args) (Payload, error) {
				return c.UserProfile(ctx, args.UserID)
			}),
	}
}

func FilterEvents(all Events, query string) Events {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return all
	}
	out := Events{}
	for _, e := range all {
		if matchesAny(terms, e.Name, e.Description, e.Venue, e.Organizer) {
			out = append(out, e)
		}
	}
	return out
}

func FilterDepartments(all Departments, query string) Departments {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return all
	}
	out := Departments{}
	for _, d := range all {
		if matchesAny(terms, d.Name, d.Description) {
			out = append(out, d)
		}
	}
	return out
}

func FilterBusRoutes(all BusRoutes, args Args) BusRoutes {
	terms := searchTerms(args.Query)
	status := strings.ToLower(strings.TrimSpace(args.Status))

	out := BusRoutes{}
	for _, r := range all {
		if len(terms) > 0 && !matchesAny(terms, r.RouteName, r.RouteNumber, r.StartPoint, r.EndPoint) {
			continue
		}
		if status != "" && strings.ToLower(r.Status) != status {
			continue
		}
		if !withinWindow(r.DepartureTime, args.From, args.To) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func FilterMenu(all Menu, query string) Menu {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return all
	}
	out := Menu{}
	for _, it := range all {
		if matchesAny(terms, it.Name, it.Description, it.Category, it.Ingredients) {
			out = append(out, it)
		}
	}
	return out
}

func searchTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:'\"()")
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

func matchesAny(terms []string, fields ...string) bool {
	for _, field := range fields {
		lower := strings.ToLower(field)
		if lower == "" {
			continue
		}
		for _, t := range terms {
			if strings.Contains(lower, t) {
				return true
			}
		}
	}
	return false
}

// withinWindow checks a departure time against optional "HH:MM" bounds.
func withinWindow(departure, from, to string) bool {
	if from == "" && to == "" {
		return true
	}
	dep, ok := normalizeClock(departure)
	if !ok {
		return false
	}
	if lo, ok := normalizeClock(from); ok && dep < lo {
		return false
	}
	if hi, ok := normalizeClock(to); ok && dep > hi {
		return false
	}
	return true
}

var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3:04 pm", "3:04pm"}

func normalizeClock(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), true
		}
	}
	return "", false
}
