package router

import (
	"fmt"
	"strings"

	"nexora-campus-be/pkg/ai/assembler"
	"nexora-campus-be/pkg/campus"
)

// Selection is one tool chosen for a turn together with its arguments.
// An empty Tool marks a matched domain with no registered tool; it still
// gets a section reporting the lookup as unavailable.
type Selection struct {
	Tool   campus.ToolName
	Domain campus.Domain
	Args   campus.Args
}

// Decision is the routing outcome for one turn.
type Decision struct {
	Selected   []Selection
	Rationale  string
	IsRedirect bool
	// TimeOnly answers from the request clock with no tool call.
	TimeOnly bool
	// TimeReferenced adds the current time to a domain answer.
	TimeReferenced bool
	// KnowledgeOffline is set when the question looks campus-related but
	// the knowledge base could not be consulted.
	KnowledgeOffline bool
}

// Tools lists the selected tool names in order, skipping domains that
// have no registered tool.
func (d Decision) Tools() []campus.ToolName {
	out := make([]campus.ToolName, 0, len(d.Selected))
	for _, s := range d.Selected {
		if s.Tool != "" {
			out = append(out, s.Tool)
		}
	}
	return out
}

// Decide is deterministic: the same context and registry always produce
// the same decision. At most one selection is made per domain and every
// named tool exists in the registry.
func Decide(qc assembler.QueryContext, reg *campus.Registry) Decision {
	c := Classify(qc.RawMessage)
	var (
		d     Decision
		notes []string
	)

	for _, domain := range c.Domains {
		args, kind := argsFor(domain, c, qc)
		desc, ok := reg.Select(domain, kind)
		if !ok {
			d.Selected = append(d.Selected, Selection{Domain: domain, Args: args})
			notes = append(notes, fmt.Sprintf("%s has no registered tool", domain))
			continue
		}
		d.Selected = append(d.Selected, Selection{Tool: desc.Name, Domain: domain, Args: args})
		notes = append(notes, fmt.Sprintf("%s -> %s", domain, desc.Name))
	}

	hasSnippets := qc.HasSnippets()
	if hasSnippets {
		notes = append(notes, "knowledge snippets attached")
	}

	switch {
	case len(d.Selected) == 0 && c.TimeReferenced:
		d.TimeOnly = true
		notes = append(notes, "time question answered from request clock")
	case len(d.Selected) == 0 && !hasSnippets && qc.Degraded && c.CampusGeneral:
		d.KnowledgeOffline = true
		notes = append(notes, "campus question but knowledge base unavailable")
	case len(d.Selected) == 0 && !hasSnippets:
		d.IsRedirect = true
		notes = append(notes, "no campus domain matched")
	default:
		d.TimeReferenced = c.TimeReferenced
	}

	d.Rationale = strings.Join(notes, "; ")
	return d
}

// argsFor builds tool arguments and picks search over fetch-all when the
// message carries something to narrow by.
func argsFor(domain campus.Domain, c Classification, qc assembler.QueryContext) (campus.Args, campus.Kind) {
	args := campus.Args{UserID: qc.UserID}

	terms := append([]string{}, c.Qualifiers[domain]...)
	// Free-standing content words are only attributable when a single
	// non-personal domain matched.
	if nonPersonal(c.Domains) == 1 && !domain.Personal() {
		terms = append(terms, c.Terms...)
	}
	args.Query = strings.Join(terms, " ")

	if domain == campus.DomainBus {
		args.Status = c.BusStatus
		args.From, args.To = c.BusFrom, c.BusTo
	}

	if args.Query != "" || args.Status != "" || args.From != "" {
		return args, campus.KindSearch
	}
	return args, campus.KindFetchAll
}

func nonPersonal(domains []campus.Domain) int {
	n := 0
	for _, d := range domains {
		if !d.Personal() {
			n++
		}
	}
	return n
}
