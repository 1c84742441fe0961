package campus

import (
	"context"
	"errors"
	"fmt"
)

// ToolName identifies a registered tool.
type ToolName string

const (
	ToolFetchEvents      ToolName = "fetch_events"
	ToolSearchEvents     ToolName = "search_events"
	ToolFetchDepartments ToolName = "fetch_departments"
	ToolSearchDepts      ToolName = "search_departments"
	ToolFetchBusRoutes   ToolName = "fetch_bus_routes"
	ToolSearchBusRoutes  ToolName = "search_bus_routes"
	ToolFetchMenu        ToolName = "fetch_cafeteria_menu"
	ToolSearchMenu       ToolName = "search_menu_items"
	ToolFetchExamResults ToolName = "fetch_exam_results"
	ToolFetchUserProfile ToolName = "fetch_user_profile"
)

// Kind separates a domain's catch-all tool from its narrower search tool.
type Kind int

const (
	KindFetchAll Kind = iota
	KindSearch
)

func (k Kind) String() string {
	if k == KindSearch {
		return "search"
	}
	return "fetch_all"
}

// Args carries the inputs a tool may read. Each tool reads only what it needs.
type Args struct {
	Query  string
	UserID string
	// Status filters bus routes ("active", "inactive").
	Status string
	// From and To bound bus departure times, "HH:MM".
	From string
	To   string
}

// InvokeFunc performs the actual lookup.
type InvokeFunc func(ctx context.Context, args Args) (Payload, error)

// Descriptor is an immutable tool registration.
type Descriptor struct {
	Name        ToolName
	Domain      Domain
	Kind        Kind
	Description string
	invoke      InvokeFunc
}

// NewDescriptor builds a descriptor. invoke must be safe for concurrent use.
func NewDescriptor(name ToolName, domain Domain, kind Kind, description string, invoke InvokeFunc) Descriptor {
	return Descriptor{
		Name:        name,
		Domain:      domain,
		Kind:        kind,
		Description: description,
		invoke:      invoke,
	}
}

// Result is the outcome of a single tool invocation.
type Result struct {
	ToolName ToolName
	Domain   Domain
	Success  bool
	Payload  Payload
	Error    string
}

var (
	ErrToolNotFound    = errors.New("tool not found")
	ErrUserIDRequired  = errors.New("user id is required for this lookup")
	ErrNotImplemented  = errors.New("tool is not available in this deployment")
	ErrMalformedRecord = errors.New("malformed payload")
)

// Invoke runs the tool and converts any failure into a failed Result.
func (d Descriptor) Invoke(ctx context.Context, args Args) (res Result) {
	res = Result{ToolName: d.Name, Domain: d.Domain}

	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.Payload = nil
			res.Error = fmt.Sprintf("tool %s panicked", d.Name)
		}
	}()

	if d.invoke == nil {
		res.Error = ErrNotImplemented.Error()
		return res
	}
	if d.Domain.Personal() && args.UserID == "" {
		res.Error = ErrUserIDRequired.Error()
		return res
	}

	payload, err := d.invoke(ctx, args)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if payload == nil {
		res.Error = ErrMalformedRecord.Error()
		return res
	}
	res.Success = true
	res.Payload = payload
	return res
}
