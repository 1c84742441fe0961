package campus

import (
	"fmt"
	"strings"
)

// Payload is the typed data a tool hands back to the orchestrator.
type Payload interface {
	// Render formats the payload as plain section text.
	Render() string
	// Len is the number of records carried.
	Len() int
}

type Event struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Venue       string `json:"venue"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Organizer   string `json:"organizer"`
}

type Department struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Head        string `json:"head"`
	Location    string `json:"location"`
	Contact     string `json:"contact"`
}

type BusRoute struct {
	ID            int    `json:"id"`
	RouteName     string `json:"route_name"`
	RouteNumber   string `json:"route_number"`
	StartPoint    string `json:"start_point"`
	EndPoint      string `json:"end_point"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	Status        string `json:"status"`
}

type MenuItem struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Ingredients string  `json:"ingredients"`
	Price       float64 `json:"price"`
	Available   *bool   `json:"available,omitempty"`
}

type ExamResult struct {
	CourseCode string  `json:"course_code"`
	CourseName string  `json:"course_name"`
	Grade      string  `json:"grade"`
	Score      float64 `json:"score"`
	Semester   string  `json:"semester"`
}

type UserProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	StudentID  string `json:"student_id"`
	Department string `json:"department"`
	Year       string `json:"year"`
}

type Events []Event
type Departments []Department
type BusRoutes []BusRoute
type Menu []MenuItem
type ExamResults []ExamResult
type Profiles []UserProfile

func (e Events) Len() int      { return len(e) }
func (d Departments) Len() int { return len(d) }
func (b BusRoutes) Len() int   { return len(b) }
func (m Menu) Len() int        { return len(m) }
func (x ExamResults) Len() int { return len(x) }
func (p Profiles) Len() int    { return len(p) }

func (e Events) Render() string {
	if len(e) == 0 {
		return "No matching events were found."
	}
	var sb strings.Builder
	for _, ev := range e {
		sb.WriteString("- " + ev.Name)
		if when := joinNonEmpty(" ", ev.Date, ev.Time); when != "" {
			sb.WriteString(" (" + when + ")")
		}
		if ev.Venue != "" {
			sb.WriteString(" at " + ev.Venue)
		}
		if ev.Description != "" {
			sb.WriteString(": " + ev.Description)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (d Departments) Render() string {
	if len(d) == 0 {
		return "No matching departments were found."
	}
	var sb strings.Builder
	for _, dep := range d {
		sb.WriteString("- " + dep.Name)
		if dep.Description != "" {
			sb.WriteString(": " + dep.Description)
		}
		if extra := joinNonEmpty(", ", prefixed("Head: ", dep.Head), prefixed("Location: ", dep.Location), prefixed("Contact: ", dep.Contact)); extra != "" {
			sb.WriteString(" (" + extra + ")")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (b BusRoutes) Render() string {
	if len(b) == 0 {
		return "No matching bus routes were found."
	}
	var sb strings.Builder
	for _, r := range b {
		label := joinNonEmpty(" ", r.RouteNumber, r.RouteName)
		sb.WriteString(fmt.Sprintf("- %s: %s → %s", label, r.StartPoint, r.EndPoint))
		if times := joinNonEmpty(" - ", r.DepartureTime, r.ArrivalTime); times != "" {
			sb.WriteString(" [" + times + "]")
		}
		if r.Status != "" {
			sb.WriteString(" (" + r.Status + ")")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (m Menu) Render() string {
	if len(m) == 0 {
		return "No matching menu items were found."
	}
	var sb strings.Builder
	for _, it := range m {
		sb.WriteString("- " + it.Name)
		if it.Category != "" {
			sb.WriteString(" [" + it.Category + "]")
		}
		if it.Price > 0 {
			sb.WriteString(fmt.Sprintf(" LKR %.2f", it.Price))
		}
		if it.Description != "" {
			sb.WriteString(": " + it.Description)
		}
		if it.Available != nil && !*it.Available {
			sb.WriteString(" (unavailable)")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (x ExamResults) Render() string {
	if len(x) == 0 {
		return "No exam results are available for this account."
	}
	var sb strings.Builder
	for _, r := range x {
		sb.WriteString("- " + joinNonEmpty(" ", r.CourseCode, r.CourseName))
		if r.Grade != "" {
			sb.WriteString(": " + r.Grade)
		}
		if r.Score > 0 {
			sb.WriteString(fmt.Sprintf(" (%.1f)", r.Score))
		}
		if r.Semester != "" {
			sb.WriteString(", " + r.Semester)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (p Profiles) Render() string {
	if len(p) == 0 {
		return "No profile information is available for this account."
	}
	var sb strings.Builder
	for _, u := range p {
		sb.WriteString("- " + u.Name)
		if extra := joinNonEmpty(", ", prefixed("Student ID: ", u.StudentID), prefixed("Email: ", u.Email), prefixed("Department: ", u.Department), prefixed("Year: ", u.Year)); extra != "" {
			sb.WriteString(" (" + extra + ")")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func prefixed(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value
}
