package router

import (
	"regexp"
	"strings"

	"nexora-campus-be/pkg/campus"
)

// vocabulary is the keyword set attached to one domain. Triggers select the
// domain; qualifiers select it too but also narrow the search.
type vocabulary struct {
	domain     campus.Domain
	triggers   []string
	qualifiers []string
	// personal domains only match first-person phrasing ("my grades").
	personal bool
}

var vocabularies = []vocabulary{
	{
		domain: campus.DomainEvents,
		triggers: []string{
			"event", "events", "happening", "happenings", "activity", "activities",
			"going on", "upcoming", "whats on",
		},
		qualifiers: []string{
			"workshop", "workshops", "seminar", "seminars", "hackathon", "datathon",
			"competition", "competitions", "fest", "festival", "concert", "meetup",
			"webinar", "conference", "talk", "talks", "club", "clubs", "tech",
			"sports", "music", "career fair", "orientation",
		},
	},
	{
		domain: campus.DomainDepartments,
		triggers: []string{
			"department", "departments", "faculty", "faculties", "school of", "dean",
			"hod", "head of department", "programme", "programmes", "program",
			"programs", "degree", "degrees",
		},
		qualifiers: []string{
			"computing", "computer science", "engineering", "business", "management",
			"law", "design", "humanities",
		},
	},
	{
		domain: campus.DomainBus,
		triggers: []string{
			"bus", "buses", "shuttle", "shuttles", "route", "routes", "transport",
			"transportation", "commute", "pickup", "pick up",
		},
	},
	{
		domain: campus.DomainCafeteria,
		triggers: []string{
			"cafeteria", "canteen", "menu", "food", "foods", "eat", "eating", "meal",
			"meals", "hungry", "dining",
		},
		qualifiers: []string{
			"breakfast", "lunch", "dinner", "snack", "snacks", "vegetarian", "vegan",
			"dessert", "desserts", "drink", "drinks", "coffee", "tea", "juice", "rice",
			"chicken", "halal", "spicy",
		},
	},
	{
		domain: campus.DomainExam,
		triggers: []string{
			"exam", "exams", "examination", "examinations", "result", "results",
			"grade", "grades", "gpa", "marks", "transcript",
		},
		personal: true,
	},
	{
		domain: campus.DomainUser,
		triggers: []string{
			"profile", "account", "details", "student id", "enrollment", "enrolment",
			"who am i", "about me", "registered", "batch", "my name", "my email",
		},
		personal: true,
	},
}

// generalCampus words mark a question as campus-related even when no tool
// domain matches it. They only matter when the knowledge base is offline.
var generalCampus = []string{
	"campus", "university", "uni", "library", "lecture", "lectures", "lecturer",
	"semester", "hostel", "scholarship", "scholarships", "admission", "admissions",
	"registration", "student", "students", "nexora", "nsbm", "course", "courses",
	"module", "modules", "gym", "parking", "wifi",
}

var firstPerson = map[string]bool{
	"i": true, "my": true, "me": true, "mine": true, "im": true, "ive": true, "myself": true,
}

var timePattern = regexp.MustCompile(
	`\b(what time is it|whats the time|what is the time|current time|time now|time right now|` +
		`what(s| is) (the )?date|todays date|date today|current date|the date today|` +
		`what day|which day|day is it|day today|what month|which month|what year|is it the weekend)\b`)

// partsOfDay maps words to a departure window for bus searches.
var partsOfDay = map[string][2]string{
	"morning":   {"05:00", "11:59"},
	"afternoon": {"12:00", "16:59"},
	"evening":   {"17:00", "20:59"},
	"night":     {"19:00", "23:59"},
	"tonight":   {"19:00", "23:59"},
}

var busStatus = map[string]string{
	"active":    "active",
	"running":   "active",
	"operating": "active",
	"inactive":  "inactive",
	"cancelled": "inactive",
	"canceled":  "inactive",
	"suspended": "inactive",
}

var stopwords = toSet(
	"a", "an", "the", "and", "or", "but", "of", "to", "in", "on", "at", "for", "from",
	"by", "with", "about", "is", "are", "was", "were", "be", "been", "am", "do", "does",
	"did", "can", "could", "will", "would", "should", "shall", "may", "might", "must",
	"what", "whats", "when", "where", "which", "who", "whom", "why", "how", "there",
	"this", "that", "these", "those", "it", "its", "any", "some", "all", "every", "each",
	"show", "tell", "list", "give", "find", "get", "see", "know", "want", "need", "like",
	"please", "thanks", "thank", "you", "your", "we", "our", "us", "they", "them",
	"hi", "hello", "hey", "today", "tomorrow", "week", "weekend", "month", "year", "time",
	"times", "date", "day", "now", "currently", "current", "next", "soon", "later",
	"available", "information", "info", "interested", "related", "looking", "also",
	"have", "has", "had", "much", "many", "more", "most", "other", "than", "then",
	"leave", "leaves", "leaving", "arrive", "arrives", "start", "starts", "open", "opens",
	"earliest", "latest", "first", "last", "up", "out", "into", "if", "so", "not", "no",
	"yes", "ok", "okay", "just", "only", "very", "really", "here", "going", "held",
	"served", "serve", "offer", "offers", "offered", "new", "good", "best",
)

// Classification is the keyword analysis of one message.
type Classification struct {
	// Domains lists matched tool domains in section order.
	Domains []campus.Domain
	// Qualifiers holds the narrowing words matched per domain.
	Qualifiers map[campus.Domain][]string
	// Terms are content words that belong to no vocabulary.
	Terms          []string
	FirstPerson    bool
	TimeReferenced bool
	CampusGeneral  bool
	BusStatus      string
	BusFrom        string
	BusTo          string
}

// Has reports whether the domain matched.
func (c Classification) Has(d campus.Domain) bool {
	for _, got := range c.Domains {
		if got == d {
			return true
		}
	}
	return false
}

// Classify runs the keyword rules over a message. It is pure and
// deterministic.
func Classify(message string) Classification {
	tokens := tokenize(message)
	padded := " " + strings.Join(tokens, " ") + " "

	c := Classification{Qualifiers: make(map[campus.Domain][]string)}
	for _, t := range tokens {
		if firstPerson[t] {
			c.FirstPerson = true
			break
		}
	}
	c.TimeReferenced = timePattern.MatchString(strings.TrimSpace(padded))

	known := make(map[string]bool)
	matched := make(map[campus.Domain]bool)
	for _, v := range vocabularies {
		hit := false
		for _, w := range v.triggers {
			if containsPhrase(padded, w) {
				hit = true
				markKnown(known, w)
			}
		}
		for _, w := range v.qualifiers {
			if containsPhrase(padded, w) {
				hit = true
				markKnown(known, w)
				c.Qualifiers[v.domain] = append(c.Qualifiers[v.domain], w)
			}
		}
		if !hit || (v.personal && !c.FirstPerson) {
			continue
		}
		matched[v.domain] = true
	}
	for _, d := range campus.SectionOrder {
		if matched[d] {
			c.Domains = append(c.Domains, d)
		}
	}

	for _, w := range generalCampus {
		if containsPhrase(padded, w) {
			c.CampusGeneral = true
			markKnown(known, w)
		}
	}

	for _, t := range tokens {
		if status, ok := busStatus[t]; ok && c.BusStatus == "" {
			c.BusStatus = status
			known[t] = true
		}
		if window, ok := partsOfDay[t]; ok && c.BusFrom == "" {
			c.BusFrom, c.BusTo = window[0], window[1]
			known[t] = true
		}
	}

	seen := make(map[string]bool)
	for _, t := range tokens {
		if known[t] || stopwords[t] || firstPerson[t] || seen[t] {
			continue
		}
		if len(t) < 3 && !isDigits(t) {
			continue
		}
		seen[t] = true
		c.Terms = append(c.Terms, t)
	}
	return c
}

func tokenize(message string) []string {
	lower := strings.ToLower(message)
	lower = strings.NewReplacer("'", "", "’", "").Replace(lower)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func containsPhrase(padded, phrase string) bool {
	return strings.Contains(padded, " "+phrase+" ")
}

func markKnown(known map[string]bool, phrase string) {
	for _, w := range strings.Fields(phrase) {
		known[w] = true
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func toSet(words ...string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}
