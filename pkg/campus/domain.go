package campus

// Domain is a campus-information category. The set is closed: routing maps
// parsed intent tokens onto one of these before any tool lookup happens.
type Domain int

const (
	DomainEvents Domain = iota
	DomainDepartments
	DomainBus
	DomainCafeteria
	DomainExam
	DomainUser
	DomainKnowledge
	DomainDatetime
)

var domainNames = map[Domain]string{
	DomainEvents:      "events",
	DomainDepartments: "departments",
	DomainBus:         "bus",
	DomainCafeteria:   "cafeteria",
	DomainExam:        "exam",
	DomainUser:        "user",
	DomainKnowledge:   "knowledge",
	DomainDatetime:    "datetime",
}

var sectionTitles = map[Domain]string{
	DomainEvents:      "Events",
	DomainDepartments: "Departments",
	DomainBus:         "Bus Routes",
	DomainCafeteria:   "Cafeteria",
	DomainExam:        "Exam Results",
	DomainUser:        "User Profile",
	DomainKnowledge:   "Knowledge Base Information",
	DomainDatetime:    "Date & Time",
}

// SectionOrder is the fixed order of labeled sections in a composed reply.
var SectionOrder = []Domain{
	DomainEvents,
	DomainDepartments,
	DomainBus,
	DomainCafeteria,
	DomainExam,
	DomainUser,
	DomainKnowledge,
}

func (d Domain) String() string {
	if name, ok := domainNames[d]; ok {
		return name
	}
	return "unknown"
}

// Section returns the heading used for this domain in composed replies.
func (d Domain) Section() string {
	if title, ok := sectionTitles[d]; ok {
		return title
	}
	return d.String()
}

// Personal reports whether the domain needs a user id to be looked up.
func (d Domain) Personal() bool {
	return d == DomainExam || d == DomainUser
}

// ParseDomain maps a lowercase domain name back to its enum value.
func ParseDomain(name string) (Domain, bool) {
	for d, n := range domainNames {
		if n == name {
			return d, true
		}
	}
	return 0, false
}
