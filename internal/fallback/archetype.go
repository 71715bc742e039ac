package fallback

import "strings"

// Archetype selects the mock UI section of a fallback page.
type Archetype int

const (
	Generic Archetype = iota
	Ticketing
	Queue
	CallDisplay
	Consultation
	Statistics
	Administration
	WaitingGuide
	Appointment
	Notification
)

var archetypeNames = map[Archetype]string{
	Generic:        "generic",
	Ticketing:      "ticketing",
	Queue:          "queue",
	CallDisplay:    "call-display",
	Consultation:   "consultation",
	Statistics:     "statistics",
	Administration: "administration",
	WaitingGuide:   "waiting-guide",
	Appointment:    "appointment",
	Notification:   "notification",
}

func (a Archetype) String() string {
	if s, ok := archetypeNames[a]; ok {
		return s
	}
	return "generic"
}

// rule matches when the name contains any of anyOf and all of allOf.
type rule struct {
	archetype Archetype
	anyOf     []string
	allOf     []string
}

func (r rule) match(name string) bool {
	for _, k := range r.allOf {
		if !strings.Contains(name, k) {
			return false
		}
	}
	if len(r.anyOf) == 0 {
		return len(r.allOf) > 0
	}
	for _, k := range r.anyOf {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// rules are tried in order; the first match wins.
var rules = []rule{
	{archetype: Ticketing, anyOf: []string{"取号", "排队", "ticket"}},
	{archetype: Queue, anyOf: []string{"队列", "queue"}},
	{archetype: CallDisplay, allOf: []string{"叫号", "显示"}},
	{archetype: CallDisplay, allOf: []string{"call", "display"}},
	{archetype: Consultation, anyOf: []string{"医生", "接诊", "doctor", "consult"}},
	{archetype: Statistics, anyOf: []string{"统计", "报表", "statistic", "report", "analytic"}},
	{archetype: Administration, anyOf: []string{"系统", "管理", "admin", "system", "setting"}},
	{archetype: WaitingGuide, anyOf: []string{"候诊", "引导", "waiting", "guide"}},
	{archetype: Appointment, anyOf: []string{"预约", "appointment", "booking", "reservation"}},
	{archetype: Notification, anyOf: []string{"通知", "消息", "notif", "message"}},
}

// Classify maps a module name to its archetype. Matching is by substring,
// case-insensitive for Latin text.
func Classify(moduleName string) Archetype {
	name := strings.ToLower(moduleName)
	for _, r := range rules {
		if r.match(name) {
			return r.archetype
		}
	}
	return Generic
}

// Archetypes lists every archetype, catch-all included.
func Archetypes() []Archetype {
	return []Archetype{Generic, Ticketing, Queue, CallDisplay, Consultation,
		Statistics, Administration, WaitingGuide, Appointment, Notification}
}
