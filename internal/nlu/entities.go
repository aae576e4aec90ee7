package nlu

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/hrideymarwah15/studyassistant/internal/bridge"
)

// Entities is the typed parameter set extracted for one intent. Fields
// flattens it into the bag the bridges consume; absent values are omitted,
// never mapped to empty strings.
type Entities interface {
	Fields() bridge.Params
}

type NoEntities struct{}

func (NoEntities) Fields() bridge.Params { return bridge.Params{} }

type CreateTaskEntities struct {
	Title   string
	DueDate *time.Time
}

func (e CreateTaskEntities) Fields() bridge.Params {
	p := bridge.Params{}
	if e.Title != "" {
		p["title"] = e.Title
	}
	if e.DueDate != nil {
		p["dueDate"] = *e.DueDate
	}
	return p
}

type StartStudyEntities struct {
	Task     string
	Duration int
}

func (e StartStudyEntities) Fields() bridge.Params {
	p := bridge.Params{"duration": e.Duration}
	if e.Task != "" {
		p["task"] = e.Task
	}
	return p
}

type CompleteTaskEntities struct {
	TaskName string
}

func (e CompleteTaskEntities) Fields() bridge.Params {
	p := bridge.Params{}
	if e.TaskName != "" {
		p["taskName"] = e.TaskName
	}
	return p
}

type ToggleHabitEntities struct {
	HabitName string
}

func (e ToggleHabitEntities) Fields() bridge.Params {
	p := bridge.Params{}
	if e.HabitName != "" {
		p["habitName"] = e.HabitName
	}
	return p
}

type CourseInfoEntities struct {
	CourseName string
}

func (e CourseInfoEntities) Fields() bridge.Params {
	p := bridge.Params{}
	if e.CourseName != "" {
		p["courseName"] = e.CourseName
	}
	return p
}

type SearchMaterialsEntities struct {
	Query string
}

func (e SearchMaterialsEntities) Fields() bridge.Params {
	p := bridge.Params{}
	if e.Query != "" {
		p["query"] = e.Query
	}
	return p
}

type AddEventEntities struct {
	Title string
	Date  *time.Time
}

func (e AddEventEntities) Fields() bridge.Params {
	p := bridge.Params{}
	if e.Title != "" {
		p["title"] = e.Title
	}
	if e.Date != nil {
		p["date"] = *e.Date
	}
	return p
}

type CreatePlanEntities struct {
	ExamName string
	Days     int
}

func (e CreatePlanEntities) Fields() bridge.Params {
	p := bridge.Params{"days": e.Days}
	if e.ExamName != "" {
		p["examName"] = e.ExamName
	}
	return p
}

type StartProductivityEntities struct {
	Duration int
}

func (e StartProductivityEntities) Fields() bridge.Params {
	return bridge.Params{"duration": e.Duration}
}

// ---- date and duration utilities ----

var durationRe = regexp.MustCompile(`(\d+)\s*(min(?:ute)?s?|hours?)`)

const defaultSessionMinutes = 25

// parseDurationMinutes pulls a duration out of a fragment like "45 minutes"
// or "2 hours". No match means the default 25-minute session.
func parseDurationMinutes(fragment string) int {
	m := durationRe.FindStringSubmatch(strings.ToLower(fragment))
	if m == nil {
		return defaultSessionMinutes
	}
	n := 0
	for _, c := range m[1] {
		n = n*10 + int(c-'0')
	}
	if strings.HasPrefix(m[2], "hour") {
		n *= 60
	}
	return n
}

// parseDueDate resolves a free-text date fragment against "now". Resolved
// dates carry no time of day. The second return is false when the fragment
// names no recognizable date.
func parseDueDate(fragment string, now time.Time) (time.Time, bool) {
	frag := strings.ToLower(strings.TrimSpace(fragment))
	frag = strings.TrimPrefix(frag, "on ")
	frag = strings.TrimPrefix(frag, "by ")
	base := midnightOf(now)

	switch frag {
	case "today":
		return base, true
	case "tomorrow":
		return base.AddDate(0, 0, 1), true
	case "next week":
		return base.AddDate(0, 0, 7), true
	case "end of week", "end of the week", "friday":
		return nextFriday(base), true
	}

	t, err := dateparse.ParseIn(frag, now.Location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// nextFriday advances to the coming Friday, or a full week out when today is
// already Friday.
func nextFriday(base time.Time) time.Time {
	days := (int(time.Friday) - int(base.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return base.AddDate(0, 0, days)
}

func midnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var (
	trailingKeywordRe = regexp.MustCompile(`^(.+?)\s+(today|tomorrow|next week|end of (?:the )?week|friday)$`)
	trailingPrepRe    = regexp.MustCompile(`^(.+?)\s+(?:on|by|due(?:\s+on)?)\s+(.+)$`)
)

// splitTrailingDate splits "submit essay tomorrow" into the title and its
// date fragment. Titles with no recognizable trailing date come back whole.
func splitTrailingDate(raw string, now time.Time) (string, *time.Time) {
	if m := trailingKeywordRe.FindStringSubmatch(raw); m != nil {
		if due, ok := parseDueDate(m[2], now); ok {
			return trimDatePrep(m[1]), &due
		}
	}
	if m := trailingPrepRe.FindStringSubmatch(raw); m != nil {
		if due, ok := parseDueDate(m[2], now); ok {
			return strings.TrimSpace(m[1]), &due
		}
	}
	return strings.TrimSpace(raw), nil
}

// trimDatePrep drops a preposition left dangling between the title and a
// keyword date, as in "call mom by friday".
func trimDatePrep(title string) string {
	title = strings.TrimSpace(title)
	for _, suffix := range []string{" due on", " due", " on", " by"} {
		if strings.HasSuffix(title, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(title, suffix))
		}
	}
	return title
}
