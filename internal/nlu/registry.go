package nlu

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Baseline confidences are fixed per intent, not computed from match quality.
const (
	confidenceMultiStep = 0.9
	confidenceTypical   = 0.8
	confidenceFallback  = 0.5
)

type intentDef struct {
	key        string // internal registry key, never surfaced
	name       string // public dotted intent name
	confidence float64
	multiStep  bool
	patterns   []*regexp.Regexp
	extract    func(m []string, now time.Time) Entities
}

// registry holds every recognized intent. Declaration order is the
// disambiguation policy: the first matching pattern of the first matching
// intent wins, so earlier intents shadow later ones on ambiguous input.
// Patterns run against lowercased, trimmed input.
var registry = []intentDef{
	{
		key:        "create_plan",
		name:       "plan.create",
		confidence: confidenceMultiStep,
		multiStep:  true,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:create|make|build|generate)\s+(?:a\s+)?study\s+plan\s+for\s+(?:(?:the\s+)?exam\s+)?(.+?)(?:\s+in\s+(\d+)\s+days?)?$`),
		},
		extract: func(m []string, now time.Time) Entities {
			days := 7
			if d, err := strconv.Atoi(group(m, 2)); err == nil && d > 0 {
				days = d
			}
			return CreatePlanEntities{ExamName: strings.TrimSpace(group(m, 1)), Days: days}
		},
	},
	{
		key:        "start_productivity",
		name:       "productivity.start",
		confidence: confidenceMultiStep,
		multiStep:  true,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:start|begin|enter)\s+(?:a\s+)?(?:productiv(?:e|ity)|focus)\s+(?:session|mode)(?:\s+for\s+(\d+\s*(?:min(?:ute)?s?|hours?)))?$`),
			regexp.MustCompile(`^(?:help me|let'?s)\s+(?:get\s+)?(?:focused|productive)$`),
		},
		extract: func(m []string, now time.Time) Entities {
			return StartProductivityEntities{Duration: parseDurationMinutes(group(m, 1))}
		},
	},
	{
		key:        "create_task",
		name:       "task.create",
		confidence: confidenceTypical,
		patterns: []*regexp.Regexp{
			// Three alternative title slots; the first non-empty one wins.
			regexp.MustCompile(`^(?:remind me to\s+(.+)|(?:add|create)\s+(?:a\s+)?(?:new\s+)?task\s*:?\s*(?:to\s+)?(.+)|i (?:need|have) to\s+(.+))$`),
		},
		extract: func(m []string, now time.Time) Entities {
			raw := firstGroup(m, 1, 2, 3)
			title, due := splitTrailingDate(raw, now)
			return CreateTaskEntities{Title: title, DueDate: due}
		},
	},
	{
		key:        "start_study",
		name:       "study.start",
		confidence: confidenceTypical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:start|begin)\s+(?:a\s+)?study(?:ing)?\s+session(?:\s+(?:for|on)\s+(.+?))?(?:\s+for\s+(\d+\s*(?:min(?:ute)?s?|hours?)))?$`),
			regexp.MustCompile(`^study\s+(.+?)(?:\s+for\s+(\d+\s*(?:min(?:ute)?s?|hours?)))?$`),
		},
		extract: func(m []string, now time.Time) Entities {
			task := strings.TrimSpace(group(m, 1))
			dur := group(m, 2)
			// A bare "session for 45 minutes" leaves the duration in the
			// task slot.
			if dur == "" && durationRe.MatchString(task) && durationRe.FindString(task) == task {
				dur, task = task, ""
			}
			minutes := defaultSessionMinutes
			if dur != "" {
				minutes = parseDurationMinutes(dur)
			}
			return StartStudyEntities{Task: task, Duration: minutes}
		},
	},
	{
		key:        "complete_task",
		name:       "task.complete",
		confidence: confidenceTypical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:complete|finish|i(?:'ve| have)? (?:finished|completed))\s+(?:the\s+)?(?:task\s+)?(.+)$`),
			regexp.MustCompile(`^mark\s+(.+?)\s+(?:as\s+)?(?:done|completed?)$`),
		},
		extract: func(m []string, now time.Time) Entities {
			return CompleteTaskEntities{TaskName: strings.TrimSpace(group(m, 1))}
		},
	},
	{
		key:        "list_tasks",
		name:       "task.list",
		confidence: confidenceTypical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:show|list|view)\s+(?:me\s+)?(?:all\s+)?(?:my\s+)?(?:pending\s+)?tasks$`),
			regexp.MustCompile(`^what(?:'s| is) due(?:\s+today)?\??$`),
			regexp.MustCompile(`^what do i (?:need|have) to do(?:\s+today)?\??$`),
		},
		extract: func(m []string, now time.Time) Entities { return NoEntities{} },
	},
	{
		key:        "toggle_habit",
		name:       "habit.toggle",
		confidence: confidenceTypical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:i did|did|log|check off)\s+(?:my\s+)?(.+?)(?:\s+habit)?(?:\s+today)?$`),
			regexp.MustCompile(`^mark\s+(?:my\s+)?(.+?)\s+habit(?:\s+(?:as\s+)?done)?$`),
		},
		extract: func(m []string, now time.Time) Entities {
			return ToggleHabitEntities{HabitName: strings.TrimSpace(group(m, 1))}
		},
	},
	{
		key:        "list_habits",
		name:       "habit.list",
		confidence: confidenceTypical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:show|list|view)\s+(?:me\s+)?(?:my\s+)?habits$`),
		},
		extract: func(m []string, now time.Time) Entities { return NoEntities{} },
	},
	{
		key:        "course_info",
		name:       "course.info",
		confidence: confidenceTypical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:tell me about|what(?:'s| is) (?:happening )?in)\s+(?:my\s+)?(.+?)\s+(?:class|course)$`),
			regexp.MustCompile(`^course\s+info(?:rmation)?\s+(?:for|about|on)\s+(.+)$`),
		},
		extract: func(m []string, now time.Time) Entities {
			return CourseInfoEntities{CourseName: strings.TrimSpace(group(m, 1))}
		},
	},
	{
		key:        "search_materials",
		name:       "material.search",
		confidence: confidenceTypical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:search|find|look\s*up)\s+(?:my\s+)?(?:notes?|materials?|flashcards?)\s+(?:for|about|on)\s+(.+)$`),
			regexp.MustCompile(`^(?:search|find)\s+(?:for\s+)?(.+?)\s+in\s+my\s+(?:notes|materials)$`),
		},
		extract: func(m []string, now time.Time) Entities {
			return SearchMaterialsEntities{Query: strings.TrimSpace(group(m, 1))}
		},
	},
	{
		key:        "add_event",
		name:       "calendar.add",
		confidence: confidenceTypical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:schedule|add|create)\s+(?:an?\s+)?(?:event|meeting|appointment)\s*:?\s+(.+)$`),
		},
		extract: func(m []string, now time.Time) Entities {
			title, date := splitTrailingDate(group(m, 1), now)
			return AddEventEntities{Title: title, Date: date}
		},
	},
	{
		key:        "daily_stats",
		name:       "stats.daily",
		confidence: confidenceTypical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^how (?:am i doing|did i do)(?:\s+today)?\??$`),
			regexp.MustCompile(`^show\s+(?:me\s+)?(?:my\s+)?(?:stats|statistics|progress|dashboard)(?:\s+for\s+today)?$`),
		},
		extract: func(m []string, now time.Time) Entities { return NoEntities{} },
	},
	{
		key:        "help",
		name:       "assistant.help",
		confidence: confidenceFallback,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:help|\?)$`),
			regexp.MustCompile(`what can you do`),
		},
		extract: func(m []string, now time.Time) Entities { return NoEntities{} },
	},
}

// group safely reads a capture group; a missing or unmatched group is "not
// provided", not an empty-string entity.
func group(m []string, i int) string {
	if i >= len(m) {
		return ""
	}
	return m[i]
}

func firstGroup(m []string, idxs ...int) string {
	for _, i := range idxs {
		if g := group(m, i); g != "" {
			return g
		}
	}
	return ""
}
