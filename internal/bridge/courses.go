package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrideymarwah15/studyassistant/internal/store"
)

type CourseStore interface {
	ListCourses(ctx context.Context, userID string) ([]store.Course, error)
}

type CourseBridges struct {
	Store CourseStore
}

func (b *CourseBridges) Register(r *Registry) {
	r.Register("course.info", b.Info)
}

func (b *CourseBridges) Info(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	name, ok := params.String("courseName")
	if !ok {
		return Failure("Which course do you want to know about?"), nil
	}

	// Prefer data the caller already loaded.
	var courses []store.Course
	if cctx.AvailableData != nil && len(cctx.AvailableData.Courses) > 0 {
		courses = cctx.AvailableData.Courses
	} else {
		var err error
		courses, err = b.Store.ListCourses(ctx, cctx.UserID)
		if err != nil {
			return nil, err
		}
	}

	needle := strings.ToLower(name)
	for _, c := range courses {
		if !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		msg := c.Name
		if c.Instructor != "" {
			msg += fmt.Sprintf(" — taught by %s", c.Instructor)
		}
		if c.Schedule != "" {
			msg += fmt.Sprintf("\nSchedule: %s", c.Schedule)
		}
		if c.NextDeadline != "" {
			msg += fmt.Sprintf("\nNext deadline: %s", c.NextDeadline)
		}
		return &Result{
			Success: true,
			Message: msg,
			Data:    map[string]any{"result": c.ID, "course": c},
		}, nil
	}

	return Failure(fmt.Sprintf("I couldn't find a course matching \"%s\". Could you be more specific?", name)), nil
}
