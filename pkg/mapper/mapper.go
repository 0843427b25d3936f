// Package mapper translates Todoist task fields into their Taskwarrior
// shape. All translation is driven by an explicit Rules value; the same task
// translated twice under the same rules yields identical fields.
package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/titwsync/pkg/todoist"
)

// DefaultProject is where tasks land when no project rule matches.
const DefaultProject = "Inbox"

// Rules is the declarative mapping configuration for one sync run.
type Rules struct {
	// Projects maps a remote dot-delimited project path to a local project
	// name. Matching is longest-prefix on dot segments, so a rule for
	// "Company.SubProject" wins over one for "Company". An empty value
	// unsets the project.
	Projects map[string]string

	// Tags maps a remote label to a local tag. Unmapped labels pass
	// through unchanged; an empty value removes the label.
	Tags map[string]string

	// ProjectSync holds per-project enable flags keyed by local project
	// name. A project is disabled only when explicitly set to false.
	ProjectSync map[string]bool

	// DefaultProject overrides the fallback project for tasks whose
	// remote project has no matching rule.
	DefaultProject string
}

// Enabled reports whether tasks in the given local project should sync.
func (r Rules) Enabled(localProject string) bool {
	enabled, ok := r.ProjectSync[localProject]
	return !ok || enabled
}

func (r Rules) fallbackProject() string {
	if r.DefaultProject != "" {
		return r.DefaultProject
	}
	// The default itself is subject to the project map, matching the
	// original rc-file behavior.
	if mapped, ok := r.Projects[DefaultProject]; ok {
		return mapped
	}
	return DefaultProject
}

// Fields is the local-store shape of one translated task.
type Fields struct {
	Description string
	Project     string
	Tags        []string
	Priority    string // H, M, L or empty
	Due         time.Time
	Entry       time.Time
	Recur       string
	Completed   bool
}

// MappingError reports a remote field that could not be translated.
type MappingError struct {
	Field string
	Value string
	Err   error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("cannot map %s value %q: %v", e.Field, e.Value, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// twPriorities maps Todoist priorities (1 none .. 4 urgent) onto
// Taskwarrior's L/M/H scale. Index 0 is unused.
var twPriorities = [5]string{"", "", "L", "M", "H"}

// Priority translates a Todoist priority ordinal, clamping out-of-range
// values to the nearest valid one.
func Priority(p int) string {
	if p < 1 {
		p = 1
	}
	if p > 4 {
		p = 4
	}
	return twPriorities[p]
}

// Translate maps a remote task into local-store fields. projectPath is the
// task's resolved dot-delimited remote project path. A due date that cannot
// be parsed yields a MappingError; an unsupported recurrence string does not
// fail the task, the recurrence is simply dropped.
func Translate(t todoist.Task, projectPath string, rules Rules) (Fields, error) {
	f := Fields{
		Description: t.Content,
		Project:     MapProject(projectPath, rules),
		Tags:        mapTags(t.Labels, rules),
		Priority:    Priority(t.Priority),
		Completed:   t.Completed,
	}

	if t.Due != nil {
		due, err := parseDue(t.Due)
		if err != nil {
			return Fields{}, &MappingError{Field: "due", Value: t.Due.Date, Err: err}
		}
		f.Due = due

		if t.Due.IsRecurring {
			recur, err := ParseRecur(t.Due.String)
			if err == nil {
				f.Recur = recur
			}
		}
	}

	if t.CreatedAt != "" {
		entry, err := time.Parse(time.RFC3339, t.CreatedAt)
		if err != nil {
			return Fields{}, &MappingError{Field: "created_at", Value: t.CreatedAt, Err: err}
		}
		f.Entry = entry.UTC()
	}

	return f, nil
}

// MapProject resolves a remote project path to a local project name using
// longest-prefix matching over dot segments.
func MapProject(projectPath string, rules Rules) string {
	if projectPath == "" {
		return rules.fallbackProject()
	}

	segments := strings.Split(projectPath, ".")
	for i := len(segments); i > 0; i-- {
		prefix := strings.Join(segments[:i], ".")
		if mapped, ok := rules.Projects[prefix]; ok {
			return mapped
		}
	}
	return rules.fallbackProject()
}

func mapTags(labels []string, rules Rules) []string {
	if len(labels) == 0 {
		return nil
	}
	tags := make([]string, 0, len(labels))
	for _, label := range labels {
		mapped, ok := rules.Tags[label]
		if !ok {
			tags = append(tags, label)
			continue
		}
		if mapped != "" {
			tags = append(tags, mapped)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func parseDue(due *todoist.Due) (time.Time, error) {
	if due.Datetime != "" {
		t, err := time.Parse(time.RFC3339, due.Datetime)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
	if due.Date != "" {
		t, err := time.Parse("2006-01-02", due.Date)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
	return time.Time{}, nil
}
