package todoist

import "strings"

// Task is a task as returned by the Todoist REST API.
type Task struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	ProjectID string   `json:"project_id"`
	Labels    []string `json:"labels,omitempty"`
	Priority  int      `json:"priority"` // 1 (none) .. 4 (urgent)
	Due       *Due     `json:"due,omitempty"`
	Completed bool     `json:"is_completed"`
	CreatedAt string   `json:"created_at,omitempty"` // RFC3339
}

// Due is the due object attached to a Todoist task. Datetime is set when the
// due date carries a time of day, otherwise only Date is set.
type Due struct {
	Date        string `json:"date"`               // 2006-01-02
	Datetime    string `json:"datetime,omitempty"` // RFC3339
	String      string `json:"string,omitempty"`   // natural language, e.g. "every other week"
	IsRecurring bool   `json:"is_recurring"`
}

// Project is a Todoist project. Projects form a hierarchy via ParentID.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// ProjectPaths resolves every project to its full dot-delimited path, walking
// parent links to the root. Example: a project "Open Source" under
// "Programming" resolves to "Programming.Open Source".
func ProjectPaths(projects []Project) map[string]string {
	byID := make(map[string]Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	paths := make(map[string]string, len(projects))
	for _, p := range projects {
		segments := []string{p.Name}
		seen := map[string]bool{p.ID: true}
		for parent := p.ParentID; parent != ""; {
			pp, ok := byID[parent]
			if !ok || seen[pp.ID] {
				break
			}
			seen[pp.ID] = true
			segments = append([]string{pp.Name}, segments...)
			parent = pp.ParentID
		}
		paths[p.ID] = strings.Join(segments, ".")
	}
	return paths
}
