package mapper

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/titwsync/pkg/todoist"
)

func testRules() Rules {
	return Rules{
		Projects: map[string]string{
			"Company":            "work",
			"Company.SubProject": "work.subproject",
		},
		Tags: map[string]string{
			"books": "reading",
			"waf":   "",
		},
		ProjectSync: map[string]bool{
			"secret": false,
		},
	}
}

func TestTranslate(t *testing.T) {
	task := todoist.Task{
		ID:       "9001",
		Content:  "Read the style guide",
		Priority: 2,
		Labels:   []string{"books"},
	}

	fields, err := Translate(task, "Company.SubProject", testRules())
	require.NoError(t, err)

	assert.Equal(t, "Read the style guide", fields.Description)
	assert.Equal(t, "work.subproject", fields.Project)
	assert.Equal(t, []string{"reading"}, fields.Tags)
	assert.Equal(t, "L", fields.Priority)
	assert.False(t, fields.Completed)
}

func TestTranslateIsDeterministic(t *testing.T) {
	task := todoist.Task{
		ID:       "9001",
		Content:  "Read the style guide",
		Priority: 3,
		Labels:   []string{"books", "loan"},
		Due:      &todoist.Due{Date: "2024-06-01"},
	}

	first, err := Translate(task, "Company.SubProject", testRules())
	require.NoError(t, err)
	second, err := Translate(task, "Company.SubProject", testRules())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMapProjectLongestPrefixWins(t *testing.T) {
	rules := testRules()

	// Company.SubProject.X must use the Company.SubProject rule, not Company.
	assert.Equal(t, "work.subproject", MapProject("Company.SubProject.X", rules))
	assert.Equal(t, "work", MapProject("Company.Other", rules))
	assert.Equal(t, "work", MapProject("Company", rules))
}

func TestMapProjectPrefixIsSegmentAware(t *testing.T) {
	rules := testRules()

	// "CompanyX" shares a string prefix with the "Company" rule but is a
	// different project.
	assert.Equal(t, DefaultProject, MapProject("CompanyX", rules))
}

func TestMapProjectFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultProject, MapProject("Unmapped", testRules()))

	rules := testRules()
	rules.DefaultProject = "inbox"
	assert.Equal(t, "inbox", MapProject("Unmapped", rules))

	// The fallback itself goes through the project map.
	rules = testRules()
	rules.Projects["Inbox"] = "someday"
	assert.Equal(t, "someday", MapProject("Unmapped", rules))
}

func TestRulesEnabled(t *testing.T) {
	rules := testRules()

	assert.False(t, rules.Enabled("secret"))
	assert.True(t, rules.Enabled("work"))
	// Absent projects are enabled; only an explicit false disables.
	assert.True(t, rules.Enabled("never-configured"))
}

func TestTranslateTagRemoval(t *testing.T) {
	task := todoist.Task{ID: "1", Content: "x", Priority: 1, Labels: []string{"waf", "keep"}}

	fields, err := Translate(task, "", testRules())
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, fields.Tags)
}

func TestPriorityClamps(t *testing.T) {
	assert.Equal(t, "", Priority(0))
	assert.Equal(t, "", Priority(1))
	assert.Equal(t, "L", Priority(2))
	assert.Equal(t, "M", Priority(3))
	assert.Equal(t, "H", Priority(4))
	assert.Equal(t, "H", Priority(99))
}

func TestTranslateDueDates(t *testing.T) {
	rules := testRules()

	withTime := todoist.Task{ID: "1", Content: "x", Priority: 1,
		Due: &todoist.Due{Datetime: "2024-06-01T12:00:00Z", Date: "2024-06-01"}}
	fields, err := Translate(withTime, "", rules)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), fields.Due)

	dateOnly := todoist.Task{ID: "2", Content: "x", Priority: 1,
		Due: &todoist.Due{Date: "2024-06-01"}}
	fields, err = Translate(dateOnly, "", rules)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), fields.Due)
}

func TestTranslateMalformedDueIsMappingError(t *testing.T) {
	task := todoist.Task{ID: "1", Content: "x", Priority: 1,
		Due: &todoist.Due{Date: "not-a-date"}}

	_, err := Translate(task, "", testRules())
	require.Error(t, err)

	var mapErr *MappingError
	require.True(t, errors.As(err, &mapErr))
	assert.Equal(t, "due", mapErr.Field)
}

func TestTranslateRecurrence(t *testing.T) {
	task := todoist.Task{ID: "1", Content: "x", Priority: 1,
		Due: &todoist.Due{Date: "2024-06-01", String: "every other week", IsRecurring: true}}

	fields, err := Translate(task, "", testRules())
	require.NoError(t, err)
	assert.Equal(t, "2 weeks", fields.Recur)
}

func TestTranslateUnsupportedRecurrenceDoesNotFail(t *testing.T) {
	task := todoist.Task{ID: "1", Content: "x", Priority: 1,
		Due: &todoist.Due{Date: "2024-06-01", String: "whenever I feel like it", IsRecurring: true}}

	fields, err := Translate(task, "", testRules())
	require.NoError(t, err)
	assert.Empty(t, fields.Recur)
}
