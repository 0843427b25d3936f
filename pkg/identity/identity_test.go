package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/titwsync/pkg/mapper"
	"github.com/harrisonrobin/titwsync/pkg/taskwarrior"
)

func syncedTask(uuid, remoteID, hash string) taskwarrior.Task {
	return taskwarrior.Task{
		UUID:   uuid,
		Status: taskwarrior.PENDING,
		Annotations: []taskwarrior.Annotation{
			{Description: "an ordinary note"},
			{Description: FormatAnnotation(remoteID, hash)},
		},
	}
}

func TestAnnotationRoundTrip(t *testing.T) {
	formatted := FormatAnnotation("9001", "deadbeef")
	assert.Equal(t, "remoteId=9001;hash=deadbeef", formatted)

	id, hash, ok := ParseAnnotation(formatted)
	require.True(t, ok)
	assert.Equal(t, "9001", id)
	assert.Equal(t, "deadbeef", hash)
}

func TestParseAnnotationRejectsOrdinaryNotes(t *testing.T) {
	for _, s := range []string{
		"pick up milk",
		"remoteId=",            // missing id and hash
		"remoteId=9001",        // missing hash marker
		"hash=abc;remoteId=x",  // wrong order
		"RemoteId=9001;hash=a", // case matters, must round-trip exactly
	} {
		_, _, ok := ParseAnnotation(s)
		assert.False(t, ok, "input %q", s)
	}
}

func TestSyncState(t *testing.T) {
	task := syncedTask("uuid-1", "9001", "cafe")
	id, hash, ok := SyncState(&task)
	require.True(t, ok)
	assert.Equal(t, "9001", id)
	assert.Equal(t, "cafe", hash)

	plain := taskwarrior.Task{UUID: "uuid-2"}
	_, _, ok = SyncState(&plain)
	assert.False(t, ok)
}

func TestFind(t *testing.T) {
	tasks := []taskwarrior.Task{
		syncedTask("uuid-1", "9001", "a"),
		syncedTask("uuid-2", "9002", "b"),
		{UUID: "uuid-3"},
	}

	match, err := Find(tasks, "9002")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "uuid-2", match.UUID)

	match, err = Find(tasks, "9999")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFindConflict(t *testing.T) {
	tasks := []taskwarrior.Task{
		syncedTask("uuid-1", "9001", "a"),
		syncedTask("uuid-2", "9001", "b"),
	}

	_, err := Find(tasks, "9001")
	require.Error(t, err)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "9001", conflict.RemoteID)
	assert.ElementsMatch(t, []string{"uuid-1", "uuid-2"}, conflict.UUIDs)
}

func TestHashIgnoresTagOrder(t *testing.T) {
	due := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := mapper.Fields{Description: "x", Project: "work", Tags: []string{"one", "two"}, Priority: "H", Due: due}
	b := mapper.Fields{Description: "x", Project: "work", Tags: []string{"two", "one"}, Priority: "H", Due: due}

	assert.Equal(t, Hash(a), Hash(b))
}

func TestHashIgnoresTimezoneRendering(t *testing.T) {
	utc := mapper.Fields{Description: "x", Due: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	offset := mapper.Fields{Description: "x", Due: time.Date(2024, 6, 1, 14, 0, 0, 0, time.FixedZone("CEST", 2*3600))}

	assert.Equal(t, Hash(utc), Hash(offset))
}

func TestHashDetectsFieldChanges(t *testing.T) {
	base := mapper.Fields{Description: "x", Project: "work", Tags: []string{"a"}, Priority: "M"}

	changedDesc := base
	changedDesc.Description = "y"
	assert.NotEqual(t, Hash(base), Hash(changedDesc))

	changedProject := base
	changedProject.Project = "home"
	assert.NotEqual(t, Hash(base), Hash(changedProject))

	changedTags := base
	changedTags.Tags = []string{"a", "b"}
	assert.NotEqual(t, Hash(base), Hash(changedTags))

	changedDue := base
	changedDue.Due = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.NotEqual(t, Hash(base), Hash(changedDue))
}

// Field boundaries must be part of the encoding, not just concatenation.
func TestHashFieldBoundaries(t *testing.T) {
	a := mapper.Fields{Description: "ab", Project: "c"}
	b := mapper.Fields{Description: "a", Project: "bc"}
	assert.NotEqual(t, Hash(a), Hash(b))
}
