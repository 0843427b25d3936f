// Package identity tracks which local tasks correspond to which remote
// tasks. The durable link is an annotation on the local task of the form
// "remoteId=<id>;hash=<hash>"; the hash is a fingerprint of the last-synced
// field values so an unchanged task can be recognized without a field diff.
package identity

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"github.com/harrisonrobin/titwsync/pkg/mapper"
	"github.com/harrisonrobin/titwsync/pkg/taskwarrior"
)

const annotationPrefix = taskwarrior.SyncAnnotationPrefix

// ConflictError means two local tasks claim the same remote identifier.
// Processing for that remote task must stop; other tasks are unaffected.
type ConflictError struct {
	RemoteID string
	UUIDs    []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("remote task %s is claimed by multiple local tasks: %s",
		e.RemoteID, strings.Join(e.UUIDs, ", "))
}

// FormatAnnotation renders the sync state annotation. ParseAnnotation must
// read back exactly what this produces.
func FormatAnnotation(remoteID, hash string) string {
	return fmt.Sprintf("%s%s;hash=%s", annotationPrefix, remoteID, hash)
}

// ParseAnnotation extracts the remote ID and content hash from a sync state
// annotation. ok is false for ordinary annotations.
func ParseAnnotation(s string) (remoteID, hash string, ok bool) {
	if !strings.HasPrefix(s, annotationPrefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(s, annotationPrefix)
	id, hashPart, found := strings.Cut(rest, ";hash=")
	if !found || id == "" {
		return "", "", false
	}
	return id, hashPart, true
}

// SyncState returns the remote ID and stored hash from a task's annotations.
func SyncState(t *taskwarrior.Task) (remoteID, hash string, ok bool) {
	for _, a := range t.Annotations {
		if id, h, found := ParseAnnotation(a.Description); found {
			return id, h, true
		}
	}
	return "", "", false
}

// Find returns the local task holding an annotation for remoteID, or nil when
// the remote task has never been synced. A ConflictError is returned when
// more than one task claims the identifier.
func Find(localTasks []taskwarrior.Task, remoteID string) (*taskwarrior.Task, error) {
	var match *taskwarrior.Task
	var claimants []string
	for i := range localTasks {
		id, _, ok := SyncState(&localTasks[i])
		if !ok || id != remoteID {
			continue
		}
		claimants = append(claimants, localTasks[i].UUID)
		if match == nil {
			match = &localTasks[i]
		}
	}
	if len(claimants) > 1 {
		return nil, &ConflictError{RemoteID: remoteID, UUIDs: claimants}
	}
	return match, nil
}

// Hash fingerprints the mapped field values. The encoding is canonical:
// tags are sorted, times rendered in UTC, so field order and timezone cannot
// perturb the result.
func Hash(f mapper.Fields) string {
	tags := append([]string(nil), f.Tags...)
	sort.Strings(tags)

	h := fnv.New64a()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	write(f.Description)
	write(f.Project)
	for _, tag := range tags {
		write(tag)
	}
	write(f.Priority)
	if !f.Due.IsZero() {
		write(f.Due.UTC().Format("20060102T150405Z"))
	} else {
		write("")
	}
	write(f.Recur)

	return strconv.FormatUint(h.Sum64(), 16)
}
