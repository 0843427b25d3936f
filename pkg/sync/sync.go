// Package sync reconciles one snapshot of the remote store against one
// snapshot of the local store. A pass classifies every remote task as
// new, changed, completed, or in sync, issues the minimal set of writes to
// converge both stores, then propagates local completions back to the
// remote. Re-running a pass with no external changes performs zero writes.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/harrisonrobin/titwsync/pkg/identity"
	"github.com/harrisonrobin/titwsync/pkg/log"
	"github.com/harrisonrobin/titwsync/pkg/mapper"
	"github.com/harrisonrobin/titwsync/pkg/taskwarrior"
	"github.com/harrisonrobin/titwsync/pkg/todoist"
)

// RemoteStore is the slice of the Todoist API the reconciler consumes.
type RemoteStore interface {
	ListTasks(ctx context.Context) ([]todoist.Task, error)
	ListProjects(ctx context.Context) ([]todoist.Project, error)
	CloseTask(ctx context.Context, id string) error
}

// LocalStore is the slice of the Taskwarrior client the reconciler consumes.
type LocalStore interface {
	ListTasks(ctx context.Context) ([]taskwarrior.Task, error)
	CreateTask(ctx context.Context, t taskwarrior.Task) (taskwarrior.Task, error)
	UpdateTask(ctx context.Context, t taskwarrior.Task) error
	CompleteTask(ctx context.Context, taskUUID string) error
	SetAnnotation(ctx context.Context, taskUUID, annotation string) error
}

// OrphanPolicy decides what happens to a local task whose remote counterpart
// disappeared upstream. The reconciler never deletes either way.
type OrphanPolicy string

const (
	OrphanIgnore   OrphanPolicy = "ignore"
	OrphanComplete OrphanPolicy = "complete"
)

type Reconciler struct {
	remote RemoteStore
	local  LocalStore
	rules  mapper.Rules
	index  *identity.Index

	dryRun        bool
	createOnly    bool
	noAnnotations bool
	orphans       OrphanPolicy
}

type Option func(*Reconciler)

// WithDryRun records every decision without writing to either store.
func WithDryRun() Option {
	return func(r *Reconciler) { r.dryRun = true }
}

// WithCreateOnly restricts the pass to creating unseen tasks locally; used
// by the migrate command. Updates and completion propagation are skipped.
func WithCreateOnly() Option {
	return func(r *Reconciler) { r.createOnly = true }
}

// WithoutSyncAnnotations imports tasks without the remoteId annotation.
// Tasks created this way are invisible to later passes, which will treat
// their remote counterparts as unseen again; only useful for a one-off
// export that will never sync afterwards.
func WithoutSyncAnnotations() Option {
	return func(r *Reconciler) { r.noAnnotations = true }
}

// WithIndex attaches the optional remote-ID lookup index. Lookups try the
// index first and fall back to the annotation scan, which stays
// authoritative; stale index entries are repaired from the scan.
func WithIndex(idx *identity.Index) Option {
	return func(r *Reconciler) { r.index = idx }
}

// WithOrphanPolicy sets the handling for locally-known tasks that no longer
// exist remotely.
func WithOrphanPolicy(p OrphanPolicy) Option {
	return func(r *Reconciler) { r.orphans = p }
}

func New(remote RemoteStore, local LocalStore, rules mapper.Rules, opts ...Option) *Reconciler {
	r := &Reconciler{
		remote:  remote,
		local:   local,
		rules:   rules,
		orphans: OrphanIgnore,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one sync pass. A returned error means the pass could not run
// at all (a snapshot fetch failed); task-level failures are collected in the
// summary instead.
func (r *Reconciler) Run(ctx context.Context) (*Summary, error) {
	remoteTasks, err := r.remote.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching remote tasks: %w", err)
	}
	projects, err := r.remote.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching remote projects: %w", err)
	}
	localTasks, err := r.local.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching local tasks: %w", err)
	}

	paths := todoist.ProjectPaths(projects)
	summary := &Summary{}

	localByUUID := make(map[string]*taskwarrior.Task, len(localTasks))
	for i := range localTasks {
		localByUUID[localTasks[i].UUID] = &localTasks[i]
	}

	remoteByID := make(map[string]*todoist.Task, len(remoteTasks))
	for i := range remoteTasks {
		rt := &remoteTasks[i]
		remoteByID[rt.ID] = rt
		r.reconcileRemote(ctx, rt, paths[rt.ProjectID], localTasks, localByUUID, summary)
	}

	if !r.createOnly {
		r.propagateLocal(ctx, localTasks, remoteByID, summary)
	}

	if r.index != nil && !r.dryRun {
		if err := r.index.Save(); err != nil {
			summary.Errors = append(summary.Errors, fmt.Errorf("saving identity index: %w", err))
		}
	}
	return summary, nil
}

// reconcileRemote runs the per-remote-task state machine: disabled project,
// unseen, completed remotely, changed, or already in sync.
func (r *Reconciler) reconcileRemote(ctx context.Context, rt *todoist.Task, projectPath string, localTasks []taskwarrior.Task, localByUUID map[string]*taskwarrior.Task, summary *Summary) {
	fields, err := mapper.Translate(*rt, projectPath, r.rules)
	if err != nil {
		log.Error("Skipping '%s': %v", rt.Content, err)
		summary.fail(rt.ID, err)
		return
	}

	if !r.rules.Enabled(fields.Project) {
		log.Warn("Ignoring '%s' (%s)", fields.Description, fields.Project)
		summary.record(Action{Kind: Skip, RemoteID: rt.ID, Reason: "project disabled"})
		return
	}

	if rt.Due != nil && rt.Due.IsRecurring && fields.Recur == "" {
		log.Warn("Unsupported recurrence '%s' on '%s'; syncing without recur",
			rt.Due.String, fields.Description)
	}

	match, err := r.lookup(rt.ID, localTasks, localByUUID)
	if err != nil {
		log.Error("Data integrity: %v", err)
		summary.fail(rt.ID, err)
		return
	}

	if match == nil {
		r.createLocal(ctx, rt, fields, summary)
		return
	}

	if r.createOnly {
		summary.record(Action{Kind: Skip, RemoteID: rt.ID, LocalUUID: match.UUID, Reason: "already imported"})
		return
	}

	if rt.Completed && !match.Completed() {
		log.Important("Completing '%s' locally", fields.Description)
		summary.record(Action{Kind: CompleteLocal, RemoteID: rt.ID, LocalUUID: match.UUID, Reason: "completed remotely"})
		if r.dryRun {
			return
		}
		if err := r.local.CompleteTask(ctx, match.UUID); err != nil {
			summary.fail(rt.ID, err)
		}
		return
	}

	_, storedHash, _ := identity.SyncState(match)
	newHash := identity.Hash(fields)
	if newHash != storedHash {
		log.Important("Updating '%s' (%s)", fields.Description, fields.Project)
		summary.record(Action{Kind: UpdateLocal, RemoteID: rt.ID, LocalUUID: match.UUID, Reason: "fields changed"})
		if r.dryRun {
			return
		}
		if err := r.local.UpdateTask(ctx, applyFields(*match, fields)); err != nil {
			summary.fail(rt.ID, err)
			return
		}
		if err := r.local.SetAnnotation(ctx, match.UUID, identity.FormatAnnotation(rt.ID, newHash)); err != nil {
			summary.fail(rt.ID, err)
		}
		return
	}

	summary.record(Action{Kind: Skip, RemoteID: rt.ID, LocalUUID: match.UUID, Reason: "in sync"})
}

// lookup resolves the local counterpart of a remote task. The index, when
// present, short-circuits straight to the candidate UUID; the hit is verified
// against the task's own annotation before trusting it. On a miss or a stale
// entry the authoritative annotation scan runs and the index is repaired
// from its result.
func (r *Reconciler) lookup(remoteID string, localTasks []taskwarrior.Task, localByUUID map[string]*taskwarrior.Task) (*taskwarrior.Task, error) {
	if r.index != nil {
		if taskUUID := r.index.Get(remoteID); taskUUID != "" {
			if t, ok := localByUUID[taskUUID]; ok {
				if id, _, found := identity.SyncState(t); found && id == remoteID {
					return t, nil
				}
			}
			r.index.Remove(remoteID)
		}
	}

	match, err := identity.Find(localTasks, remoteID)
	if err != nil {
		return nil, err
	}
	if match != nil && r.index != nil {
		r.index.Set(remoteID, match.UUID)
	}
	return match, nil
}

func (r *Reconciler) createLocal(ctx context.Context, rt *todoist.Task, fields mapper.Fields, summary *Summary) {
	log.Important("Adding '%s' (%s)", fields.Description, fields.Project)
	summary.record(Action{Kind: CreateLocal, RemoteID: rt.ID, Reason: "unseen remote task"})
	if r.dryRun {
		return
	}

	t := applyFields(taskwarrior.Task{}, fields)
	if !fields.Entry.IsZero() {
		t.Entry = &taskwarrior.CustomTime{Time: fields.Entry}
	}
	if !r.noAnnotations {
		now := taskwarrior.CustomTime{Time: time.Now().UTC()}
		t.Annotations = append(t.Annotations, taskwarrior.Annotation{
			Description: identity.FormatAnnotation(rt.ID, identity.Hash(fields)),
			Entry:       &now,
		})
	}

	created, err := r.local.CreateTask(ctx, t)
	if err != nil {
		summary.fail(rt.ID, err)
		return
	}
	if !r.noAnnotations && r.index != nil {
		r.index.Set(rt.ID, created.UUID)
	}
}

// propagateLocal pushes completions from the local store back to the remote
// and applies the orphan policy for tasks deleted upstream. It runs after
// the remote-to-local phase so a task completed on both sides in the same
// pass yields exactly one terminal action.
func (r *Reconciler) propagateLocal(ctx context.Context, localTasks []taskwarrior.Task, remoteByID map[string]*todoist.Task, summary *Summary) {
	for i := range localTasks {
		lt := &localTasks[i]
		remoteID, _, ok := identity.SyncState(lt)
		if !ok {
			continue
		}

		rt, exists := remoteByID[remoteID]
		if !exists {
			r.handleOrphan(ctx, lt, remoteID, summary)
			continue
		}

		if lt.Completed() && !rt.Completed {
			log.Important("Completing '%s' remotely", lt.Description)
			summary.record(Action{Kind: CompleteRemote, RemoteID: remoteID, LocalUUID: lt.UUID, Reason: "completed locally"})
			if r.dryRun {
				continue
			}
			if err := r.remote.CloseTask(ctx, remoteID); err != nil {
				summary.fail(remoteID, err)
			}
		}
	}
}

func (r *Reconciler) handleOrphan(ctx context.Context, lt *taskwarrior.Task, remoteID string, summary *Summary) {
	if r.orphans == OrphanComplete && !lt.Completed() {
		log.Warn("Remote task %s is gone; completing '%s' locally", remoteID, lt.Description)
		summary.record(Action{Kind: CompleteLocal, RemoteID: remoteID, LocalUUID: lt.UUID, Reason: "deleted upstream"})
		if !r.dryRun {
			if err := r.local.CompleteTask(ctx, lt.UUID); err != nil {
				summary.fail(remoteID, err)
				return
			}
		}
	}
	if r.index != nil && !r.dryRun {
		r.index.Remove(remoteID)
	}
}

// applyFields copies mapped field values onto a task, leaving identity and
// bookkeeping fields (uuid, entry, annotations) untouched.
func applyFields(t taskwarrior.Task, f mapper.Fields) taskwarrior.Task {
	t.Description = f.Description
	t.Project = f.Project
	t.Tags = append([]string(nil), f.Tags...)
	t.Priority = f.Priority
	t.Recur = f.Recur
	if f.Due.IsZero() {
		t.Due = nil
	} else {
		t.Due = &taskwarrior.CustomTime{Time: f.Due}
	}
	if f.Completed {
		t.Status = taskwarrior.COMPLETED
	} else if t.Status == "" {
		t.Status = taskwarrior.PENDING
	}
	return t
}
