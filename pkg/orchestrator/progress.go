package orchestrator

import (
	"slices"
	"sync"

	"github.com/dtnitsch/llm-doc-chunker/models"
)

// runState is the shared mutable state of one FetchAll call: the progress counters
// and the accumulated results. Workers write it only through start and finish.
type runState struct {
	id         string
	onProgress func(models.FetchRunProgress)

	mu       sync.Mutex
	progress models.FetchRunProgress
	docs     []models.FetchedDocument
}

func newRunState(id string, total int, onProgress func(models.FetchRunProgress)) *runState {
	return &runState{
		id:         id,
		onProgress: onProgress,
		progress:   models.FetchRunProgress{RunID: id, Total: total},
		docs:       make([]models.FetchedDocument, 0, total),
	}
}

func (r *runState) start(locator string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.CurrentLocator = locator
	r.publishLocked()
}

func (r *runState) finish(doc models.FetchedDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	r.progress.Completed++
	if !doc.OK() {
		r.progress.Errors = append(r.progress.Errors, doc.Reference.Locator+": "+doc.Failure)
	}
	r.publishLocked()
}

func (r *runState) publishLocked() {
	if r.onProgress != nil {
		r.onProgress(r.snapshotLocked())
	}
}

func (r *runState) snapshot() models.FetchRunProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *runState) snapshotLocked() models.FetchRunProgress {
	p := r.progress
	p.Errors = slices.Clone(r.progress.Errors)
	return p
}

func (r *runState) results() []models.FetchedDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.docs)
}
