// Package reconcile makes the remote folder match the set of filenames
// observed during the current run.
package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/cirslinger/pdfmirror/internal/mirror"
)

// Reconciler deletes remote files whose names were not confirmed this run.
// It performs deletion only: uploads have already happened by the time it
// runs, and it never re-verifies them.
type Reconciler struct {
	store  mirror.Store
	logger *zap.Logger
}

// New builds a Reconciler.
func New(store mirror.Store, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, logger: logger}
}

// Result counts the outcome of one reconciliation pass.
type Result struct {
	Deleted      int
	DeleteFailed int
}

// Reconcile lists the folder fresh and deletes every entry whose name is
// absent from expected. A rejected deletion is logged and skipped; the pass
// finishes regardless. Running twice with the same expected set is a no-op
// the second time.
func (r *Reconciler) Reconcile(ctx context.Context, folderID string, expected *mirror.ExpectedSet) (Result, error) {
	files, err := r.store.ListFolder(ctx, folderID)
	if err != nil {
		// Listing failure means nothing can be deleted safely.
		return Result{}, &mirror.FatalError{Op: "list remote folder", Err: err}
	}

	var res Result
	for _, f := range files {
		if expected.Contains(f.Name) {
			continue
		}
		if err := r.store.Delete(ctx, f.ID); err != nil {
			res.DeleteFailed++
			delErr := &mirror.DeleteError{FileID: f.ID, Name: f.Name, Err: err}
			r.logger.Warn("remote deletion failed", zap.Error(delErr))
			continue
		}
		res.Deleted++
		r.logger.Info("deleted outdated remote file",
			zap.String("name", f.Name),
			zap.String("file_id", f.ID),
		)
	}
	return res, nil
}
