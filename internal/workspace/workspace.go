package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/toyz/mvpgen/internal/errors"
)

// StateDir is the per-project directory holding the lock file
const StateDir = ".mvpgen"

const lockName = "lock"

// Workspace owns the single write path into a project tree. Every mutation
// goes through a Tx; at most one Tx is open per project at a time.
type Workspace struct {
	root       string
	historyDir string
	logger     *zap.Logger
	mu         sync.Mutex
	locked     bool
}

// New creates a workspace rooted at root, keeping journals in historyDir
func New(root, historyDir string, logger *zap.Logger) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{
		root:       filepath.Clean(root),
		historyDir: historyDir,
		logger:     logger.Named("workspace"),
	}
}

// Root returns the project root
func (w *Workspace) Root() string {
	return w.root
}

func (w *Workspace) lockPath() string {
	return filepath.Join(w.root, StateDir, lockName)
}

// acquire takes the in-process mutex and the lock file. Without
// createState a missing state directory is left absent and only the mutex is
// held.
func (w *Workspace) acquire(createState bool) error {
	w.mu.Lock()

	path := w.lockPath()
	dir := filepath.Dir(path)
	if !createState {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		w.mu.Unlock()
		return errors.WrapFileSystemError("create state directory", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		w.mu.Unlock()
		if os.IsExist(err) {
			return errors.New(errors.TransactionErrorCode, "another mvpgen process holds the project lock").
				WithContext("lock", path).
				WithSuggestion(fmt.Sprintf("remove %s if no other mvpgen process is running", path))
		}
		return errors.WrapFileSystemError("create lock", path, err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()
	w.locked = true
	return nil
}

func (w *Workspace) release() {
	if w.locked {
		if err := os.Remove(w.lockPath()); err != nil && !os.IsNotExist(err) {
			w.logger.Warn("failed to remove lock", zap.String("path", w.lockPath()), zap.Error(err))
		}
		w.locked = false
	}
	w.mu.Unlock()
}

func (w *Workspace) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func (w *Workspace) abs(path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(w.root, path)
}

// Begin opens a transaction, taking the project lock
func (w *Workspace) Begin(description string) (*Tx, error) {
	return w.begin(description, false)
}

// BeginDryRun opens a transaction that can only be inspected and rolled
// back. It never creates the state directory, so a dry run leaves the
// project tree exactly as it was.
func (w *Workspace) BeginDryRun(description string) (*Tx, error) {
	return w.begin(description, true)
}

func (w *Workspace) begin(description string, dryRun bool) (*Tx, error) {
	if err := w.acquire(!dryRun); err != nil {
		return nil, err
	}
	tx := newTx(w, description)
	tx.dryRun = dryRun
	w.logger.Debug("transaction started",
		zap.String("id", tx.id),
		zap.String("description", description),
		zap.Bool("dry_run", dryRun))
	return tx, nil
}

// RunInTransaction runs fn inside a transaction, committing on success and
// rolling back when fn fails.
func (w *Workspace) RunInTransaction(ctx context.Context, description string, fn func(tx *Tx) error) (*Journal, error) {
	tx, err := w.Begin(description)
	if err != nil {
		return nil, err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return nil, err
	}
	return tx.Commit(ctx)
}

// History returns committed transactions, newest first
func (w *Workspace) History() ([]*Journal, error) {
	return listJournals(w.historyDir)
}

// Conflict is a path whose content changed after the transaction wrote it
type Conflict struct {
	Path   string
	Reason string
}

// Undo reverts the transaction with the given id, or the latest one not yet
// undone when id is empty. Paths edited since the commit block the undo
// unless force is set.
func (w *Workspace) Undo(id string, force bool) (*Journal, error) {
	if err := w.acquire(true); err != nil {
		return nil, err
	}
	defer w.release()

	j, err := w.findJournal(id)
	if err != nil {
		return nil, err
	}

	conflicts := w.conflicts(j)
	if len(conflicts) > 0 && !force {
		paths := make([]string, len(conflicts))
		for i, c := range conflicts {
			paths[i] = c.Path + " (" + c.Reason + ")"
		}
		return nil, errors.Newf(errors.TransactionErrorCode, "cannot undo %s: %d path(s) changed since commit", j.ID, len(conflicts)).
			WithContext("transaction", j.ID).
			WithContext("paths", paths).
			WithSuggestion("inspect the listed files, then pass --force to revert anyway")
	}

	failures := errors.NewMultipleErrors()
	for i := len(j.Changes) - 1; i >= 0; i-- {
		change := j.Changes[i]
		path := w.abs(change.Path)
		switch change.Action {
		case ActionCreate:
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				failures.Add(errors.WrapFileSystemError("remove", path, err))
			}
		case ActionModify:
			if err := os.WriteFile(path, []byte(change.Previous), 0644); err != nil {
				failures.Add(errors.WrapFileSystemError("restore", path, err))
			}
		case ActionMkdir:
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				w.logger.Warn("directory kept; not empty", zap.String("path", path), zap.Error(err))
			}
		}
	}
	if err := failures.ErrorOrNil(); err != nil {
		return nil, errors.WrapTransactionError(j.ID, "undo", err)
	}

	now := time.Now().UTC()
	j.UndoneAt = &now
	if err := writeJournal(w.historyDir, j); err != nil {
		return nil, err
	}
	w.logger.Info("transaction undone", zap.String("id", j.ID), zap.Int("changes", len(j.Changes)))
	return j, nil
}

func (w *Workspace) findJournal(id string) (*Journal, error) {
	if id != "" {
		j, err := readJournal(journalPath(w.historyDir, id))
		if err != nil {
			return nil, errors.Wrapf(errors.TransactionErrorCode, err, "unknown transaction %s", id)
		}
		if j.Undone() {
			return nil, errors.Newf(errors.TransactionErrorCode, "transaction %s was already undone", id)
		}
		return j, nil
	}

	journals, err := listJournals(w.historyDir)
	if err != nil {
		return nil, err
	}
	for _, j := range journals {
		if !j.Undone() {
			return j, nil
		}
	}
	return nil, errors.New(errors.TransactionErrorCode, "nothing to undo")
}

func (w *Workspace) conflicts(j *Journal) []Conflict {
	var conflicts []Conflict
	for _, change := range j.Changes {
		if change.Action == ActionMkdir {
			continue
		}
		current, err := os.ReadFile(w.abs(change.Path))
		switch {
		case err != nil:
			conflicts = append(conflicts, Conflict{Path: change.Path, Reason: "missing"})
		case digest(current) != change.SHA256:
			conflicts = append(conflicts, Conflict{Path: change.Path, Reason: "modified"})
		}
	}
	return conflicts
}
