package workspace

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toyz/mvpgen/internal/errors"
)

// Tx stages directory and file changes in memory. Reads observe staged
// state; nothing touches disk until Commit.
type Tx struct {
	ws          *Workspace
	id          string
	description string

	dirs    map[string]bool
	files   map[string][]byte
	created map[string]bool
	order   []string
	closed  bool
	dryRun  bool
}

func newTx(ws *Workspace, description string) *Tx {
	return &Tx{
		ws:          ws,
		id:          uuid.New().String(),
		description: description,
		dirs:        make(map[string]bool),
		files:       make(map[string][]byte),
		created:     make(map[string]bool),
	}
}

// ID returns the transaction id
func (tx *Tx) ID() string {
	return tx.id
}

func (tx *Tx) checkOpen() error {
	if tx.closed {
		return errors.Newf(errors.TransactionErrorCode, "transaction %s is closed", tx.id)
	}
	return nil
}

// FindSubdirectory looks up parent/name. A non-directory entry with that
// name is an error.
func (tx *Tx) FindSubdirectory(parent, name string) (string, bool, error) {
	if err := tx.checkOpen(); err != nil {
		return "", false, err
	}
	path := filepath.Join(parent, name)
	if tx.dirs[path] {
		return path, true, nil
	}
	if _, staged := tx.files[path]; staged {
		return "", false, notDirectory(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.WrapFileSystemError("stat", path, err)
	}
	if !info.IsDir() {
		return "", false, notDirectory(path)
	}
	return path, true, nil
}

// EnsureSubdirectory returns parent/name, staging its creation when absent
func (tx *Tx) EnsureSubdirectory(parent, name string) (string, error) {
	path, found, err := tx.FindSubdirectory(parent, name)
	if err != nil || found {
		return path, err
	}
	path = filepath.Join(parent, name)
	tx.dirs[path] = true
	tx.order = append(tx.order, path)
	return path, nil
}

// FindFile looks up dir/name among staged and existing files
func (tx *Tx) FindFile(dir, name string) (string, bool, error) {
	if err := tx.checkOpen(); err != nil {
		return "", false, err
	}
	path := filepath.Join(dir, name)
	if _, staged := tx.files[path]; staged {
		return path, true, nil
	}
	if tx.dirs[path] {
		return "", false, errors.FileSystemError("open", path, "is a directory")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.WrapFileSystemError("stat", path, err)
	}
	if info.IsDir() {
		return "", false, errors.FileSystemError("open", path, "is a directory")
	}
	return path, true, nil
}

// ReadFile returns the staged content of path, or its content on disk
func (tx *Tx) ReadFile(path string) ([]byte, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	path = filepath.Clean(path)
	if content, staged := tx.files[path]; staged {
		return append([]byte(nil), content...), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}
	return content, nil
}

// CreateFile stages a new file dir/name. It never overwrites.
func (tx *Tx) CreateFile(dir, name string, content []byte) (string, error) {
	path, exists, err := tx.FindFile(dir, name)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.FileSystemError("create", path, "file already exists")
	}
	path = filepath.Join(dir, name)
	tx.files[path] = append([]byte(nil), content...)
	tx.created[path] = true
	tx.order = append(tx.order, path)
	return path, nil
}

// WriteFile stages new content for an existing or staged file
func (tx *Tx) WriteFile(path string, content []byte) error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	path = filepath.Clean(path)
	if _, staged := tx.files[path]; !staged {
		info, err := os.Stat(path)
		if err != nil {
			return errors.WrapFileSystemError("write", path, err)
		}
		if info.IsDir() {
			return errors.FileSystemError("write", path, "is a directory")
		}
		tx.order = append(tx.order, path)
	}
	tx.files[path] = append([]byte(nil), content...)
	return nil
}

// Touched returns every file path staged for creation or modification
func (tx *Tx) Touched() []string {
	var paths []string
	for _, path := range tx.order {
		if !tx.dirs[path] {
			paths = append(paths, path)
		}
	}
	return paths
}

// Pending describes the staged changes without applying them
func (tx *Tx) Pending() []Change {
	changes := make([]Change, 0, len(tx.order))
	for _, path := range tx.order {
		change := Change{Path: tx.ws.rel(path), Action: ActionModify}
		switch {
		case tx.dirs[path]:
			change.Action = ActionMkdir
		case tx.created[path]:
			change.Action = ActionCreate
		}
		if !tx.dirs[path] {
			change.SHA256 = digest(tx.files[path])
		}
		changes = append(changes, change)
	}
	return changes
}

// Commit applies every staged change and records the journal. If applying
// fails, paths already applied are restored before the error is returned.
// A transaction without changes commits without writing a journal.
func (tx *Tx) Commit(ctx context.Context) (*Journal, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	defer tx.close()

	if tx.dryRun {
		return nil, errors.Newf(errors.TransactionErrorCode, "transaction %s is a dry run and cannot commit", tx.id)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapTransactionError(tx.id, "commit", err)
	}

	journal := &Journal{
		ID:          tx.id,
		Time:        time.Now().UTC(),
		Description: tx.description,
		Changes:     []Change{},
	}
	if len(tx.order) == 0 {
		return journal, nil
	}

	var applied []Change
	for _, path := range tx.order {
		change, err := tx.apply(path)
		if err != nil {
			tx.restore(applied)
			return nil, errors.WrapTransactionError(tx.id, "apply", err)
		}
		applied = append(applied, change)
	}
	journal.Changes = applied

	if err := writeJournal(tx.ws.historyDir, journal); err != nil {
		tx.restore(applied)
		return nil, errors.WrapTransactionError(tx.id, "record", err)
	}

	tx.ws.logger.Info("transaction committed",
		zap.String("id", tx.id),
		zap.String("description", tx.description),
		zap.Int("changes", len(applied)))
	return journal, nil
}

func (tx *Tx) apply(path string) (Change, error) {
	rel := tx.ws.rel(path)
	if tx.dirs[path] {
		if err := os.Mkdir(path, 0755); err != nil {
			return Change{}, errors.WrapFileSystemError("create directory", path, err)
		}
		return Change{Path: rel, Action: ActionMkdir}, nil
	}

	content := tx.files[path]
	if tx.created[path] {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err != nil {
			return Change{}, errors.WrapFileSystemError("create", path, err)
		}
		_, werr := f.Write(content)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			os.Remove(path)
			return Change{}, errors.WrapFileSystemError("write", path, werr)
		}
		return Change{Path: rel, Action: ActionCreate, SHA256: digest(content)}, nil
	}

	previous, err := os.ReadFile(path)
	if err != nil {
		return Change{}, errors.WrapFileSystemError("read", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return Change{}, errors.WrapFileSystemError("write", path, err)
	}
	return Change{Path: rel, Action: ActionModify, Previous: string(previous), SHA256: digest(content)}, nil
}

func (tx *Tx) restore(applied []Change) {
	for i := len(applied) - 1; i >= 0; i-- {
		change := applied[i]
		path := tx.ws.abs(change.Path)
		var err error
		switch change.Action {
		case ActionCreate, ActionMkdir:
			err = os.Remove(path)
		case ActionModify:
			err = os.WriteFile(path, []byte(change.Previous), 0644)
		}
		if err != nil {
			tx.ws.logger.Error("failed to restore path", zap.String("path", path), zap.Error(err))
		}
	}
}

// Rollback discards every staged change. It is safe to call after Commit.
func (tx *Tx) Rollback() {
	if tx.closed {
		return
	}
	tx.ws.logger.Debug("transaction rolled back", zap.String("id", tx.id), zap.Int("discarded", len(tx.order)))
	tx.close()
}

func (tx *Tx) close() {
	tx.closed = true
	tx.dirs = nil
	tx.files = nil
	tx.created = nil
	tx.order = nil
	tx.ws.release()
}

func notDirectory(path string) error {
	return errors.FileSystemError("use directory", path, "a non-directory entry with that name exists").
		WithSuggestion("rename or remove the conflicting file")
}
