package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/toyz/mvpgen/internal/errors"
)

// Action is the kind of change a transaction applied to a path
type Action string

const (
	ActionMkdir  Action = "mkdir"
	ActionCreate Action = "create"
	ActionModify Action = "modify"
)

// Change records one applied path. Previous holds the content before a
// modify; SHA256 is the digest of the content written.
type Change struct {
	Path     string `json:"path"`
	Action   Action `json:"action"`
	Previous string `json:"previous,omitempty"`
	SHA256   string `json:"sha256,omitempty"`
}

// Journal is the persisted record of a committed transaction
type Journal struct {
	ID          string     `json:"id"`
	Time        time.Time  `json:"time"`
	Description string     `json:"description"`
	Changes     []Change   `json:"changes"`
	UndoneAt    *time.Time `json:"undone_at,omitempty"`
}

// Undone reports whether the transaction has been reverted
func (j *Journal) Undone() bool {
	return j.UndoneAt != nil
}

func digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func journalPath(dir, id string) string {
	return filepath.Join(dir, id+".json")
}

func writeJournal(dir string, j *Journal) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WrapFileSystemError("create history directory", dir, err)
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return errors.WrapTransactionError(j.ID, "encode journal", err)
	}
	data = append(data, '\n')

	path := journalPath(dir, j.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.WrapFileSystemError("write journal", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.WrapFileSystemError("write journal", path, err)
	}
	return nil
}

func readJournal(path string) (*Journal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read journal", path, err)
	}
	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, errors.WrapParseError(filepath.Base(path), err)
	}
	return &j, nil
}

// listJournals returns every journal in dir, newest first
func listJournals(dir string) ([]*Journal, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapFileSystemError("list history", dir, err)
	}

	var journals []*Journal
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		j, err := readJournal(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		journals = append(journals, j)
	}

	sort.SliceStable(journals, func(a, b int) bool {
		return journals[a].Time.After(journals[b].Time)
	})
	return journals, nil
}
