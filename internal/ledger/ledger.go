// Package ledger implements the Evidence Ledger: the append-only,
// per-run audit store that is the sole source of truth for "what
// happened" (spec.md §4.3). Every command acquires a fresh run_id,
// records its start, and on completion records its outputs, success
// flag, warnings and blocks. Records are never mutated after being
// written — a new run always means a new file.
package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/google/uuid"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/workspace"
)

// Ledger reads and writes Evidence Records for one workspace.
type Ledger struct {
	ws *workspace.Workspace
}

// New binds a Ledger to a workspace.
func New(ws *workspace.Workspace) *Ledger {
	return &Ledger{ws: ws}
}

// Dir returns the evidence_ledger directory path.
func (l *Ledger) Dir() string {
	return l.ws.Path("project_state", "evidence_ledger")
}

func (l *Ledger) recordPath(runID string) string {
	return filepath.Join(l.Dir(), runID+".yaml")
}

// NewRunID generates a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Write persists one Evidence Record atomically. Because records are
// append-only and keyed by run_id, calling Write twice for the same
// run_id would silently clobber a prior record — callers must only
// write a run_id once.
func (l *Ledger) Write(rec *domain.EvidenceRecord) error {
	return workspace.WriteYAMLAtomic(l.recordPath(rec.RunID), rec)
}

// Read loads a single Evidence Record by run_id.
func (l *Ledger) Read(runID string) (*domain.EvidenceRecord, error) {
	var rec domain.EvidenceRecord
	if err := workspace.ReadYAML(l.recordPath(runID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// All scans the ledger directory and returns every record, oldest first.
// There is no in-memory index: the directory listing is the index.
func (l *Ledger) All() ([]*domain.EvidenceRecord, error) {
	entries, err := os.ReadDir(l.Dir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading evidence ledger dir: %w", err)
	}

	var records []*domain.EvidenceRecord
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		runID := trimYAMLExt(e.Name())
		rec, err := l.Read(runID)
		if err != nil {
			continue // a record that fails to parse is not "evidence" — skip it
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

// Latest returns the most recent Evidence Record, or nil if the ledger
// is empty.
func (l *Ledger) Latest() (*domain.EvidenceRecord, error) {
	all, err := l.All()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[len(all)-1], nil
}

func trimYAMLExt(name string) string {
	const suffix = ".yaml"
	if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
		return name[:len(name)-len(suffix)]
	}
	return name
}

// HashRefs turns a list of file paths into ArtifactRefs with SHA-256
// digests taken right now. Used both before execution (to hash inputs)
// and after (to hash declared outputs).
func HashRefs(paths ...string) ([]domain.ArtifactRef, error) {
	refs := make([]domain.ArtifactRef, 0, len(paths))
	for _, p := range paths {
		sum, err := workspace.SHA256File(p)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", p, err)
		}
		refs = append(refs, domain.ArtifactRef{Path: p, SHA256: sum})
	}
	return refs, nil
}

// EnvSnapshotNow captures the current environment for an Evidence Record.
func EnvSnapshotNow(python, node string) domain.EnvSnapshot {
	return domain.EnvSnapshot{Python: python, Node: node, OS: runtime.GOOS}
}
