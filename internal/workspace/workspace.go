// Package workspace locates and bootstraps the KIE workspace directory
// tree and provides the atomic write-temp-then-rename discipline every
// engine-owned file depends on (spec.md §5, §6).
package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MarkerFile is the file that distinguishes a bootstrapped workspace from
// an ordinary, empty directory.
const MarkerFile = ".kie-workspace"

// Workspace is a rooted directory with the engine-owned layout described
// in spec.md §6.
type Workspace struct {
	Root string
}

// New returns a Workspace rooted at path. It does not touch the filesystem.
func New(root string) *Workspace {
	return &Workspace{Root: root}
}

// Dirs returns the subdirectories every workspace must contain.
func (w *Workspace) Dirs() []string {
	return []string{
		w.Path("data"),
		w.Path("outputs"),
		w.Path("outputs", "charts"),
		w.Path("exports"),
		w.Path("project_state"),
		w.Path("project_state", "evidence_ledger"),
		w.Path(".claude", "commands"),
	}
}

// Path joins the workspace root with path elements.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.Root}, elem...)...)
}

// MarkerPath returns the path to the workspace marker file.
func (w *Workspace) MarkerPath() string {
	return w.Path(MarkerFile)
}

// IsBootstrapped reports whether the marker file is present.
func (w *Workspace) IsBootstrapped() bool {
	_, err := os.Stat(w.MarkerPath())
	return err == nil
}

// Bootstrap creates the directory skeleton and marker file. It is
// idempotent — re-running it on an already-bootstrapped workspace is a
// no-op beyond ensuring directories exist.
func (w *Workspace) Bootstrap() error {
	for _, d := range w.Dirs() {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}
	if w.IsBootstrapped() {
		return nil
	}
	return WriteFileAtomic(w.MarkerPath(), []byte("kie workspace\n"))
}

// WriteFileAtomic writes data to path using the write-temp-then-rename
// protocol: the content lands at its final path only after it is fully
// flushed, so a reader never observes a partially written file and a
// crash mid-write never corrupts the previous version.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, path, err)
	}
	return nil
}

// WriteJSONAtomic marshals v as indented JSON and writes it atomically.
func WriteJSONAtomic(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling json for %s: %w", path, err)
	}
	b = append(b, '\n')
	return WriteFileAtomic(path, b)
}

// WriteYAMLAtomic marshals v as YAML and writes it atomically.
func WriteYAMLAtomic(path string, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling yaml for %s: %w", path, err)
	}
	return WriteFileAtomic(path, b)
}

// ReadJSON reads and unmarshals a JSON file into v.
func ReadJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// ReadYAML reads and unmarshals a YAML file into v.
func ReadYAML(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, v)
}

// Exists reports whether path exists on disk.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SHA256File returns the lowercase hex SHA-256 digest of a file's contents.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
