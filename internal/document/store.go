package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// Load reads the document stored at pathname. Name and Path are taken from
// pathname.
func Load(pathname string) (*Document, error) {
	doc := New("")
	doc.SetPathname(pathname)

	if _, err := os.Stat(pathname); err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	lock := flock.New(lockPath(pathname))
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock document: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(pathname)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	if err := doc.SetContent(string(data)); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save writes doc to its Pathname, replacing any previous file atomically.
func Save(doc *Document) error {
	if doc == nil {
		return errors.New("save document: no document")
	}
	if strings.TrimSpace(doc.Name) == "" {
		return errors.New("save document: empty name")
	}
	pathname := doc.Pathname()

	dir := filepath.Dir(pathname)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}

	lock := flock.New(lockPath(pathname))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock document: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, "."+doc.Name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(doc.Content() + "\n"); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close document: %w", err)
	}
	if err := os.Rename(tmpPath, pathname); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// FileStore loads and saves documents on the local filesystem.
type FileStore struct{}

func (FileStore) Load(pathname string) (*Document, error) {
	return Load(pathname)
}

func (FileStore) Save(doc *Document) error {
	return Save(doc)
}

func lockPath(pathname string) string {
	dir, base := filepath.Split(pathname)
	return filepath.Join(dir, "."+base+".lock")
}
