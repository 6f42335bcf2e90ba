package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	templerrors "github.com/harusame/templight/internal/errors"
)

// SourceProvider supplies raw template bytes and modification times for
// a template name. Both operations are fallible; a missing document is
// reported with an error wrapping errors.ErrTemplateNotFound.
type SourceProvider interface {
	ModTime(name string) (time.Time, error)
	Read(name string) (string, error)
}

// FileSource resolves template names to files under a single directory,
// one file per template, sharing a common extension.
type FileSource struct {
	dir string
	ext string
}

// NewFileSource creates a filesystem-backed source provider rooted at
// dir. ext is the template file extension including the leading dot.
func NewFileSource(dir, ext string) *FileSource {
	return &FileSource{dir: dir, ext: ext}
}

// ModTime returns the file modification time.
func (fs *FileSource) ModTime(name string) (time.Time, error) {
	path, err := fs.resolve(name)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, fmt.Errorf("%w: %s", templerrors.ErrTemplateNotFound, name)
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Read returns the raw template content.
func (fs *FileSource) Read(name string) (string, error) {
	path, err := fs.resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", templerrors.ErrTemplateNotFound, name)
		}
		return "", err
	}
	return string(data), nil
}

// Names lists the template names available in the source directory,
// sorted for stable iteration.
func (fs *FileSource) Names() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base := entry.Name()
		if !strings.HasSuffix(base, fs.ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(base, fs.ext))
	}
	sort.Strings(names)
	return names, nil
}

// NameForPath maps an absolute or relative file path back to a template
// name, or "" if the path is not a template file under the source
// directory. Used by the file watcher to translate change events.
func (fs *FileSource) NameForPath(path string) string {
	if filepath.Ext(path) != fs.ext {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, fs.ext)
}

// resolve maps a template name to a file path, rejecting names that
// would escape the source directory.
func (fs *FileSource) resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty template name")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid template name: %s", name)
	}
	return filepath.Join(fs.dir, name+fs.ext), nil
}
