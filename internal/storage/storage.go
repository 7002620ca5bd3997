// Package storage writes proof artifacts and maps them to public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"momentum/internal/middleware"
	"momentum/internal/models"
	"momentum/internal/observability"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// URLPrefix is the public path under which stored artifacts are served.
const URLPrefix = "/uploads"

// Upload is one file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Stored describes an artifact written by Save. Paths are relative to the
// store root and always use forward slashes.
type Stored struct {
	FileName    string
	FileType    string
	FileSize    int64
	URL         string
	Path        string
	PreviewURL  string
	PreviewPath string
}

// ProofFile converts s into an unsaved ProofFile row for entryID.
func (s Stored) ProofFile(entryID string) models.ProofFile {
	return models.ProofFile{
		DailyEntryID: entryID,
		FileName:     s.FileName,
		FileType:     s.FileType,
		FileSize:     s.FileSize,
		FileURL:      s.URL,
		StoragePath:  s.Path,
		PreviewURL:   s.PreviewURL,
		PreviewPath:  s.PreviewPath,
	}
}

// Paths lists every artifact written for s.
func (s Stored) Paths() []string {
	paths := []string{s.Path}
	if s.PreviewPath != "" {
		paths = append(paths, s.PreviewPath)
	}
	return paths
}

// ProofStore persists proof artifacts.
type ProofStore interface {
	// Save writes every upload under the user's directory. Nothing is left
	// behind when it fails.
	Save(ctx context.Context, userID string, uploads []Upload, previews bool) ([]Stored, error)
	// Remove deletes artifacts by relative path. Missing files are not an error.
	Remove(ctx context.Context, paths ...string) error
	// List returns every stored artifact.
	List(ctx context.Context) ([]Object, error)
}

// Object is a stored artifact as seen by List.
type Object struct {
	Path    string
	ModTime time.Time
}

// LocalStore keeps artifacts on an afero filesystem rooted at the upload directory.
type LocalStore struct {
	fs  afero.Fs
	now func() time.Time
}

// NewLocalStore stores artifacts on disk under root.
func NewLocalStore(root string) (*LocalStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return NewStore(afero.NewBasePathFs(osFs, root)), nil
}

// NewStore wraps an arbitrary filesystem, e.g. afero.NewMemMapFs in tests.
func NewStore(fsys afero.Fs) *LocalStore {
	return &LocalStore{fs: fsys, now: time.Now}
}

func (s *LocalStore) Save(ctx context.Context, userID string, uploads []Upload, previews bool) ([]Stored, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("invalid owner id %q", userID))
	}
	if len(uploads) == 0 {
		return nil, nil
	}
	if err := s.fs.MkdirAll(userID, 0o750); err != nil {
		return nil, models.NewInternalError(err)
	}

	stored := make([]Stored, 0, len(uploads))
	var written []string
	for _, u := range uploads {
		if err := ctx.Err(); err != nil {
			s.discard(written)
			return nil, models.NewInternalError(err)
		}

		item, err := s.write(ctx, userID, u, previews)
		if err != nil {
			s.discard(written)
			return nil, models.NewInternalError(err)
		}
		written = append(written, item.Paths()...)
		stored = append(stored, item)
		observability.ProofFilesStored.WithLabelValues(Kind(u.ContentType)).Inc()
	}
	return stored, nil
}

func (s *LocalStore) write(ctx context.Context, userID string, u Upload, previews bool) (Stored, error) {
	original := SanitizeFilename(u.Filename)
	ext := strings.ToLower(filepath.Ext(original))
	base := fmt.Sprintf("%s-%d", uuid.NewString(), s.now().UnixMilli())
	rel := path.Join(userID, base+ext)

	if err := afero.WriteFile(s.fs, rel, u.Content, 0o600); err != nil {
		return Stored{}, err
	}

	item := Stored{
		FileName: original,
		FileType: normalizeContentType(u.ContentType),
		FileSize: int64(len(u.Content)),
		URL:      URLPrefix + "/" + rel,
		Path:     rel,
	}

	if previews && Kind(u.ContentType) == "image" {
		// Previews are best effort; the upload itself is already stored.
		data, err := renderPreview(u.Content)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "proof preview skipped",
				slog.String("path", rel), slog.String("error", err.Error()))
			return item, nil
		}
		previewRel := path.Join(userID, base+"-preview.webp")
		if err := afero.WriteFile(s.fs, previewRel, data, 0o600); err != nil {
			_ = s.fs.Remove(rel)
			return Stored{}, err
		}
		item.PreviewPath = previewRel
		item.PreviewURL = URLPrefix + "/" + previewRel
	}
	return item, nil
}

func (s *LocalStore) discard(paths []string) {
	for _, p := range paths {
		_ = s.fs.Remove(p)
	}
}

func (s *LocalStore) Remove(ctx context.Context, paths ...string) error {
	var errs []error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == "" {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(p)) {
			errs = append(errs, fmt.Errorf("refusing to remove %q outside the upload dir", p))
			continue
		}
		if err := s.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

func (s *LocalStore) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	err := afero.Walk(s.fs, ".", func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !info.IsDir() {
			objects = append(objects, Object{
				Path:    filepath.ToSlash(strings.TrimPrefix(p, string(filepath.Separator))),
				ModTime: info.ModTime(),
			})
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return objects, nil
}

// PathFromURL maps a public /uploads URL back to its relative storage path.
func PathFromURL(url string) (string, bool) {
	rel, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok || !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", false
	}
	return rel, true
}
