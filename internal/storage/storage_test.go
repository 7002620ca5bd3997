package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strings"
	"testing"
	"time"

	"momentum/internal/models"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerID = "6f1c2a8e-3b7d-4f0a-9c2e-1d5b7a9e0c11"

func tinyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateBatch(t *testing.T) {
	limits := Limits{MaxFiles: 2, MaxFileSize: 1024 * 1024}
	ok := Upload{Filename: "shot.png", ContentType: "image/png", Content: []byte("x")}

	tests := []struct {
		name    string
		uploads []Upload
		message string
	}{
		{name: "Accepted", uploads: []Upload{ok, {Filename: "clip.MOV", ContentType: "video/quicktime", Content: []byte("v")}}},
		{name: "Too many", uploads: []Upload{ok, ok, ok}, message: "Too many files. Maximum 2 files allowed."},
		{
			name:    "Too large",
			uploads: []Upload{{Filename: "big.png", ContentType: "image/png", Content: make([]byte, 1024*1024+1)}},
			message: "File size too large. Maximum size is 1MB.",
		},
		{
			name:    "Bad mime",
			uploads: []Upload{ok, {Filename: "doc.png", ContentType: "application/pdf", Content: []byte("%PDF")}},
			message: invalidTypeMessage,
		},
		{
			name:    "Bad extension",
			uploads: []Upload{{Filename: "script.exe", ContentType: "image/png", Content: []byte("x")}},
			message: invalidTypeMessage,
		},
		{
			name:    "Empty",
			uploads: []Upload{{Filename: "blank.png", ContentType: "image/png"}},
			message: "File blank.png is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatch(tt.uploads, limits)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeUpload, appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, "image", Kind("image/JPEG; charset=binary"))
	assert.Equal(t, "video", Kind("video/webm"))
	assert.Equal(t, "", Kind("text/plain"))
	assert.Equal(t, "", Kind(""))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "shot.png", SanitizeFilename(`C:\Users\me\shot.png`))
	assert.Equal(t, "ab.png", SanitizeFilename("a\x00b.png"))
	assert.Equal(t, "file", SanitizeFilename("  "))
	assert.Len(t, SanitizeFilename(strings.Repeat("a", 300)+".png"), 255)
}

func TestLocalStore_SaveNamesAndPreviews(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := NewStore(fsys)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }
	ctx := context.Background()

	stored, err := store.Save(ctx, ownerID, []Upload{
		{Filename: "../Shot.PNG", ContentType: "image/png", Content: tinyPNG(t, 800, 600)},
		{Filename: "demo.mp4", ContentType: "video/mp4", Content: []byte("not really a video")},
	}, true)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	name := regexp.MustCompile(`^` + ownerID + `/[0-9a-f-]{36}-1700000000000\.png$`)
	assert.Regexp(t, name, stored[0].Path)
	assert.Equal(t, "Shot.PNG", stored[0].FileName)
	assert.Equal(t, "image/png", stored[0].FileType)
	assert.Equal(t, URLPrefix+"/"+stored[0].Path, stored[0].URL)
	require.NotEmpty(t, stored[0].PreviewPath)
	assert.True(t, strings.HasSuffix(stored[0].PreviewPath, "-preview.webp"))

	assert.Empty(t, stored[1].PreviewPath)
	assert.EqualValues(t, len("not really a video"), stored[1].FileSize)

	for _, s := range stored {
		for _, p := range s.Paths() {
			exists, err := afero.Exists(fsys, p)
			require.NoError(t, err)
			assert.True(t, exists, p)
		}
	}

	objects, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, objects, 3)

	pf := stored[0].ProofFile("entry-1")
	assert.Equal(t, "entry-1", pf.DailyEntryID)
	assert.Equal(t, stored[0].PreviewURL, pf.PreviewURL)
}

func TestLocalStore_PreviewFailureKeepsOriginal(t *testing.T) {
	store := NewStore(afero.NewMemMapFs())

	stored, err := store.Save(context.Background(), ownerID, []Upload{
		{Filename: "broken.jpg", ContentType: "image/jpeg", Content: []byte("not a jpeg")},
	}, true)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Empty(t, stored[0].PreviewPath)
}

func TestLocalStore_SaveRejectsBadOwner(t *testing.T) {
	store := NewStore(afero.NewMemMapFs())
	_, err := store.Save(context.Background(), "../escape", []Upload{{Filename: "a.png", Content: []byte("x")}}, false)
	assert.Error(t, err)
}

func TestLocalStore_SaveDiscardsOnFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	store := NewStore(base)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, ownerID, []Upload{{Filename: "a.png", ContentType: "image/png", Content: []byte("x")}}, false)
	require.Error(t, err)

	objects, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestLocalStore_Remove(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := NewStore(fsys)
	ctx := context.Background()

	stored, err := store.Save(ctx, ownerID, []Upload{{Filename: "a.gif", ContentType: "image/gif", Content: []byte("GIF89a")}}, false)
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, stored[0].Path, ownerID+"/missing.png", ""))
	exists, err := afero.Exists(fsys, stored[0].Path)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Error(t, store.Remove(ctx, "../outside.png"))
}

func TestPathFromURL(t *testing.T) {
	rel, ok := PathFromURL("/uploads/" + ownerID + "/x.png")
	assert.True(t, ok)
	assert.Equal(t, ownerID+"/x.png", rel)

	_, ok = PathFromURL("/uploads/../secrets")
	assert.False(t, ok)
	_, ok = PathFromURL("/static/x.png")
	assert.False(t, ok)
}
