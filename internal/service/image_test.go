package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/nicky-ayoub/ebitreveal/internal/catalog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, w, h), 0o644))
	return path
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	body := encodePNG(t, 8, 6)
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	})
	mux.HandleFunc("/text", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not an image"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadLocalFile(t *testing.T) {
	is := NewImageService(nil)
	path := writePNG(t, 4, 3)

	img, err := is.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	img, err = is.Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestLoadRemote(t *testing.T) {
	srv := newServer(t)
	is := NewImageService(srv.Client())

	img, err := is.Load(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())

	_, err = is.Load(context.Background(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "404")

	_, err = is.Load(context.Background(), srv.URL+"/text")
	assert.ErrorContains(t, err, "decoding")
}

func TestLoadErrors(t *testing.T) {
	is := NewImageService(nil)
	_, err := is.Load(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = is.Load(context.Background(), filepath.Join(t.TempDir(), "nope.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPairReportsEachSide(t *testing.T) {
	srv := newServer(t)
	is := NewImageService(srv.Client())

	res, err := is.LoadPair(context.Background(), srv.URL+"/ok.png", srv.URL+"/missing.png")
	require.NoError(t, err)
	require.NoError(t, res.BeforeErr)
	assert.NotNil(t, res.Before)
	assert.Error(t, res.AfterErr)
	assert.Nil(t, res.After)

	res, err = is.LoadPair(context.Background(), writePNG(t, 2, 2), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.NoError(t, res.BeforeErr)
	assert.NoError(t, res.AfterErr)
}

func TestLoadPairCancelled(t *testing.T) {
	srv := newServer(t)
	is := NewImageService(srv.Client())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := is.LoadPair(ctx, srv.URL+"/ok.png", srv.URL+"/ok.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetImageInfo(t *testing.T) {
	is := NewImageService(nil)
	path := writePNG(t, 12, 7)

	info, err := is.GetImageInfo(path)
	require.NoError(t, err)
	assert.Equal(t, 12, info.Width)
	assert.Equal(t, 7, info.Height)
	assert.Positive(t, info.Size)
	assert.Empty(t, info.EXIFData, "png carries no EXIF")
}

func TestEmbeddedThumbnailKeepsDecodeError(t *testing.T) {
	is := NewImageService(nil)
	_, err := is.GetEmbeddedThumbnail(writePNG(t, 4, 4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no EXIF data: ")
	assert.NotNil(t, errors.Unwrap(err), "the EXIF decoder error is wrapped")
}

func TestThumbnailFallsBackToDecode(t *testing.T) {
	is := NewImageService(nil)
	img, err := is.Thumbnail(context.Background(), writePNG(t, 5, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://cdn.example.com/a.jpg"))
	assert.True(t, IsRemote("http://x/a.jpg"))
	assert.False(t, IsRemote("file:///tmp/a.jpg"))
	assert.False(t, IsRemote("a.jpg"))
}

func TestProjectsSkipsInvalid(t *testing.T) {
	store := catalog.NewMemoryStore(
		catalog.Project{ID: "a", Title: "A", BeforeURL: "a1", AfterURL: "a2", Tags: []string{"Scan", "facade"}},
		catalog.Project{ID: "b", Title: "B", BeforeURL: "b1", AfterURL: "b2", Tags: []string{"scan "}},
	)
	ps := NewProjectService(store, zap.NewNop())

	list, err := ps.Projects(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, []string{"facade", "scan"}, Tags(list))
}

func TestProjectServiceDelete(t *testing.T) {
	store := catalog.NewMemoryStore(
		catalog.Project{ID: "a", Title: "A", BeforeURL: "a1", AfterURL: "a2"},
	)
	ps := NewProjectService(store, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, ps.Delete(ctx, "a"))
	list, err := ps.Projects(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, ps.Delete(ctx, "a"), catalog.ErrNotFound)
}
