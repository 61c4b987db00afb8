package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dcastane/regportal-be/internal/config"
	"github.com/dcastane/regportal-be/internal/intake"
	"github.com/dcastane/regportal-be/internal/websocket"
	"github.com/stretchr/testify/require"
)

func newUploadsRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		ServerPort:     8080,
		UploadRoot:     root,
		StorageBackend: config.BackendLocal,
		CORSOrigin:     "http://localhost:5173",
	}
	// Only the static routes are exercised; the API handlers stay idle.
	return NewRouter(websocket.NewHub(), nil, nil, cfg), root
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestUploads_ServesFiles(t *testing.T) {
	router, root := newUploadsRouter(t)

	dir := filepath.Join(root, intake.ResumeBucket)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc-resume.pdf"), []byte("pdf-bytes"), 0644))

	rec := get(router, "/uploads/resumes/abc-resume.pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pdf-bytes", rec.Body.String())
}

func TestUploads_DirectoriesAreNotListable(t *testing.T) {
	router, root := newUploadsRouter(t)

	dir := filepath.Join(root, intake.ResumeBucket)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret-resume.pdf"), []byte("pdf"), 0644))

	for _, target := range []string{
		"/uploads/",
		"/uploads/resumes/",
		"/uploads/resumes",
		"/uploads/profile-pics/",
	} {
		rec := get(router, target)
		require.Equal(t, http.StatusNotFound, rec.Code, target)
		require.NotContains(t, rec.Body.String(), "secret-resume.pdf", target)
	}
}

func TestUploads_MissingFile(t *testing.T) {
	router, _ := newUploadsRouter(t)
	rec := get(router, "/uploads/resumes/never-written.pdf")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
