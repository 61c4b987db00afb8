package intake

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dcastane/regportal-be/internal/storage"
	"github.com/stretchr/testify/require"
)

func newTestIntake(t *testing.T) (*Intake, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewLocal(root)
	require.NoError(t, err)
	return New(store), root
}

func bucketFiles(t *testing.T, root, bucket string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, bucket))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSave_PhotoExtensions(t *testing.T) {
	in, root := newTestIntake(t)
	ctx := context.Background()

	tests := []struct {
		filename string
		wantErr  error
	}{
		{"me.png", nil},
		{"me.jpg", nil},
		{"me.JPEG", nil}, // extensions are case-insensitive
		{"me.gif", ErrInvalidFileType},
		{"me.pdf", ErrInvalidFileType},
		{"me", ErrInvalidFileType},
	}

	for _, tt := range tests {
		ref, err := in.Save(ctx, RolePhoto, tt.filename, []byte("data"))
		if tt.wantErr != nil {
			require.ErrorIs(t, err, tt.wantErr, tt.filename)
			require.Empty(t, ref)
		} else {
			require.NoError(t, err, tt.filename)
			require.NotEmpty(t, ref)
		}
	}

	// Only the three valid saves left files behind.
	require.Len(t, bucketFiles(t, root, PhotoBucket), 3)
}

func TestSave_ResumeExtensions(t *testing.T) {
	in, root := newTestIntake(t)
	ctx := context.Background()

	_, err := in.Save(ctx, RoleResume, "cv.docx", []byte("doc"))
	require.NoError(t, err)
	_, err = in.Save(ctx, RoleResume, "cv.PDF", []byte("pdf"))
	require.NoError(t, err)

	_, err = in.Save(ctx, RoleResume, "cv.exe", []byte("nope"))
	require.ErrorIs(t, err, ErrInvalidFileType)
	_, err = in.Save(ctx, RoleResume, "cv.png", []byte("nope"))
	require.ErrorIs(t, err, ErrInvalidFileType)

	require.Len(t, bucketFiles(t, root, ResumeBucket), 2)
}

func TestSave_SizeCaps(t *testing.T) {
	in, root := newTestIntake(t)
	ctx := context.Background()

	_, err := in.Save(ctx, RolePhoto, "big.png", bytes.Repeat([]byte{0}, int(2<<20)+1))
	require.ErrorIs(t, err, ErrFileTooLarge)

	_, err = in.Save(ctx, RoleResume, "big.pdf", bytes.Repeat([]byte{0}, int(5<<20)+1))
	require.ErrorIs(t, err, ErrFileTooLarge)

	// Exactly at the cap is fine.
	_, err = in.Save(ctx, RolePhoto, "ok.png", bytes.Repeat([]byte{0}, int(2<<20)))
	require.NoError(t, err)

	require.Len(t, bucketFiles(t, root, PhotoBucket), 1)
	require.Empty(t, bucketFiles(t, root, ResumeBucket))
}

func TestSave_ReferenceNames(t *testing.T) {
	in, _ := newTestIntake(t)
	ctx := context.Background()

	a, err := in.Save(ctx, RolePhoto, "same.png", []byte("x"))
	require.NoError(t, err)
	b, err := in.Save(ctx, RolePhoto, "same.png", []byte("x"))
	require.NoError(t, err)

	require.NotEqual(t, a, b, "two uploads of the same file must not collide")
	require.True(t, strings.HasSuffix(a, "-photo.png"))

	c, err := in.Save(ctx, RoleResume, "CV.DOCX", []byte("x"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(c, "-resume.docx"), "extension is lowercased")
}

func TestSave_UnknownRole(t *testing.T) {
	in, _ := newTestIntake(t)
	_, err := in.Save(context.Background(), Role("avatar"), "a.png", []byte("x"))
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestDiscard(t *testing.T) {
	in, root := newTestIntake(t)
	ctx := context.Background()

	ref, err := in.Save(ctx, RoleResume, "cv.pdf", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, in.Discard(ctx, RoleResume, ref))
	require.Empty(t, bucketFiles(t, root, ResumeBucket))

	// Discarding twice is clean.
	require.NoError(t, in.Discard(ctx, RoleResume, ref))
}
