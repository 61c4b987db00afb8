package monitoring

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dcastane/regportal-be/internal/database"
	"github.com/dcastane/regportal-be/internal/intake"
	"github.com/stretchr/testify/require"
)

func TestSweep_RemovesOnlyStaleOrphans(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	uploadRoot := t.TempDir()
	bucket := filepath.Join(uploadRoot, intake.PhotoBucket)
	require.NoError(t, os.MkdirAll(bucket, 0755))

	writeAged := func(name string, age time.Duration) {
		path := filepath.Join(bucket, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		stamp := time.Now().Add(-age)
		require.NoError(t, os.Chtimes(path, stamp, stamp))
	}

	// referenced.png belongs to a record, stale.png to nobody,
	// fresh.png could be an in-flight registration.
	writeAged("referenced.png", 2*time.Hour)
	writeAged("stale.png", 2*time.Hour)
	writeAged("fresh.png", time.Minute)

	_, err = db.Exec(
		`INSERT INTO users (id, name, date_of_birth, place, email, phone, address, password_hash, profile_pic, resume)
		 VALUES ('u1', 'A', ?, '', 'a@x.com', '1234567890', 'x', 'hash', 'referenced.png', '')`,
		time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// A row with NULL file columns must not break the reference scan.
	_, err = db.Exec(
		`INSERT INTO users (id, name, date_of_birth, place, email, phone, address, password_hash, profile_pic, resume)
		 VALUES ('u2', 'B', ?, NULL, 'b@x.com', '0987654321', 'y', 'hash', NULL, NULL)`,
		time.Date(1991, 2, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	s, err := NewSweeper(db, uploadRoot, "@hourly")
	require.NoError(t, err)
	s.sweep()

	_, err = os.Stat(filepath.Join(bucket, "referenced.png"))
	require.NoError(t, err, "referenced files survive")
	_, err = os.Stat(filepath.Join(bucket, "fresh.png"))
	require.NoError(t, err, "recent files survive")
	_, err = os.Stat(filepath.Join(bucket, "stale.png"))
	require.True(t, os.IsNotExist(err), "stale orphans are removed")
}

func TestSweep_MissingBucketIsClean(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	s, err := NewSweeper(db, filepath.Join(t.TempDir(), "does-not-exist"), "@hourly")
	require.NoError(t, err)
	s.sweep() // must not panic or log fatally
}

func TestNewSweeper_BadSchedule(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = NewSweeper(db, t.TempDir(), "not a cron expr")
	require.Error(t, err)
}
