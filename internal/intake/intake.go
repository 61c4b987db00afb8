// Package intake validates uploaded attachments and hands them to storage
// under a collision-resistant reference name.
package intake

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dcastane/regportal-be/internal/storage"
	"github.com/google/uuid"
)

// Role identifies which attachment slot an upload fills.
type Role string

const (
	RolePhoto  Role = "photo"
	RoleResume Role = "resume"
)

// Bucket names, also used as public path segments when serving files.
const (
	PhotoBucket  = "profile-pics"
	ResumeBucket = "resumes"
)

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnknownRole     = errors.New("unknown attachment role")
)

type constraint struct {
	bucket     string
	maxSize    int64
	extensions map[string]bool
}

var constraints = map[Role]constraint{
	RolePhoto: {
		bucket:     PhotoBucket,
		maxSize:    2 << 20, // 2 MiB
		extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true},
	},
	RoleResume: {
		bucket:     ResumeBucket,
		maxSize:    5 << 20, // 5 MiB
		extensions: map[string]bool{".pdf": true, ".docx": true},
	},
}

// MaxSize returns the byte cap for a role, or 0 for an unknown role.
func MaxSize(role Role) int64 {
	return constraints[role].maxSize
}

// BucketFor returns the storage bucket for a role.
func BucketFor(role Role) string {
	return constraints[role].bucket
}

// Intake validates and persists attachments.
type Intake struct {
	store storage.Store
}

// New creates an Intake writing to the given store.
func New(store storage.Store) *Intake {
	return &Intake{store: store}
}

// Save validates data against the role's constraints and writes it to the
// role's bucket. It returns the generated reference name. On any failure
// nothing is left behind in the store.
func (i *Intake) Save(ctx context.Context, role Role, originalName string, data []byte) (string, error) {
	c, ok := constraints[role]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !c.extensions[ext] {
		return "", fmt.Errorf("%w: %s is not allowed for %s", ErrInvalidFileType, ext, role)
	}
	if int64(len(data)) > c.maxSize {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, role, c.maxSize)
	}

	// A UUID prefix keeps concurrent uploads from colliding; the role
	// suffix keeps files discoverable when browsing a bucket.
	ref := fmt.Sprintf("%s-%s%s", uuid.New(), role, ext)

	if err := i.store.Write(ctx, c.bucket, ref, data); err != nil {
		return "", err
	}
	return ref, nil
}

// Discard removes a previously saved attachment. Used both for
// compensation after a failed registration and for cleanup on deletion.
func (i *Intake) Discard(ctx context.Context, role Role, ref string) error {
	c, ok := constraints[role]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return i.store.Delete(ctx, c.bucket, ref)
}
