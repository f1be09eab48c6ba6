package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job owns the scratch directory for one video generation run. Every
// intermediate artifact (narration clips, the scene script, renderer media,
// the concat manifest, the final video) lives under Dir so a single removal
// reclaims everything.
type Job struct {
	ID  string
	Dir string

	cleanupOnce sync.Once
	cleanupErr  error
}

// NewJob creates a uniquely named working directory under scratchDir. The
// name combines a timestamp with a short random suffix so concurrent jobs
// never collide and directories sort by creation time.
func NewJob(scratchDir string) (*Job, error) {
	id := fmt.Sprintf("job-%d-%s", time.Now().UnixNano(), shortID())
	dir := filepath.Join(scratchDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create job directory: %w", err)
	}
	return &Job{ID: id, Dir: dir}, nil
}

// Path returns the given file name resolved inside the job directory.
func (j *Job) Path(name string) string {
	return filepath.Join(j.Dir, name)
}

// Cleanup removes the job directory and everything under it. It is safe to
// call more than once and from deferred paths; only the first call does work.
func (j *Job) Cleanup() error {
	j.cleanupOnce.Do(func() {
		j.cleanupErr = os.RemoveAll(j.Dir)
	})
	return j.cleanupErr
}

func shortID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
