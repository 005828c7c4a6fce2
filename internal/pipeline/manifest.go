package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/salesloom-cli/internal/utils"
)

const manifestFileName = "run.json"

// Step and run statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusRunning = "running"
)

// Manifest records one pipeline run on disk.
type Manifest struct {
	RunID         string    `json:"run_id"`
	Input         string    `json:"input"`
	OutputDir     string    `json:"output_dir"`
	ProfileSource string    `json:"profile_source"`
	Status        string    `json:"status"`
	FailedStep    string    `json:"failed_step,omitempty"`
	Error         string    `json:"error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Steps         []Step    `json:"steps"`
	Artifacts     []string  `json:"artifacts"`
}

// Step is the outcome of one stage.
type Step struct {
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Detail     string    `json:"detail,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func newManifest(input, outDir, source string) *Manifest {
	return &Manifest{
		RunID:         uuid.NewString(),
		Input:         input,
		OutputDir:     outDir,
		ProfileSource: source,
		Status:        StatusRunning,
		StartedAt:     time.Now().UTC(),
		Steps:         []Step{},
		Artifacts:     []string{},
	}
}

func (m *Manifest) addArtifacts(paths ...string) {
	m.Artifacts = append(m.Artifacts, paths...)
}

// Step returns the recorded step with the given name.
func (m *Manifest) Step(name string) (Step, bool) {
	for _, s := range m.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// Save writes run.json into the output directory using atomic write.
func (m *Manifest) Save() error {
	b, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(filepath.Join(m.OutputDir, manifestFileName), b); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads run.json from dir.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
