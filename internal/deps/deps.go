package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"subsmith/internal/config"
)

// Requirement defines an external dependency subsmith relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements derives the external binary set for the active configuration.
// The whisper CLI is only required when the local backend is selected.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{Name: "FFmpeg", Command: cfg.FFmpegBinary(), Description: "Audio extraction from uploaded videos"},
		{Name: "FFprobe", Command: cfg.FFprobeBinary(), Description: "Media duration probing"},
	}
	if cfg.Whisper.Backend == "whisper" {
		reqs = append(reqs, Requirement{
			Name:        "Whisper",
			Command:     cfg.Whisper.Binary,
			Description: "Local speech-to-text transcription",
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
