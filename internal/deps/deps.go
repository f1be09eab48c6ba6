package deps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// wellKnownDirs lists common installation directories in priority order.
// Package-manager locations come before system locations so a user-installed
// tool wins over a stale distro copy.
var wellKnownDirs = []string{
	"/opt/homebrew/bin",
	"/usr/local/bin",
	"/usr/bin",
	"/bin",
	"/opt/local/bin",
}

const probeTimeout = 5 * time.Second

// Requirement defines an external dependency the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	InstallHint string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	InstallHint string
	Available   bool
	Path        string
	Detail      string
}

// Resolve locates an invocable path for the named tool. Well-known
// installation directories are checked for an executable file first; when
// none match, the inherited search path is consulted and the candidate is
// verified with a --version probe, treating any invocation failure as absent.
func Resolve(command string) (string, bool) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", false
	}
	if filepath.IsAbs(command) {
		if info, err := os.Stat(command); err == nil && isExecutable(info) {
			return command, true
		}
		return "", false
	}

	for _, dir := range wellKnownDirs {
		candidate := filepath.Join(dir, command)
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return candidate, true
		}
	}

	resolved, err := exec.LookPath(command)
	if err != nil {
		return "", false
	}
	if !probeVersion(resolved) {
		return "", false
	}
	return resolved, true
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
			InstallHint: strings.TrimSpace(req.InstallHint),
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, ok := Resolve(cmd)
		if !ok {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// Missing returns the subset of requirements that could not be resolved.
func Missing(requirements []Requirement) []Status {
	var missing []Status
	for _, status := range CheckBinaries(requirements) {
		if !status.Available {
			missing = append(missing, status)
		}
	}
	return missing
}

// probeVersion runs a best-effort "--version" invocation as a diagnostic
// check that the resolved binary is actually runnable.
func probeVersion(path string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, path, "--version")
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
