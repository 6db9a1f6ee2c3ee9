// Package deps locates the optional helper programs verbatim shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Requirement names an external program and what it is used for.
type Requirement struct {
	Name    string
	Command string
}

// Status reports whether a requirement was found on PATH.
type Status struct {
	Name      string
	Command   string
	Available bool
	Path      string
	Detail    string
}

// CheckBinaries looks up every requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{Name: req.Name, Command: cmd}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
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

// FirstAvailable returns the first found status, if any.
func FirstAvailable(statuses []Status) (Status, bool) {
	for _, s := range statuses {
		if s.Available {
			return s, true
		}
	}
	return Status{}, false
}

// ClipboardRequirements lists the programs the clipboard library can drive on
// this platform, in the order it tries them.
func ClipboardRequirements() []Requirement {
	return clipboardRequirements(runtime.GOOS)
}

func clipboardRequirements(goos string) []Requirement {
	switch goos {
	case "darwin":
		return []Requirement{{Name: "pbcopy", Command: "pbcopy"}}
	case "windows":
		return nil
	default:
		return []Requirement{
			{Name: "xclip", Command: "xclip"},
			{Name: "xsel", Command: "xsel"},
			{Name: "wl-clipboard", Command: "wl-copy"},
			{Name: "termux", Command: "termux-clipboard-set"},
		}
	}
}
