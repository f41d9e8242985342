// Package version provides build version information and runtime metadata.
package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	once sync.Once

	// Swapped out in tests.
	execCommand = exec.CommandContext
)

func ensureInitialized() {
	once.Do(func() {
		if Date == "" {
			Date = time.Now().Format("2006-01-02")
		}
		if Commit == "" {
			Commit = getGitCommit()
		}
		if Version == "" {
			Version = getGitVersion()
		}
	})
}

// Reset clears the resolved values so they are recomputed on next use.
func Reset() {
	Version = ""
	Commit = ""
	Date = ""
	once = sync.Once{}
}

func getGitCommit() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := execCommand(ctx, "git", "describe", "--always", "--dirty")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "unknown"
	}
	return strings.TrimSpace(out.String())
}

func getGitVersion() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := execCommand(ctx, "git", "describe", "--tags", "--abbrev=0")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err == nil {
		v := strings.TrimSpace(out.String())
		if v != "" {
			return v
		}
	}
	return "dev"
}

// GetVersion returns the resolved version string.
func GetVersion() string {
	ensureInitialized()
	return Version
}

// GetCommit returns the resolved git commit.
func GetCommit() string {
	ensureInitialized()
	return Commit
}

// GetDate returns the resolved build date.
func GetDate() string {
	ensureInitialized()
	return Date
}

func Info() string {
	ensureInitialized()
	return fmt.Sprintf("genboard %s (commit: %s, built: %s, %s/%s)",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
