package preflight

import (
	"fmt"
	"strings"

	"takeslice/internal/config"
	"takeslice/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks a slicing run needs. The video directory is only
// checked when configured and withVideo is set.
func RunAll(cfg *config.Config, withVideo bool) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result
	for _, status := range CheckSystemDeps(cfg) {
		if status.Optional && !status.Available {
			continue
		}
		results = append(results, fromStatus(status))
	}
	results = append(results, CheckDirectoryReadable("Sessions directory", cfg.Paths.SessionsDir))
	if withVideo && cfg.Paths.VideoDir != "" {
		results = append(results, CheckDirectoryAccess("Video directory", cfg.Paths.VideoDir))
	}
	results = append(results, CheckOutputDirectory("Output directory", cfg.Paths.OutputDir))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Summary joins failed results into one line.
func Summary(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range Failed(results) {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return strings.Join(parts, "; ")
}

func fromStatus(status deps.Status) Result {
	if status.Available {
		return Result{Name: status.Name, Passed: true, Detail: status.Path}
	}
	return Result{Name: status.Name, Detail: status.Detail}
}
