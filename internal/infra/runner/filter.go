package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"feedcore/internal/domain/entity"
)

// filterTimeout bounds a post-filter's own execution the same way a command
// job is bounded (spec §4.B: filter failures must not hang a worker slot).
const filterTimeout = 60 * time.Second

// applyFilter runs result through job.Request.FilterCmd's post-filter step
// and rewrites result.Data/Size in place (spec §4.B). Filter failures never
// fail the job; they clear the body and record FilterErrors instead.
func applyFilter(result *entity.UpdateResult, filterCmd string) {
	if strings.HasSuffix(filterCmd, ".xsl") {
		applyXSLT(result, filterCmd)
		return
	}
	applyShellFilter(result, filterCmd)
}

// applyXSLT shells out to xsltproc since no XSLT processor exists among
// this module's dependencies; it is otherwise identical in shape to
// applyShellFilter.
func applyXSLT(result *entity.UpdateResult, stylesheet string) {
	ctx, cancel := context.WithTimeout(context.Background(), filterTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "xsltproc", stylesheet, "-")
	cmd.Stdin = bytes.NewReader(result.Data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		result.Data = nil
		result.Size = 0
		result.FilterErrors = "xslt filter: " + firstLine(stderr.String(), err)
		return
	}
	result.Data = stdout.Bytes()
	result.Size = stdout.Len()
}

// applyShellFilter writes result.Data to a temp file, runs
// `<filterCmd> < tempfile`, and captures stdout as the new body (spec
// §4.B). The temp file is removed on every exit path.
func applyShellFilter(result *entity.UpdateResult, filterCmd string) {
	tmp, err := os.CreateTemp("", "feedcore-filter-*")
	if err != nil {
		result.Data = nil
		result.Size = 0
		result.FilterErrors = "filter: " + err.Error()
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(result.Data); err != nil {
		tmp.Close()
		result.Data = nil
		result.Size = 0
		result.FilterErrors = "filter: " + err.Error()
		return
	}
	tmp.Close()

	in, err := os.Open(tmpPath)
	if err != nil {
		result.Data = nil
		result.Size = 0
		result.FilterErrors = "filter: " + err.Error()
		return
	}
	defer in.Close()

	ctx, cancel := context.WithTimeout(context.Background(), filterTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", filterCmd)
	cmd.Stdin = in
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		result.Data = nil
		result.Size = 0
		result.FilterErrors = "filter: " + firstLine(stderr.String(), err)
		return
	}
	result.Data = stdout.Bytes()
	result.Size = stdout.Len()
}

func firstLine(stderr string, err error) string {
	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		if idx := strings.IndexByte(stderr, '\n'); idx >= 0 {
			return stderr[:idx]
		}
		return stderr
	}
	return err.Error()
}
