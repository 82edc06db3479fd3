package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"feedcore/internal/domain/entity"
)

// gopherMaxBytes and gopherTimeout bound the directory-listing fetch (spec
// §4.B.3).
const (
	gopherMaxBytes = 5 * 1024 * 1024
	gopherTimeout  = 15 * time.Second
	gopherMaxItems = 25
	gopherDefaultPort = "70"
)

// kindOf classifies a request source into one of the four job kinds (spec
// §4.B), for metrics labelling.
func kindOf(source string) string {
	switch {
	case strings.HasPrefix(source, "|"):
		return "command"
	case strings.HasPrefix(source, "gopher://"):
		return "gopher"
	case strings.HasPrefix(source, "file://"), !strings.Contains(source, "://"):
		return "file"
	default:
		return "http"
	}
}

// dispatch selects a job kind by inspecting the request source, per spec
// §4.B's four job kinds.
func (r *Runner) dispatch(ctx context.Context, job *Job) (*entity.UpdateResult, error) {
	source := job.Request.Source

	switch {
	case strings.HasPrefix(source, "|"):
		return r.runCommand(ctx, job)
	case strings.HasPrefix(source, "file://"):
		return readFile(strings.TrimPrefix(source, "file://"))
	case strings.HasPrefix(source, "gopher://"):
		return fetchGopher(ctx, source)
	case !strings.Contains(source, "://"):
		return readFile(source)
	default:
		var result *entity.UpdateResult
		_, err := r.breaker.Execute(func() (interface{}, error) {
			res, fetchErr := r.transport.Fetch(ctx, job.Request)
			result = res
			return res, fetchErr
		})
		return result, err
	}
}

// runCommand executes job.Request.Source (minus its leading `|`) through a
// shell, subject to allowCommands and a wall-clock timeout (spec §4.B.1).
func (r *Runner) runCommand(ctx context.Context, job *Job) (*entity.UpdateResult, error) {
	if !job.Request.AllowCommands {
		return &entity.UpdateResult{
			Source:     job.Request.Source,
			HTTPStatus: entity.StatusCommandDisallowed,
		}, nil
	}

	command := strings.TrimPrefix(job.Request.Source, "|")

	cmdCtx, cancel := context.WithTimeout(ctx, r.cmdTimeout)
	defer cancel()

	// Previous Liferea versions ran through popen() and many setups depend
	// on that behaviour, so this still runs through a shell rather than
	// exec'ing the command directly.
	cmd := exec.CommandContext(cmdCtx, "/bin/sh", "-c", command)
	var stdout strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	job.setCmd(cmd)
	defer job.clearCmd()

	err := cmd.Run()
	if cmdCtx.Err() == context.DeadlineExceeded {
		return &entity.UpdateResult{
			Source:     job.Request.Source,
			HTTPStatus: entity.StatusCommandTimeout,
		}, nil
	}
	if err != nil {
		return &entity.UpdateResult{
			Source:     job.Request.Source,
			HTTPStatus: entity.StatusCommandFailure,
		}, nil
	}

	data := []byte(stdout.String())
	return &entity.UpdateResult{
		Source:     job.Request.Source,
		HTTPStatus: entity.StatusLocalFileOK,
		Data:       data,
		Size:       len(data),
	}, nil
}

// readFile handles `file://<path>` and bare, scheme-less paths (spec
// §4.B.2). A trailing `#fragment` is stripped before the read.
func readFile(path string) (*entity.UpdateResult, error) {
	if idx := strings.IndexByte(path, '#'); idx >= 0 {
		path = path[:idx]
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return &entity.UpdateResult{
			Source:     "file://" + path,
			HTTPStatus: entity.StatusLocalFileOK,
			Data:       data,
			Size:       len(data),
		}, nil
	case os.IsNotExist(err):
		return &entity.UpdateResult{Source: "file://" + path, HTTPStatus: 404}, nil
	case os.IsPermission(err):
		return &entity.UpdateResult{Source: "file://" + path, HTTPStatus: entity.StatusCommandDisallowed}, nil
	default:
		return &entity.UpdateResult{Source: "file://" + path, HTTPStatus: 403}, nil
	}
}

// fetchGopher opens a gopher directory listing and synthesises item URLs
// for every type-0 (text) entry, capped at gopherMaxItems (spec §4.B.3).
func fetchGopher(ctx context.Context, source string) (*entity.UpdateResult, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse gopher URL %q: %w", source, err)
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = gopherDefaultPort
	}
	selector := u.Path
	if selector == "" {
		selector = "/"
	}

	dialCtx, cancel := context.WithTimeout(ctx, gopherTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return &entity.UpdateResult{Source: source, HTTPStatus: 0}, nil
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(gopherTimeout))
	if _, err := conn.Write([]byte(selector + "\r\n")); err != nil {
		return &entity.UpdateResult{Source: source, HTTPStatus: 0}, nil
	}

	limited := io.LimitReader(conn, gopherMaxBytes)
	raw, err := io.ReadAll(limited)
	if err != nil && len(raw) == 0 {
		return &entity.UpdateResult{Source: source, HTTPStatus: 0}, nil
	}

	listing := parseGopherListing(raw, host, port)
	return &entity.UpdateResult{
		Source:     source,
		HTTPStatus: entity.StatusLocalFileOK,
		Data:       listing,
		Size:       len(listing),
	}, nil
}

// parseGopherListing converts a raw gopher menu into a synthesised
// newline-delimited list of `gopher://host:port/0<selector>` URLs for every
// type-0 entry, capped at gopherMaxItems.
func parseGopherListing(raw []byte, host, port string) []byte {
	var out strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(string(raw)))
	count := 0
	for scanner.Scan() && count < gopherMaxItems {
		line := scanner.Text()
		if line == "." || line == "" {
			continue
		}
		if line[0] != '0' {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		selector := fields[1]
		fmt.Fprintf(&out, "gopher://%s:%s/0%s\n", host, port, selector)
		count++
	}
	return []byte(out.String())
}
