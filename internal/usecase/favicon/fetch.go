package favicon

import (
	"context"
	"fmt"

	"feedcore/internal/domain/entity"
	"feedcore/internal/infra/runner"
)

// FetchFunc performs one candidate GET and returns its body and content
// type. Discover treats a non-nil error as "try the next candidate".
type FetchFunc func(ctx context.Context, url string) (data []byte, contentType string, err error)

// RunnerFetch adapts internal/infra/runner's async callback submission to
// the synchronous FetchFunc shape Discover drives, submitting every probe
// with priority=true (spec §4.J: "probe candidates sequentially with high
// priority") and owner so a cancelled node's in-flight probe is dropped the
// same way a subscription fetch is. AllowCommands is left false: favicon
// downloads, like enclosure downloads, never execute a shell command (spec
// §4.B.1).
func RunnerFetch(r *runner.Runner, owner string) FetchFunc {
	return func(ctx context.Context, url string) ([]byte, string, error) {
		req := &entity.UpdateRequest{Source: url, Owner: owner}

		resultCh := make(chan *entity.UpdateResult, 1)
		errCh := make(chan error, 1)
		r.Submit(req, true, func(result *entity.UpdateResult, err error) {
			if err != nil {
				errCh <- err
				return
			}
			resultCh <- result
		})

		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case err := <-errCh:
			return nil, "", err
		case result := <-resultCh:
			if !result.Success() {
				return nil, "", fmt.Errorf("favicon candidate %s: status %d", url, result.HTTPStatus)
			}
			return result.Data, result.ContentType, nil
		}
	}
}
