package node

import (
	"errors"
	"net/http"

	"feedcore/internal/domain/entity"
	"feedcore/internal/handler/http/pathutil"
	"feedcore/internal/handler/http/requestid"
	"feedcore/internal/handler/http/respond"
	"feedcore/internal/observability/logging"
	"feedcore/internal/usecase/feedlist"
)

// GetHandler resolves a single feed-list tree node by id.
type GetHandler struct{ Tree *feedlist.Tree }

// ServeHTTP returns a node by id.
// @Summary      Get node
// @Description  Returns a single feed-list tree node (folder, feed, search folder, or source root).
// @Tags         nodes
// @Produce      json
// @Param        id path string true "Node ID"
// @Success      200 {object} DTO
// @Failure      400 {string} string "Bad request - missing node id"
// @Failure      404 {string} string "Not found - node does not exist"
// @Router       /nodes/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, logging.FromContext(ctx))
	reqID := requestid.FromContext(ctx)

	id, err := pathutil.ExtractStringID(r.URL.Path, "/nodes/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	n, err := h.Tree.FindByID(ctx, entity.NodeID(id))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNodeNotFound) {
			code = http.StatusNotFound
		}
		logger.Warn("get node failed", "node_id", id, "error", err.Error(), "request_id", reqID)
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, fromEntity(n))
}
