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

// ChildrenHandler lists the direct children of a folder/source-root node.
type ChildrenHandler struct{ Tree *feedlist.Tree }

// ServeHTTP returns a node's direct children.
// @Summary      List node children
// @Description  Returns the direct children of a folder or source-root node, in tree order.
// @Tags         nodes
// @Produce      json
// @Param        id path string true "Parent node ID"
// @Success      200 {array} DTO
// @Failure      400 {string} string "Bad request - missing node id"
// @Failure      404 {string} string "Not found - parent does not exist"
// @Router       /nodes/{id}/children [get]
func (h ChildrenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, logging.FromContext(ctx))
	reqID := requestid.FromContext(ctx)

	id, err := pathutil.ExtractStringID(r.URL.Path, "/nodes/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	dtos := make([]DTO, 0)
	err = h.Tree.ForEachChild(ctx, entity.NodeID(id), func(child *entity.Node) error {
		dtos = append(dtos, fromEntity(child))
		return nil
	})
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNodeNotFound) {
			code = http.StatusNotFound
		}
		logger.Warn("list node children failed", "node_id", id, "error", err.Error(), "request_id", reqID)
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, dtos)
}
