package searchfolder

import (
	"errors"
	"net/http"

	"feedcore/internal/domain/entity"
	"feedcore/internal/handler/http/pathutil"
	"feedcore/internal/handler/http/requestid"
	"feedcore/internal/handler/http/respond"
	"feedcore/internal/observability/logging"
	"feedcore/internal/usecase/feedlist"
	"feedcore/internal/usecase/rules"
)

// GetHandler returns a search folder's rule set and derived counts.
type GetHandler struct {
	Tree   *feedlist.Tree
	Engine *rules.Engine
}

// ServeHTTP returns a search folder's rule set plus its materialised
// item/unread counts.
// @Summary      Get search folder contents
// @Description  Returns a search-folder node's rule set and its current item/unread counts, derived from the materialised view.
// @Tags         search-folders
// @Produce      json
// @Param        id path string true "Search folder node ID"
// @Success      200 {object} DTO
// @Failure      400 {string} string "Bad request - missing node id"
// @Failure      404 {string} string "Not found - node does not exist"
// @Failure      422 {string} string "Unprocessable - node is not a search folder"
// @Router       /nodes/{id}/rules [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, logging.FromContext(ctx))
	reqID := requestid.FromContext(ctx)

	id, err := pathutil.ExtractStringID(r.URL.Path, "/nodes/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	nodeID := entity.NodeID(id)
	n, err := h.Tree.FindByID(ctx, nodeID)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNodeNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	if n.Kind != entity.KindSearchFolder {
		respond.SafeError(w, http.StatusUnprocessableEntity, errors.New("node is not a search folder"))
		return
	}

	total, unread, err := h.Engine.Counts(ctx, nodeID)
	if err != nil {
		logger.Warn("search folder counts failed", "node_id", id, "error", err.Error(), "request_id", reqID)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, fromRuleSet(n, total, unread))
}
