package node

import (
	"net/http"

	"feedcore/internal/usecase/feedlist"
)

// Register registers the node introspection routes with mux.
func Register(mux *http.ServeMux, tree *feedlist.Tree) {
	mux.Handle("GET /nodes/{id}/children", ChildrenHandler{Tree: tree})
	mux.Handle("GET /nodes/{id}", GetHandler{Tree: tree})
}
