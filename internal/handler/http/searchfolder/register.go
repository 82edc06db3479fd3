package searchfolder

import (
	"net/http"

	"feedcore/internal/usecase/feedlist"
	"feedcore/internal/usecase/rules"
)

// Register registers the search-folder introspection route with mux.
func Register(mux *http.ServeMux, tree *feedlist.Tree, engine *rules.Engine) {
	mux.Handle("GET /nodes/{id}/rules", GetHandler{Tree: tree, Engine: engine})
}
