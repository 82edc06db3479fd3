package searchfolder_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"feedcore/internal/domain/entity"
	"feedcore/internal/handler/http/searchfolder"
	"feedcore/internal/infra/adapter/persistence/memory"
	"feedcore/internal/usecase/feedlist"
	"feedcore/internal/usecase/rules"
)

func TestGetHandler_Success(t *testing.T) {
	store := memory.New()
	nodes := store.Nodes()
	ctx := context.Background()

	folder := entity.NewNode(entity.KindSearchFolder, "Unread Go posts", "")
	folder.RuleSet = &entity.RuleSet{
		Rules:      []entity.Rule{{InfoID: "title", Value: "go", Additive: true}},
		Mode:       entity.MatchAny,
		UnreadOnly: true,
	}
	if err := nodes.Save(ctx, folder); err != nil {
		t.Fatalf("seed folder: %v", err)
	}

	item := &entity.Item{Title: "go rocks", Read: false}
	id, err := store.Items().Insert(ctx, item)
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	item.ID = id

	if err := store.SearchFolders().Save(ctx, &entity.SearchFolderView{NodeID: folder.ID, ItemIDs: []entity.ItemID{id}}); err != nil {
		t.Fatalf("seed view: %v", err)
	}

	tree := feedlist.New(nodes)
	engine := rules.New(nodes, store.Items(), store.SearchFolders())
	handler := searchfolder.GetHandler{Tree: tree, Engine: engine}

	req := httptest.NewRequest(http.MethodGet, "/nodes/"+string(folder.ID)+"/rules", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var dto searchfolder.DTO
	if err := json.NewDecoder(rr.Body).Decode(&dto); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dto.ItemCount != 1 {
		t.Errorf("ItemCount = %d, want 1", dto.ItemCount)
	}
	if dto.UnreadCount != 1 {
		t.Errorf("UnreadCount = %d, want 1", dto.UnreadCount)
	}
	if dto.Mode != "any" {
		t.Errorf("Mode = %q, want any", dto.Mode)
	}
	if len(dto.Rules) != 1 || dto.Rules[0].Value != "go" {
		t.Errorf("Rules = %+v, want one rule with value 'go'", dto.Rules)
	}
}

func TestGetHandler_NotSearchFolder(t *testing.T) {
	store := memory.New()
	nodes := store.Nodes()
	ctx := context.Background()

	folder := entity.NewNode(entity.KindFolder, "Plain Folder", "")
	if err := nodes.Save(ctx, folder); err != nil {
		t.Fatalf("seed folder: %v", err)
	}

	tree := feedlist.New(nodes)
	engine := rules.New(nodes, store.Items(), store.SearchFolders())
	handler := searchfolder.GetHandler{Tree: tree, Engine: engine}

	req := httptest.NewRequest(http.MethodGet, "/nodes/"+string(folder.ID)+"/rules", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
}

func TestGetHandler_NodeNotFound(t *testing.T) {
	store := memory.New()
	nodes := store.Nodes()

	tree := feedlist.New(nodes)
	engine := rules.New(nodes, store.Items(), store.SearchFolders())
	handler := searchfolder.GetHandler{Tree: tree, Engine: engine}

	req := httptest.NewRequest(http.MethodGet, "/nodes/does-not-exist/rules", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
