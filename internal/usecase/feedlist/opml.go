package feedlist

import (
	"context"
	"encoding/xml"
	"fmt"

	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// opmlDocument is the root <opml> element (spec §6 "OPML import/export").
type opmlDocument struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Body    opmlBody `xml:"body"`
}

type opmlBody struct {
	Outlines []opmlOutline `xml:"outline"`
}

// opmlOutline is the single recognised unit, per spec §6: `type`
// (rss/vfolder/absent for folder), `text`/`title`, `xmlUrl`, `htmlUrl`,
// `description`, plus the search-folder rule extensions `rule`, `value`,
// `additive`.
type opmlOutline struct {
	Type        string        `xml:"type,attr,omitempty"`
	Text        string        `xml:"text,attr"`
	Title       string        `xml:"title,attr,omitempty"`
	XMLURL      string        `xml:"xmlUrl,attr,omitempty"`
	HTMLURL     string        `xml:"htmlUrl,attr,omitempty"`
	Description string        `xml:"description,attr,omitempty"`
	Rule        string        `xml:"rule,attr,omitempty"`
	Value       string        `xml:"value,attr,omitempty"`
	Additive    string        `xml:"additive,attr,omitempty"`
	Outlines    []opmlOutline `xml:"outline"`
}

// Exporter walks the tree and renders it as OPML.
type Exporter struct {
	tree *Tree
	subs repository.SubscriptionRepository
}

// NewExporter returns an Exporter backed by tree and subs (subscription
// source URLs are not stored on the node itself).
func NewExporter(tree *Tree, subs repository.SubscriptionRepository) *Exporter {
	return &Exporter{tree: tree, subs: subs}
}

// Export renders root's children as an OPML document (spec §6). root
// itself is not rendered as an outline; its children become the top-level
// <outline> elements, matching OPML's bodiless-root convention.
func (e *Exporter) Export(ctx context.Context, root entity.NodeID) ([]byte, error) {
	rootNode, err := e.tree.FindByID(ctx, root)
	if err != nil {
		return nil, err
	}

	doc := opmlDocument{Version: "2.0"}
	for _, childID := range rootNode.Children {
		outline, err := e.buildOutline(ctx, childID)
		if err != nil {
			return nil, err
		}
		doc.Body.Outlines = append(doc.Body.Outlines, outline)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func (e *Exporter) buildOutline(ctx context.Context, nodeID entity.NodeID) (opmlOutline, error) {
	node, err := e.tree.FindByID(ctx, nodeID)
	if err != nil {
		return opmlOutline{}, err
	}

	outline := opmlOutline{Text: node.Title, Title: node.Title}

	switch node.Kind {
	case entity.KindFolder, entity.KindSourceRoot:
		for _, childID := range node.Children {
			child, err := e.buildOutline(ctx, childID)
			if err != nil {
				return opmlOutline{}, err
			}
			outline.Outlines = append(outline.Outlines, child)
		}
	case entity.KindFeed:
		outline.Type = "rss"
		if node.SubscriptionID != "" {
			sub, err := e.subs.Get(ctx, node.SubscriptionID)
			if err != nil {
				return opmlOutline{}, err
			}
			outline.XMLURL = sub.Source
		}
	case entity.KindSearchFolder:
		outline.Type = "vfolder"
		if node.RuleSet != nil {
			for _, rule := range node.RuleSet.Rules {
				outline.Outlines = append(outline.Outlines, opmlOutline{
					Type:     "rule",
					Rule:     string(rule.InfoID),
					Value:    rule.Value,
					Additive: boolAttr(rule.Additive),
				})
			}
		}
	default:
		return opmlOutline{}, fmt.Errorf("node %q: %w", nodeID, entity.ErrInvalidNodeKind)
	}

	return outline, nil
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Importer builds nodes (and, for feed outlines, subscriptions) from OPML.
type Importer struct {
	tree *Tree
	subs repository.SubscriptionRepository
}

// NewImporter returns an Importer backed by tree and subs.
func NewImporter(tree *Tree, subs repository.SubscriptionRepository) *Importer {
	return &Importer{tree: tree, subs: subs}
}

// Import parses data as OPML and inserts its outlines as children of
// parent, in document order (spec §6).
func (im *Importer) Import(ctx context.Context, data []byte, parent entity.NodeID) error {
	var doc opmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse OPML: %w", err)
	}
	for i, outline := range doc.Body.Outlines {
		if err := im.importOutline(ctx, outline, parent, i); err != nil {
			return err
		}
	}
	return nil
}

func (im *Importer) importOutline(ctx context.Context, outline opmlOutline, parent entity.NodeID, position int) error {
	title := outline.Title
	if title == "" {
		title = outline.Text
	}

	switch outline.Type {
	case "", "folder":
		node := entity.NewNode(entity.KindFolder, title, parent)
		if err := im.tree.AddChild(ctx, parent, node, position); err != nil {
			return err
		}
		for i, child := range outline.Outlines {
			if err := im.importOutline(ctx, child, node.ID, i); err != nil {
				return err
			}
		}
	case "rss":
		node := entity.NewNode(entity.KindFeed, title, parent)
		sub := &entity.Subscription{
			ID:                    entity.SubscriptionID(node.ID),
			Source:                outline.XMLURL,
			OriginalSource:        outline.XMLURL,
			UpdateIntervalMinutes: entity.UpdateIntervalDefault,
		}
		if err := im.subs.Save(ctx, sub); err != nil {
			return err
		}
		node.SubscriptionID = sub.ID
		if err := im.tree.AddChild(ctx, parent, node, position); err != nil {
			return err
		}
	case "vfolder":
		ruleSet := &entity.RuleSet{Mode: entity.MatchAny}
		for _, child := range outline.Outlines {
			if child.Type != "rule" {
				continue
			}
			ruleSet.Rules = append(ruleSet.Rules, entity.Rule{
				InfoID:   entity.RuleInfoID(child.Rule),
				Value:    child.Value,
				Additive: child.Additive == "true",
			})
		}
		node := entity.NewNode(entity.KindSearchFolder, title, parent)
		node.RuleSet = ruleSet
		if err := im.tree.AddChild(ctx, parent, node, position); err != nil {
			return err
		}
	default:
		return fmt.Errorf("outline type %q: %w", outline.Type, entity.ErrInvalidNodeKind)
	}
	return nil
}
