package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/magesync/pkg/connector/destination/woowup"
	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
)

// CategoryNode is a category with its detail resolved
type CategoryNode struct {
	ID       string
	Name     string
	URL      string
	Image    string
	Children []CategoryNode
}

// CategoryIndex maps a category id to its flattened form, whose Path holds
// the ancestor ids from the root down
type CategoryIndex map[string]woowup.Category

// CategorySource is what loading the category tree needs from the source
type CategorySource interface {
	CategoryTree(ctx context.Context) (*magento.CategoryNode, error)
	Category(ctx context.Context, id string) *magento.CategoryInfo
}

// LoadCategoryTree fetches the tree below the root and resolves each node's
// detail. A node whose detail cannot be fetched keeps an empty url.
func LoadCategoryTree(ctx context.Context, src CategorySource, host string, log *zap.Logger) ([]CategoryNode, error) {
	if log == nil {
		log = zap.NewNop()
	}
	root, err := src.CategoryTree(ctx)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}
	return resolveCategories(ctx, src, host, root.Children, log), nil
}

func resolveCategories(ctx context.Context, src CategorySource, host string, nodes []magento.CategoryNode, log *zap.Logger) []CategoryNode {
	out := make([]CategoryNode, 0, len(nodes))
	for _, n := range nodes {
		log.Debug("searching info for category", zap.String("name", n.Name.String()))
		node := CategoryNode{
			ID:   n.CategoryID.Trim(),
			Name: n.Name.String(),
		}
		if info := src.Category(ctx, node.ID); info != nil && !info.URLPath.IsEmpty() && host != "" {
			node.URL = host + "/" + info.URLPath.Trim()
		}
		if len(n.Children) > 0 {
			node.Children = resolveCategories(ctx, src, host, n.Children, log)
		}
		out = append(out, node)
	}
	return out
}

// Flatten indexes every node of tree by id. The first occurrence of an id wins.
func Flatten(tree []CategoryNode) CategoryIndex {
	idx := CategoryIndex{}
	flatten(idx, tree, nil)
	return idx
}

func flatten(idx CategoryIndex, nodes []CategoryNode, parentPath []string) {
	for _, n := range nodes {
		if _, seen := idx[n.ID]; !seen {
			idx[n.ID] = woowup.Category{
				ID:       n.ID,
				Name:     titleCase(n.Name),
				URL:      n.URL,
				ImageURL: n.Image,
				Path:     append([]string(nil), parentPath...),
			}
		}
		if len(n.Children) > 0 {
			path := append(append([]string(nil), parentPath...), n.ID)
			flatten(idx, n.Children, path)
		}
	}
}

// Breadcrumb returns the ancestor-to-leaf categories of the last id in ids.
// An unknown leaf yields no categories; the walk up stops at the first
// unknown ancestor.
func (idx CategoryIndex) Breadcrumb(ids []string) []woowup.Category {
	if len(ids) == 0 {
		return []woowup.Category{}
	}
	leaf, ok := idx[ids[len(ids)-1]]
	if !ok {
		return []woowup.Category{}
	}

	crumbs := []woowup.Category{leaf}
	for i := len(leaf.Path) - 1; i >= 0; i-- {
		parent, ok := idx[leaf.Path[i]]
		if !ok {
			break
		}
		crumbs = append([]woowup.Category{parent}, crumbs...)
	}
	return crumbs
}
