package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/magesync/pkg/connector/destination/woowup"
	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
)

// TransformConfig holds the mapping rules of a deployment
type TransformConfig struct {
	// Host is the store base URL product and category URLs are built on
	Host string
	// BranchName is the order branch unless a StoreNameHook names one
	BranchName string
	// Variations are product attribute names copied onto order lines
	Variations []string
	// Categories enables category breadcrumbs on lines and products
	Categories      bool
	CategoriesField string
	URLField        string
}

// Transformer maps source records to destination records
type Transformer struct {
	source     Source
	hooks      *Hooks
	cfg        TransformConfig
	categories CategoryIndex
	logger     *zap.Logger
	now        func() time.Time
}

// NewTransformer creates a transformer reading details from src
func NewTransformer(src Source, hooks *Hooks, cfg TransformConfig, log *zap.Logger) *Transformer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transformer{
		source:     src,
		hooks:      hooks,
		cfg:        cfg,
		categories: CategoryIndex{},
		logger:     log.With(zap.String("component", "transformer")),
		now:        time.Now,
	}
}

// WithClock replaces the clock used for approval times
func (t *Transformer) WithClock(now func() time.Time) *Transformer {
	t.now = now
	return t
}

// SetCategories replaces the category index
func (t *Transformer) SetCategories(idx CategoryIndex) {
	if idx == nil {
		idx = CategoryIndex{}
	}
	t.categories = idx
}

// LoadCategories rebuilds the category index from the source when
// categories are enabled, and clears it otherwise
func (t *Transformer) LoadCategories(ctx context.Context) error {
	if !t.cfg.Categories {
		t.SetCategories(nil)
		return nil
	}
	tree, err := LoadCategoryTree(ctx, t.source, t.cfg.Host, t.logger)
	if err != nil {
		return err
	}
	t.SetCategories(Flatten(tree))
	t.logger.Info("categories loaded", zap.Int("count", len(t.categories)))
	return nil
}

// imageURL picks the last media labelled label, or the one with the lowest
// position when no label matches
func (t *Transformer) imageURL(ctx context.Context, sku, label string) string {
	media := t.source.Media(ctx, sku)
	if len(media) == 0 {
		return ""
	}

	matched := ""
	var first *magento.Media
	for i := range media {
		m := &media[i]
		if label != "" && m.Label.String() == label {
			matched = m.URL.Trim()
		}
		if first == nil || m.Position.Int() < first.Position.Int() {
			first = m
		}
	}
	if matched != "" {
		return matched
	}
	return first.URL.Trim()
}

func (t *Transformer) productURL(p *magento.Product) string {
	path := ""
	if p != nil {
		path = p.Attributes.String(t.cfg.URLField)
	}
	return t.hooks.FilterURL(t.cfg.Host + "/" + path)
}

func (t *Transformer) productCategories(p *magento.Product) []woowup.Category {
	if !t.cfg.Categories || p == nil {
		return nil
	}
	ids := p.Attributes.Strings(t.cfg.CategoriesField)
	if len(ids) == 0 {
		return nil
	}
	return t.categories.Breadcrumb(ids)
}
