package document

import (
	"context"

	"go.uber.org/zap"

	"github.com/muurk/proxycfg/internal/logging"
)

// Store reads and writes the whole configuration document on the agent.
type Store interface {
	GetConfig(ctx context.Context) (Document, error)
	SaveConfig(ctx context.Context, doc Document) error
}

// Controller owns the document being edited together with the proxy view
// settings. It is not safe for concurrent use; the terminal editor calls it
// from its update loop only. Network calls go through Fetch and Push, which
// work on snapshots and may run on any goroutine.
type Controller struct {
	store   Store
	doc     Document
	sortKey SortKey
	filter  string
	loading bool
}

// NewController returns a controller that is loading and holds Default().
func NewController(store Store) *Controller {
	return &Controller{
		store:   store,
		doc:     Default(),
		sortKey: DefaultSortKey,
		loading: true,
	}
}

// Document returns the current snapshot.
func (c *Controller) Document() Document { return c.doc }

// Loading reports whether no document has been loaded yet.
func (c *Controller) Loading() bool { return c.loading }

// SortKey returns the current proxy sort key.
func (c *Controller) SortKey() SortKey { return c.sortKey }

// Filter returns the current proxy filter text.
func (c *Controller) Filter() string { return c.filter }

// Fetch retrieves the document from the store without touching controller
// state. Use Loaded to install the result.
func (c *Controller) Fetch(ctx context.Context) (Document, error) {
	return c.store.GetConfig(ctx)
}

// Loaded installs a fetched document and clears the loading flag.
func (c *Controller) Loaded(doc Document) {
	doc.normalize()
	c.doc = doc
	c.loading = false
}

// Load fetches and installs the document. On failure the controller stays
// loading and the error is logged and returned.
func (c *Controller) Load(ctx context.Context) error {
	doc, err := c.Fetch(ctx)
	if err != nil {
		logging.Warn("Failed to load configuration", zap.Error(err))
		return err
	}
	c.Loaded(doc)
	logging.Debug("Configuration loaded",
		zap.Int("servers", len(doc.Servers)),
		zap.Int("proxies", len(doc.Proxies)),
	)
	return nil
}

// Push sends snapshot to the store. The outcome is logged only.
func (c *Controller) Push(ctx context.Context, snapshot Document) error {
	if err := c.store.SaveConfig(ctx, snapshot); err != nil {
		logging.Error("Failed to save configuration", zap.Error(err))
		return err
	}
	logging.Info("Configuration saved")
	return nil
}

// Save pushes the current snapshot. Use Push from other goroutines.
func (c *Controller) Save(ctx context.Context) error {
	return c.Push(ctx, c.doc)
}

// Update applies a field edit. On error the held document is unchanged.
func (c *Controller) Update(title string, raw any, entry, fieldPos int) error {
	next, err := c.doc.Update(title, raw, entry, fieldPos)
	if err != nil {
		logging.Warn("Rejected field update",
			zap.String("section", title),
			zap.Int("entry", entry),
			zap.Int("field", fieldPos),
			zap.Error(err),
		)
		return err
	}
	c.doc = next
	return nil
}

// Add appends a placeholder entry and clears the proxy filter so the new
// entry is visible.
func (c *Controller) Add(title string) error {
	next, err := c.doc.Add(title)
	if err != nil {
		return err
	}
	c.doc = next
	c.filter = ""
	return nil
}

// Delete removes an entry by canonical index.
func (c *Controller) Delete(title string, entry int) error {
	next, err := c.doc.Delete(title, entry)
	if err != nil {
		return err
	}
	c.doc = next
	return nil
}

// SetSort changes the proxy view order. The document is not modified.
func (c *Controller) SetSort(key SortKey) { c.sortKey = key }

// SetFilter changes the proxy view filter text.
func (c *Controller) SetFilter(text string) { c.filter = text }

// VisibleProxies returns the proxies as the editor shows them: sorted by the
// current key, then filtered.
func (c *Controller) VisibleProxies() []IndexedProxy {
	return FilterProxies(SortProxies(c.doc.Proxies, c.sortKey), c.filter)
}

// TabIndex returns the 1-based keyboard focus position of a field in the
// controller's current view. See TabIndex.
func (c *Controller) TabIndex(title string, pos, fieldPos int) int {
	return TabIndex(len(c.doc.Servers), len(c.VisibleProxies()), title, pos, fieldPos)
}

// TabIndex returns the 1-based keyboard focus position of a field so that
// focus moves agent, servers, proxies, file share from top to bottom, given
// the number of servers and proxies on screen. pos is the position of the
// entry within its displayed list and is ignored for single sections.
func TabIndex(servers, proxies int, title string, pos, fieldPos int) int {
	agent := FieldCount(SectionAgent)
	serverFields := servers * FieldCount(SectionServers)
	proxyFields := proxies * FieldCount(SectionProxies)

	switch title {
	case SectionAgent:
		return fieldPos + 1
	case SectionServers:
		return agent + pos*FieldCount(SectionServers) + fieldPos + 1
	case SectionProxies:
		return agent + serverFields + pos*FieldCount(SectionProxies) + fieldPos + 1
	case SectionFileShare:
		return agent + serverFields + proxyFields + fieldPos + 1
	default:
		return 0
	}
}
