package catalog

import "sync"

// DependencyGraph tracks which views read from which source tables, the
// catalog-side half of the original's DatabaseCatalog::addViewDependency /
// getDependentViews. It is deliberately a flat adjacency map, not a general
// DAG library: a materialized view's "select_query" names exactly one
// source, so fan-out only ever happens on the source side (many views per
// source), never on the view side.
type DependencyGraph struct {
	mu           sync.RWMutex
	viewsBySource map[string][]StorageID // source qualified name -> dependent view ids
	sourceByView  map[string]StorageID   // view qualified name -> its source id
}

func newDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		viewsBySource: make(map[string][]StorageID),
		sourceByView:  make(map[string]StorageID),
	}
}

// Add records that view depends on source, the CatalogDependencyBinder's
// bind operation (spec.md §4.4).
func (g *DependencyGraph) Add(source, view StorageID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := source.QualifiedName()
	for _, v := range g.viewsBySource[key] {
		if v.Equal(view) {
			return
		}
	}
	g.viewsBySource[key] = append(g.viewsBySource[key], view)
	g.sourceByView[view.QualifiedName()] = source
}

// Remove undoes Add, the unbind half of CatalogDependencyBinder, used on
// drop and on rename-away-from-source.
func (g *DependencyGraph) Remove(source, view StorageID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := source.QualifiedName()
	views := g.viewsBySource[key]
	for i, v := range views {
		if v.Equal(view) {
			g.viewsBySource[key] = append(views[:i], views[i+1:]...)
			break
		}
	}
	if len(g.viewsBySource[key]) == 0 {
		delete(g.viewsBySource, key)
	}
	delete(g.sourceByView, view.QualifiedName())
}

// Update rewrites a single edge, used when a view is renamed: the edge must
// move from oldView to newView without touching the source side.
func (g *DependencyGraph) Update(source, oldView, newView StorageID) {
	g.Remove(source, oldView)
	g.Add(source, newView)
}

// DependentViews returns every view currently bound to source.
func (g *DependencyGraph) DependentViews(source StorageID) []StorageID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	views := g.viewsBySource[source.QualifiedName()]
	out := make([]StorageID, len(views))
	copy(out, views)
	return out
}

// SourceOf returns the source a view depends on, if any.
func (g *DependencyGraph) SourceOf(view StorageID) (StorageID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	src, ok := g.sourceByView[view.QualifiedName()]
	return src, ok
}
