package catalog

// EngineFeatures describes what a storage engine name supports, mirroring
// the capability bits the original StorageMaterializedView.cpp reads off
// IStorage (supportsReplication, isView, getInMemoryMetadataPtr, ...).
type EngineFeatures struct {
	// IsDictionary marks engines the original explicitly rejects as a
	// target ("Will not create MaterializedView with immutable
	// dictionary as an inner table").
	IsDictionary bool
	// IsViewVariant marks View/LiveView/WindowView-style engines that are
	// themselves virtual and cannot be used as a scratch/target table.
	IsViewVariant bool
	// SupportsMovingData gates scratch-swap: TransferAllDataFrom requires
	// both sides to support it (MergeTree family does).
	SupportsMovingData bool
	// IsPartitioned marks engines with a PARTITION BY clause, relevant to
	// the replicated-scratch-swap restriction documented as out of scope.
	IsPartitioned bool
	// IsReplicated marks Replicated* engine variants.
	IsReplicated bool
}

// EngineRegistry maps an ENGINE name, as it appears in a storage clause, to
// its feature bits. The only engine the teacher actually implements is
// MergeTree; ReplicatedMergeTree is registered with the same data-moving
// support plus IsReplicated. Dictionary and the view variants are
// registered so InnerTableBuilder can reject them as inner tables, and
// InnerTableBuilder rejects any name not registered here.
type EngineRegistry struct {
	features map[string]EngineFeatures
}

// NewEngineRegistry returns a registry seeded with the engines vistadb
// understands.
func NewEngineRegistry() *EngineRegistry {
	r := &EngineRegistry{features: make(map[string]EngineFeatures)}
	r.Register("MergeTree", EngineFeatures{SupportsMovingData: true})
	r.Register("ReplicatedMergeTree", EngineFeatures{SupportsMovingData: true, IsReplicated: true})
	r.Register("Dictionary", EngineFeatures{IsDictionary: true})
	r.Register("View", EngineFeatures{IsViewVariant: true})
	r.Register("MaterializedView", EngineFeatures{IsViewVariant: true})
	return r
}

// Register adds or overwrites an engine's feature bits.
func (r *EngineRegistry) Register(name string, f EngineFeatures) {
	r.features[name] = f
}

// Lookup returns the feature bits for name, and false if name is unknown
// (InnerTableBuilder rejects an unknown engine with KindUnknownStorage).
func (r *EngineRegistry) Lookup(name string) (EngineFeatures, bool) {
	f, ok := r.features[name]
	return f, ok
}
