package authz

// Entity describes one protected entity kind: the grant name it is addressed
// by and the table/columns the engine composes predicates over. One generic
// engine serves every entity through this descriptor; business modules supply
// their own.
type Entity struct {
	// Name is the entity kind as it appears in grant rows, e.g. "decks".
	Name string
	// Table is the backing relation.
	Table string
	// Column names. IDColumn, RealmColumn and OwnerColumn are mandatory.
	IDColumn    string
	RealmColumn string
	OwnerColumn string
	// ControlledByColumn and FlowStatusColumn are optional; when present they
	// gate the kernel-controlled visibility overlay.
	ControlledByColumn string
	FlowStatusColumn   string
	// RealmKinds lists the realm kinds rows of this entity can belong to.
	RealmKinds []RealmKind
	// KernelOnly marks entities that exist solely inside the kernel realm.
	KernelOnly bool
	// Relations maps entity-specific grant filter names to their columns,
	// e.g. "campaign.id" -> "campaign_id".
	Relations map[string]string
}

// IDFilter is the grant filter name whitelisting a single record of this
// entity.
func (e Entity) IDFilter() string { return e.Name + ".id" }

// kinds returns the realm kinds, defaulting to all three when unset.
func (e Entity) kinds() []RealmKind {
	if e.KernelOnly {
		return []RealmKind{RealmKernel}
	}
	if len(e.RealmKinds) == 0 {
		return []RealmKind{RealmKernel, RealmOrg, RealmUser}
	}
	return e.RealmKinds
}

// hasControlledBy reports whether the overlay columns are declared.
func (e Entity) hasControlledBy() bool { return e.ControlledByColumn != "" }

func (e Entity) hasFlowStatus() bool { return e.FlowStatusColumn != "" }

// Record is the column snapshot of one protected row, used by the
// single-record accessibility check and the bulk orchestrator.
type Record struct {
	ID           int64
	RealmID      int64
	OwnerID      int64
	ControlledBy string
	FlowStatus   string
	// Relations carries the record's values for the descriptor's relation
	// filters, keyed by filter name.
	Relations map[string]int64
}
