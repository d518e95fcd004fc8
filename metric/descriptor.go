package metric

import "sort"

// Descriptor is an immutable (id, key path, display name, scale) record
// identifying one time series to a UI collaborator. Id is assigned at
// registration and never changes; two descriptors may share a key path.
type Descriptor struct {
	ID    int
	Key   Path
	Name  string
	Scale float64
}

// SectionHandle identifies a named, ordered group of descriptor ids started
// by Table.BeginSection.
type SectionHandle int

// Table is the descriptor registry: descriptors indexed by id and grouped
// by key path, an ordered list of named sections, and a "transients" list
// for descriptors auto-created from observed data paths that were never
// preconfigured. Ids are dense and assigned in insertion order; sections
// and transients are disjoint by descriptor id.
type Table struct {
	byID  []Descriptor
	byKey map[string][]int // Path.raw -> descriptor ids

	sectionNames []string
	sectionIDs   [][]int
	transients   []int

	seenKeys map[string]bool // every key ever observed via EnsureFor
}

// NewTable returns an empty descriptor table.
func NewTable() *Table {
	return &Table{
		byKey:    make(map[string][]int),
		seenKeys: make(map[string]bool),
	}
}

// Register assigns the next id to a descriptor built from key, name and
// scale, appending it to the by-id vector and the by-key multimap, and
// returns the assigned id.
func (t *Table) Register(key Path, name string, scale float64) int {
	id := len(t.byID)
	t.byID = append(t.byID, Descriptor{ID: id, Key: key, Name: name, Scale: scale})
	t.byKey[key.raw] = append(t.byKey[key.raw], id)
	return id
}

// BeginSection starts a new ordered group and returns a handle for
// RegisterIn calls that attach descriptors to it.
func (t *Table) BeginSection(name string) SectionHandle {
	t.sectionNames = append(t.sectionNames, name)
	t.sectionIDs = append(t.sectionIDs, nil)
	return SectionHandle(len(t.sectionNames) - 1)
}

// RegisterIn registers a descriptor built from key, name and scale and
// attaches its id to the section identified by h.
func (t *Table) RegisterIn(h SectionHandle, key Path, name string, scale float64) int {
	id := t.Register(key, name, scale)
	t.sectionIDs[h] = append(t.sectionIDs[h], id)
	return id
}

// EnsureFor creates a default descriptor for key if none exists yet, adding
// it to transients. The default display name is the key's segments joined
// by spaces and the default scale is 1.0, per the data model.
func (t *Table) EnsureFor(key Path) {
	t.seenKeys[key.raw] = true
	if _, ok := t.byKey[key.raw]; ok {
		return
	}
	id := t.Register(key, key.JoinedWithSpaces(), 1.0)
	t.transients = append(t.transients, id)
}

// Descriptor resolves a descriptor by id. The second return value is false
// if id is out of range.
func (t *Table) Descriptor(id int) (Descriptor, bool) {
	if id < 0 || id >= len(t.byID) {
		return Descriptor{}, false
	}
	return t.byID[id], true
}

// IDsForKey returns every descriptor id registered against key, in
// registration order.
func (t *Table) IDsForKey(key Path) []int {
	return t.byKey[key.raw]
}

// Sections returns the section names in declaration order alongside their
// descriptor ids.
func (t *Table) Sections() (names []string, ids [][]int) {
	return t.sectionNames, t.sectionIDs
}

// Transients returns the ids of descriptors auto-created for observed
// paths that were never preconfigured.
func (t *Table) Transients() []int {
	return t.transients
}

// CatalogEntry is one descriptor literal from an external catalog, as
// decoded by the catalog package.
type CatalogEntry struct {
	Key   Path
	Name  string
	Scale float64
}

// LoadCatalog replaces the section list with sections, a map from section
// name to ordered descriptor literals, preserving declaration order via the
// order slice. After loading, any key previously observed via EnsureFor
// that is not covered by the new catalog is reclassified as a transient.
func (t *Table) LoadCatalog(order []string, sections map[string][]CatalogEntry) {
	t.sectionNames = nil
	t.sectionIDs = nil

	covered := make(map[string]bool)
	for _, name := range order {
		h := t.BeginSection(name)
		for _, entry := range sections[name] {
			scale := entry.Scale
			if scale == 0 {
				scale = 1.0
			}
			t.RegisterIn(h, entry.Key, entry.Name, scale)
			covered[entry.Key.raw] = true
		}
	}

	t.transients = t.transients[:0]
	for key := range t.seenKeys {
		if covered[key] {
			continue
		}
		ids := t.byKey[key]
		if len(ids) == 0 {
			continue
		}
		t.transients = append(t.transients, ids...)
	}
	sort.Ints(t.transients)
}
