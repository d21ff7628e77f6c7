package regmap

// A Row is the tooling view of one register.
type Row struct {
	Name       string     `json:"name"`
	Address    uint64     `json:"address"`
	Offset     uint64     `json:"offset"`
	Width      uint       `json:"width"`
	Permission Permission `json:"permission"`
}

// A Table lists the registers of a map in declaration order. Firmware
// headers and host-side debug maps are generated from tables.
type Table []Row

// Table exports the map as a flat table.
func (m *Map) Table() Table {
	t := make(Table, 0, len(m.entries))
	for _, e := range m.entries {
		t = append(t, Row{
			Name:       e.Name,
			Address:    e.Address,
			Offset:     e.Offset,
			Width:      e.Width,
			Permission: e.Permission,
		})
	}

	return t
}

// Lookup finds a row by register name.
func (t Table) Lookup(name string) (Row, bool) {
	for _, r := range t {
		if r.Name == name {
			return r, true
		}
	}

	return Row{}, false
}

// Rebase returns a copy of the table as seen through a window that starts at
// base. Offsets are kept.
func (t Table) Rebase(base uint64) Table {
	rebased := make(Table, len(t))
	for i, r := range t {
		r.Address = base + r.Offset
		rebased[i] = r
	}

	return rebased
}
