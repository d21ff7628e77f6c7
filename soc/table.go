package soc

import (
	"fmt"
	"sort"

	"github.com/sarchlab/upsilonsoc/regmap"
)

// HostSpace is the name of the address space of the host.
const HostSpace = "host"

// A Constant is a named number that firmware needs, such as a network
// address.
type Constant struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

// A CSRBase is the address of the page of a CSR block.
type CSRBase struct {
	Name    string `json:"name"`
	Address uint64 `json:"address"`
}

// A CSRRegister is a control or status register on the CSR bus of the host.
type CSRRegister struct {
	Name       string            `json:"name"`
	Block      string            `json:"block"`
	Address    uint64            `json:"address"`
	Width      uint              `json:"width"`
	Permission regmap.Permission `json:"permission"`
}

// A Memory is a region of an address space.
type Memory struct {
	Space  string `json:"space"`
	Name   string `json:"name"`
	Base   uint64 `json:"base"`
	Size   uint64 `json:"size"`
	Kind   string `json:"kind"`
	Cached bool   `json:"cached"`
}

// A Subregion is a region that may wrap a register map. The addresses of
// the registers are resolved in the space of the region. Registers is nil
// for plain memories.
type Subregion struct {
	Space     string       `json:"space"`
	Name      string       `json:"name"`
	Base      uint64       `json:"base"`
	Registers regmap.Table `json:"registers"`
}

// A Table is the address table of a finalized SoC. Firmware headers and host
// tools are generated from it.
type Table struct {
	Constants    []Constant    `json:"constants"`
	CSRBases     []CSRBase     `json:"csr_bases"`
	CSRRegisters []CSRRegister `json:"csr_registers"`
	Memories     []Memory      `json:"memories"`
	Subregions   []Subregion   `json:"subregions"`
}

// SymbolKind tells where a symbol comes from.
type SymbolKind string

// The kinds of symbols.
const (
	ConstantSymbol    SymbolKind = "constant"
	CSRBaseSymbol     SymbolKind = "csr_base"
	CSRRegisterSymbol SymbolKind = "csr_register"
	RegionSymbol      SymbolKind = "region"
	RegisterSymbol    SymbolKind = "register"
)

// A Symbol is a named number that a generator emits for the firmware of one
// space.
type Symbol struct {
	Space string     `json:"space"`
	Name  string     `json:"name"`
	Value uint64     `json:"value"`
	Kind  SymbolKind `json:"kind"`
}

// Spaces returns the names of the spaces in the table, host first.
func (t *Table) Spaces() []string {
	spaces := []string{HostSpace}
	seen := map[string]bool{HostSpace: true}

	for _, m := range t.Memories {
		if !seen[m.Space] {
			seen[m.Space] = true
			spaces = append(spaces, m.Space)
		}
	}

	return spaces
}

// Symbols returns every symbol of every space. Constants and CSRs belong to
// the host. Each region gives <region>_base and each register of a
// subregion gives <region>_<register>.
func (t *Table) Symbols() []Symbol {
	symbols := []Symbol{}

	for _, c := range t.Constants {
		symbols = append(symbols, Symbol{
			Space: HostSpace, Name: c.Name, Value: c.Value,
			Kind: ConstantSymbol,
		})
	}

	for _, b := range t.CSRBases {
		symbols = append(symbols, Symbol{
			Space: HostSpace, Name: "csr_" + b.Name + "_base",
			Value: b.Address, Kind: CSRBaseSymbol,
		})
	}

	for _, r := range t.CSRRegisters {
		symbols = append(symbols, Symbol{
			Space: HostSpace, Name: r.Name, Value: r.Address,
			Kind: CSRRegisterSymbol,
		})
	}

	for _, m := range t.Memories {
		symbols = append(symbols, Symbol{
			Space: m.Space, Name: m.Name + "_base", Value: m.Base,
			Kind: RegionSymbol,
		})
	}

	for _, s := range t.Subregions {
		for _, row := range s.Registers {
			symbols = append(symbols, Symbol{
				Space: s.Space, Name: s.Name + "_" + row.Name,
				Value: row.Address, Kind: RegisterSymbol,
			})
		}
	}

	return symbols
}

// SymbolsOf returns the symbols of one space.
func (t *Table) SymbolsOf(space string) []Symbol {
	symbols := []Symbol{}

	for _, s := range t.Symbols() {
		if s.Space == space {
			symbols = append(symbols, s)
		}
	}

	return symbols
}

// Lookup finds the value of a symbol.
func (t *Table) Lookup(space, name string) (uint64, bool) {
	for _, s := range t.Symbols() {
		if s.Space == space && s.Name == name {
			return s.Value, true
		}
	}

	return 0, false
}

// Memory finds a region by space and name.
func (t *Table) Memory(space, name string) (Memory, bool) {
	for _, m := range t.Memories {
		if m.Space == space && m.Name == name {
			return m, true
		}
	}

	return Memory{}, false
}

// Subregion finds a subregion by space and name.
func (t *Table) Subregion(space, name string) (Subregion, bool) {
	for _, s := range t.Subregions {
		if s.Space == space && s.Name == name {
			return s, true
		}
	}

	return Subregion{}, false
}

// Validate checks that the table agrees with itself. Regions of one space
// must not overlap, every subregion must be a region, every register must
// fall inside its region, and no two symbols of a space may share a name.
func (t *Table) Validate() error {
	if err := t.validateMemories(); err != nil {
		return err
	}

	if err := t.validateSubregions(); err != nil {
		return err
	}

	return t.validateSymbols()
}

func (t *Table) validateMemories() error {
	bySpace := make(map[string][]Memory)
	for _, m := range t.Memories {
		bySpace[m.Space] = append(bySpace[m.Space], m)
	}

	for space, memories := range bySpace {
		sort.Slice(memories, func(i, j int) bool {
			return memories[i].Base < memories[j].Base
		})

		for i := 1; i < len(memories); i++ {
			prev, cur := memories[i-1], memories[i]
			if prev.Base+prev.Size > cur.Base {
				return fmt.Errorf("%s: %s overlaps %s",
					space, prev.Name, cur.Name)
			}
		}
	}

	return nil
}

func (t *Table) validateSubregions() error {
	for _, s := range t.Subregions {
		m, found := t.Memory(s.Space, s.Name)
		if !found {
			return fmt.Errorf("%s: subregion %s is not a region",
				s.Space, s.Name)
		}

		if m.Base != s.Base {
			return fmt.Errorf("%s: subregion %s is at 0x%x, region at 0x%x",
				s.Space, s.Name, s.Base, m.Base)
		}

		for _, row := range s.Registers {
			words := (uint64(row.Width) + regmap.WordBits - 1) /
				regmap.WordBits
			if row.Address < m.Base ||
				row.Address+4*words > m.Base+m.Size {
				return fmt.Errorf("%s: register %s_%s at 0x%x is outside "+
					"the region", s.Space, s.Name, row.Name, row.Address)
			}
		}
	}

	return nil
}

func (t *Table) validateSymbols() error {
	seen := make(map[string]bool)

	for _, s := range t.Symbols() {
		key := s.Space + "." + s.Name
		if seen[key] {
			return fmt.Errorf("%s: symbol %s is defined twice",
				s.Space, s.Name)
		}

		seen[key] = true
	}

	return nil
}
