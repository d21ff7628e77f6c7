// Package regmap compiles lists of named register descriptors into register
// maps. A compiled map is bound to hardware as a Bank and exported to
// tooling as a Table. Both come from the same Map, so they cannot disagree.
package regmap

import (
	"fmt"

	"github.com/sarchlab/upsilonsoc/cfgerr"
)

// Permission tells who can write a register.
type Permission int

// The register permissions.
const (
	// ReadOnly registers are status registers. Hardware writes them and the
	// bus reads them.
	ReadOnly Permission = iota

	// ReadWrite registers are storage registers. The bus writes them and
	// hardware reads them.
	ReadWrite
)

func (p Permission) String() string {
	switch p {
	case ReadOnly:
		return "RO"
	case ReadWrite:
		return "RW"
	default:
		return fmt.Sprintf("Permission(%d)", int(p))
	}
}

// MarshalText encodes the permission as "RO" or "RW".
func (p Permission) MarshalText() ([]byte, error) {
	switch p {
	case ReadOnly, ReadWrite:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("unknown permission %d", int(p))
	}
}

// UnmarshalText decodes "RO" or "RW".
func (p *Permission) UnmarshalText(text []byte) error {
	switch string(text) {
	case "RO":
		*p = ReadOnly
	case "RW":
		*p = ReadWrite
	default:
		return fmt.Errorf("unknown permission %q", string(text))
	}

	return nil
}

// A Descriptor declares one named register. A Replicate of 0 or 1 declares a
// single register. A larger Replicate declares that many registers named
// Name_0 to Name_{Replicate-1}.
type Descriptor struct {
	Name       string
	Width      uint
	Permission Permission
	Replicate  uint
}

// Instances returns the number of registers the descriptor declares.
func (d Descriptor) Instances() uint {
	if d.Replicate == 0 {
		return 1
	}

	return d.Replicate
}

// InstanceName returns the name of the i-th register that the descriptor
// declares.
func (d Descriptor) InstanceName(i uint) string {
	if d.Instances() == 1 {
		return d.Name
	}

	return fmt.Sprintf("%s_%d", d.Name, i)
}

// Replicated returns a copy of the descriptor that declares n registers.
func (d Descriptor) Replicated(n uint) Descriptor {
	d.Replicate = n
	return d
}

// Status declares a read-only register.
func Status(name string, width uint) Descriptor {
	return Descriptor{Name: name, Width: width, Permission: ReadOnly}
}

// Storage declares a read-write register.
func Storage(name string, width uint) Descriptor {
	return Descriptor{Name: name, Width: width, Permission: ReadWrite}
}

// A DescriptorOption changes a descriptor created by NewDescriptor.
type DescriptorOption func(d *Descriptor) error

// WithReplicate makes the descriptor declare n registers. Asking for zero
// registers is an error.
func WithReplicate(n uint) DescriptorOption {
	return func(d *Descriptor) error {
		if n == 0 {
			return cfgerr.New(cfgerr.ErrZeroReplication, d.Name)
		}

		d.Replicate = n

		return nil
	}
}

// NewDescriptor creates a descriptor and checks it.
func NewDescriptor(
	name string,
	width uint,
	perm Permission,
	opts ...DescriptorOption,
) (Descriptor, error) {
	d := Descriptor{
		Name:       name,
		Width:      width,
		Permission: perm,
		Replicate:  1,
	}

	if width == 0 {
		return Descriptor{}, cfgerr.New(cfgerr.ErrZeroWidthRegister, name)
	}

	for _, opt := range opts {
		if err := opt(&d); err != nil {
			return Descriptor{}, err
		}
	}

	return d, nil
}
