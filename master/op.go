package master

import (
	"github.com/sarchlab/upsilonsoc/sim"
)

// OpKind tells if an operation reads or writes.
type OpKind int

// The kinds of operations.
const (
	Read OpKind = iota
	Write
)

func (k OpKind) String() string {
	if k == Write {
		return "write"
	}

	return "read"
}

// An Op is one bus access in the program of a master.
type Op struct {
	Kind    OpKind
	Address uint64
	Value   uint32

	// ByteSize is the number of bytes accessed. Zero means a whole word.
	ByteSize uint64
}

// ReadOp reads the word at the address.
func ReadOp(addr uint64) Op {
	return Op{Kind: Read, Address: addr}
}

// WriteOp writes the word at the address.
func WriteOp(addr uint64, value uint32) Op {
	return Op{Kind: Write, Address: addr, Value: value}
}

// A Record describes a completed operation.
type Record struct {
	Op        Op
	Result    uint32
	Issued    sim.VTimeInSec
	Completed sim.VTimeInSec
}

// Latency returns the time from issuing to completing the operation.
func (r Record) Latency() sim.VTimeInSec {
	return r.Completed - r.Issued
}

// TransactionEntry is the row that a master writes to the data recorder.
type TransactionEntry struct {
	Master    string
	Kind      string
	Address   uint64
	Value     uint32
	Result    uint32
	Issued    float64
	Completed float64
	Latency   float64
}

// TransactionTable is the name of the table that masters record completed
// operations to.
const TransactionTable = "bus_transactions"
