// Package master provides a scripted bus master. A master stands for a
// processor of the SoC: it runs a fixed program of word accesses against its
// address space and records when every access completes.
package master

import (
	"github.com/sarchlab/upsilonsoc/datarecording"
	"github.com/sarchlab/upsilonsoc/mem"
	"github.com/sarchlab/upsilonsoc/regmap"
	"github.com/sarchlab/upsilonsoc/sim"
)

type inflightOp struct {
	op     Op
	req    mem.AccessReq
	issued sim.VTimeInSec
}

// Comp is a bus master.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	port        sim.Port
	mapper      mem.AddressToPortMapper
	program     []Op
	pc          int
	repeat      bool
	maxInFlight int
	enable      *regmap.Register
	recorder    datarecording.DataRecorder

	inflight map[string]*inflightOp
	records  []Record
}

// Tick runs the middleware of the master.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

// Port returns the port that the master sends requests from.
func (c *Comp) Port() sim.Port {
	return c.port
}

// Start makes the master begin to run its program.
func (c *Comp) Start() {
	c.TickLater()
}

// Enabled tells if the master is allowed to issue operations.
func (c *Comp) Enabled() bool {
	return c.enable == nil || c.enable.Value() != 0
}

// Done tells if the master has finished its program. A repeating master is
// never done.
func (c *Comp) Done() bool {
	if c.repeat && len(c.program) > 0 {
		return false
	}

	return c.pc >= len(c.program) && len(c.inflight) == 0
}

// Records returns the operations completed so far, in completion order.
func (c *Comp) Records() []Record {
	records := make([]Record, len(c.records))
	copy(records, c.records)

	return records
}

// Stop makes a repeating master stop after the operations in flight.
func (c *Comp) Stop() {
	c.repeat = false
	c.pc = len(c.program)
}

func (c *Comp) watchEnable() {
	err := c.enable.Watch(func(value uint64) {
		if value != 0 {
			c.TickLater()
		}
	})
	if err != nil {
		panic(err)
	}
}

func (c *Comp) createTable() {
	for _, t := range c.recorder.ListTables() {
		if t == TransactionTable {
			return
		}
	}

	c.recorder.CreateTable(TransactionTable, TransactionEntry{})
}

func (c *Comp) record(r Record) {
	c.records = append(c.records, r)

	if c.recorder == nil {
		return
	}

	c.recorder.InsertData(TransactionTable, TransactionEntry{
		Master:    c.Name(),
		Kind:      r.Op.Kind.String(),
		Address:   r.Op.Address,
		Value:     r.Op.Value,
		Result:    r.Result,
		Issued:    float64(r.Issued),
		Completed: float64(r.Completed),
		Latency:   float64(r.Latency()),
	})
}
