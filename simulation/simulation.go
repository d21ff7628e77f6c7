// Package simulation assembles a runnable simulation of the SoC: the engine,
// the composed SoC, the data recorder, the transaction tracer and the
// monitor.
package simulation

import (
	"fmt"

	"github.com/sarchlab/upsilonsoc/datarecording"
	"github.com/sarchlab/upsilonsoc/master"
	"github.com/sarchlab/upsilonsoc/monitoring"
	"github.com/sarchlab/upsilonsoc/sim"
	"github.com/sarchlab/upsilonsoc/soc"
	"github.com/sarchlab/upsilonsoc/tracing"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id     string
	engine *sim.SerialEngine

	soc   *soc.Composer
	table *soc.Table

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	monitorURL   string
	visTracer    *tracing.DBTracer
	usage        map[string]*arbiterUsage

	components    []sim.Component
	compNameIndex map[string]int
	ports         []sim.Port
	portNameIndex map[string]int
	masters       []*master.Comp

	terminated bool
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// SoC returns the composed SoC.
func (s *Simulation) SoC() *soc.Composer {
	return s.soc
}

// Table returns the address table of the SoC.
func (s *Simulation) Table() *soc.Table {
	return s.table
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil if the
// simulation runs without monitoring.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server, if any.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// GetVisTracer returns the tracer used in the simulation.
func (s *Simulation) GetVisTracer() *tracing.DBTracer {
	return s.visTracer
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c sim.Component) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	for _, p := range c.Ports() {
		s.registerPort(p)
	}

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

// registerPort registers a port with the simulation.
func (s *Simulation) registerPort(p sim.Port) {
	portName := p.Name()
	if _, found := s.portNameIndex[portName]; found {
		panic("port " + portName + " already registered")
	}

	s.ports = append(s.ports, p)
	s.portNameIndex[portName] = len(s.ports) - 1
}

// Components returns every registered component.
func (s *Simulation) Components() []sim.Component {
	return append([]sim.Component{}, s.components...)
}

// GetComponentByName returns the component with the given name.
func (s *Simulation) GetComponentByName(name string) (sim.Component, bool) {
	i, found := s.compNameIndex[name]
	if !found {
		return nil, false
	}

	return s.components[i], true
}

// GetPortByName returns the port with the given name.
func (s *Simulation) GetPortByName(name string) (sim.Port, bool) {
	i, found := s.portNameIndex[name]
	if !found {
		return nil, false
	}

	return s.ports[i], true
}

// AddHostMaster builds a master in the host space. Its transactions are
// recorded and, if monitoring is on, its progress is shown.
func (s *Simulation) AddHostMaster(name string, b master.Builder) *master.Comp {
	m := s.soc.HostMaster(name, b.WithRecorder(s.dataRecorder))
	s.addMaster(m)

	return m
}

// AddCoreMaster builds the master of an auxiliary core.
func (s *Simulation) AddCoreMaster(
	core string,
	b master.Builder,
) (*master.Comp, error) {
	m, err := s.soc.CoreMaster(core, b.WithRecorder(s.dataRecorder))
	if err != nil {
		return nil, err
	}

	s.addMaster(m)

	return m, nil
}

func (s *Simulation) addMaster(m *master.Comp) {
	s.RegisterComponent(m)
	s.masters = append(s.masters, m)

	if s.visTracer != nil {
		tracing.CollectTrace(m, s.visTracer)
	}

	if s.monitor != nil {
		s.monitor.TrackProgress(m, 0)
	}
}

type arbiterUsage struct {
	latency *tracing.AverageTimeTracer
	busy    *tracing.BusyTimeTracer
}

// Usage summarizes the transactions that one arbiter has served.
type Usage struct {
	Transactions   uint64
	AverageLatency sim.VTimeInSec
	MaxLatency     sim.VTimeInSec
	BusyTime       sim.VTimeInSec
}

// ArbiterUsage returns how busy the named arbiter has been so far.
func (s *Simulation) ArbiterUsage(name string) (Usage, bool) {
	u, found := s.usage[name]
	if !found {
		return Usage{}, false
	}

	return Usage{
		Transactions:   u.latency.TotalCount(),
		AverageLatency: u.latency.AverageTime(),
		MaxLatency:     u.latency.MaxTime(),
		BusyTime:       u.busy.BusyTime(),
	}, true
}

// recorderFlusher writes the buffered records when a run finishes, so the
// database can be read before the simulation terminates.
type recorderFlusher struct {
	s *Simulation
}

func (f recorderFlusher) Handle(_ sim.VTimeInSec) {
	if f.s.terminated {
		return
	}

	f.s.dataRecorder.Flush()
}

// Run starts every master and runs the engine until no event is left.
func (s *Simulation) Run() error {
	for _, m := range s.masters {
		m.Start()
	}

	if err := s.engine.Run(); err != nil {
		return fmt.Errorf("simulation %s: %w", s.id, err)
	}

	s.engine.Finished()

	return nil
}

// RunUntil starts every master and runs the engine up to the deadline.
func (s *Simulation) RunUntil(deadline sim.VTimeInSec) error {
	for _, m := range s.masters {
		m.Start()
	}

	return s.engine.RunUntil(deadline)
}

// Terminate flushes the records and closes the database.
func (s *Simulation) Terminate() {
	if s.terminated {
		return
	}

	s.terminated = true

	if s.visTracer != nil {
		s.visTracer.Terminate()
	}

	s.dataRecorder.Close()
}
