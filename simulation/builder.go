package simulation

import (
	"github.com/rs/xid"
	"github.com/sarchlab/upsilonsoc/datarecording"
	"github.com/sarchlab/upsilonsoc/monitoring"
	"github.com/sarchlab/upsilonsoc/sim"
	"github.com/sarchlab/upsilonsoc/soc"
	"github.com/sarchlab/upsilonsoc/tracing"
)

// Builder can be used to build a simulation of the reference SoC.
type Builder struct {
	cfg            soc.Config
	monitorOn      bool
	monitorPort    int
	tracingOn      bool
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		cfg:       soc.DefaultConfig(),
		monitorOn: true,
		tracingOn: true,
	}
}

// WithConfig sets the configuration of the SoC.
func (b Builder) WithConfig(cfg soc.Config) Builder {
	b.cfg = cfg
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithoutTracing stops the arbiters from recording their transactions.
func (b Builder) WithoutTracing() Builder {
	b.tracingOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build composes the SoC and wires the recorder, the tracer and the monitor
// around it.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		compNameIndex: make(map[string]int),
		portNameIndex: make(map[string]int),
	}

	s.id = xid.New().String()
	s.engine = sim.NewSerialEngine()

	composer, table, err := soc.BuildUpsilon(b.cfg, s.engine)
	if err != nil {
		return nil, err
	}

	s.soc = composer
	s.table = table

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "upsilon_sim_" + s.id
	}
	s.dataRecorder = datarecording.New(outputPath)
	s.engine.RegisterSimulationEndHandler(recorderFlusher{s: s})

	for _, c := range composer.Components() {
		s.RegisterComponent(c)
	}

	s.usage = make(map[string]*arbiterUsage)
	for _, arb := range composer.Arbiters() {
		u := &arbiterUsage{
			latency: tracing.NewAverageTimeTracer(s.engine, nil),
			busy:    tracing.NewBusyTimeTracer(s.engine, nil),
		}
		tracing.CollectTrace(arb, u.latency)
		tracing.CollectTrace(arb, u.busy)
		s.usage[arb.Name()] = u
	}

	if b.tracingOn {
		s.visTracer = tracing.NewDBTracer(s.engine, s.dataRecorder)
		for _, arb := range composer.Arbiters() {
			tracing.CollectTrace(arb, s.visTracer)
		}
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterEngine(s.engine)
		s.monitor.RegisterSoC(composer, table)
		s.monitorURL = s.monitor.StartServer()
	}

	return s, nil
}
