// Package redsim provides an educational red-team attack simulator.
//
// A simulation walks a fixed, fictitious lab network through the five phases
// of an attack lifecycle: reconnaissance, exploitation, privilege escalation,
// lateral movement and persistence. Every step is a random draw against a
// rule-based heuristic. Nothing touches a real network.
//
// # Architecture
//
// The module is split into small packages:
//
//   - types: phases, targets, vulnerabilities and attack steps
//   - simulation: the state, its actions, the pure reducer and the Store
//   - engine: the decision heuristic, step execution and the stepping timer
//   - scenario: YAML scenario loading and the built-in lab network
//   - report: threat report derivation and JSON/CSV export
//   - config: redsim.yaml loading
//   - telemetry: logger and tracer setup
//
// The Simulator type in this package wires them together.
//
// # Getting Started
//
//	sim, err := redsim.New(redsim.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sim.Stop()
//
//	step, err := sim.Step(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(step.Phase, step.Action, step.Result)
//
//	if err := sim.Export(os.Stdout, report.FormatJSON); err != nil {
//		log.Fatal(err)
//	}
//
// # Automatic Stepping
//
// Start executes one step every Delay until Stop is called. Manual steps are
// rejected while the simulation is running. SetDelay changes the interval of
// a running simulation without layering timers.
//
// # Observability
//
// All components log through log/slog. Every step is an OpenTelemetry span
// named "redsim.step", and step counters are recorded through the global
// meter provider unless one is supplied with WithMeterProvider.
package redsim
