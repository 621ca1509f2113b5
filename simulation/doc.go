// Package simulation holds the state of an attack simulation and the pure
// reducer that transitions it.
//
// State is only ever changed by dispatching an Action to a Store. The Store
// applies Reduce, keeps the resulting value as the single source of truth and
// notifies subscribers with a snapshot of the new state:
//
//	store := simulation.NewStore(simulation.NewState(scenario.Default().Targets))
//	unsubscribe := store.Subscribe(func(s simulation.State, a simulation.Action) {
//	    fmt.Println(a.Type(), s.CurrentPhase)
//	})
//	defer unsubscribe()
//
//	store.Dispatch(simulation.StartSimulation{})
//
// Reduce never mutates its input: collections are copied on write so that
// snapshots handed to observers stay consistent.
package simulation
