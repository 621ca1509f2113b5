// Package types provides the value types of the attack simulation.
//
// The package defines the simulated hosts (Target, Service, Vulnerability),
// the five-phase attack lifecycle (Phase), attack-step records (AttackStep)
// and the bounds of the automatic stepping interval (DelayConfig). Values are
// plain data; all mutation of simulation state goes through the simulation
// package reducer.
//
// # Phases
//
// Phases run in a fixed order and stop at persistence:
//
//	phase := types.PhaseReconnaissance
//	phase = phase.Next() // exploitation
//	types.PhasePersistence.Next() // persistence
//
// # Targets
//
//	target := types.Target{
//	    ID:     "target-1",
//	    Name:   "Web Server (DMZ)",
//	    IP:     "192.168.1.10",
//	    Status: types.TargetOnline,
//	    Vulnerabilities: []types.Vulnerability{
//	        {ID: "vuln-1", CVE: "CVE-2023-1234", Severity: types.SeverityHigh},
//	    },
//	}
//	vuln, ok := target.FirstExploitable()
package types
