// Package bootseq provides a general-purpose boot sequence manager with separate startup/shutdown
// phases driven by a dependency graph.
//
// Every component declares the components it depends on. A component's start action runs only after
// all of its dependencies have published a startup result, and its stop action runs only after the
// sequence has been asked to stop and every component depending on it (with keep-alive, the default)
// has finished stopping. Components without a relationship to each other start and stop concurrently.
//
// Quick Start
//
//	seq := bootseq.New("My Boot Sequence")
//	db := bootseq.Must(seq.Component("db", bootseq.Declare().Up(openDB).Down(closeDB)))
//	cache := bootseq.Must(seq.Component("cache", bootseq.Declare().Up(warmCache).Down(bootseq.NoOp)))
//	bootseq.Must(seq.Component("api", bootseq.Declare().After(db, cache).Up(serve).Down(drain)))
//
//	// "db" and "cache" start concurrently, followed by "api".
//	results, _ := seq.Start(ctx, bootseq.GoExecutor{}).Await(ctx)
//
//	// Your application is now ready! Check results[i].IsFailure() for a degraded startup.
//
//	// "api" stops first, then "db" and "cache".
//	stopped, _ := seq.Stop(ctx, bootseq.GoExecutor{}).Await(ctx)
//
// Failures
//
// Errors returned (or panics raised) by actions never escape Start or Stop; they are captured in the
// component's StartupResult or StopResult. A component whose dependency did not start successfully
// is skipped with a StartupDependencyError, which in turn propagates to its own dependents. Stop
// actions run regardless of how startup went, so partially initialized components can release their
// resources.
//
// Sequences can also be declared with a formula, see ParseFormula.
package bootseq
