// Package taskclass turns task classes into runner registrations. A task class
// is a *Class carrying static task bodies; Task declares which of its methods
// are tasks (and what they depend on) and Gulp pushes every declared task of a
// class into a Runner, wiring dependency lists and completion signals.
//
// Declarations accumulate in a process-wide registry keyed by class identity.
// Applying a class only reads that registry, so a class can be applied to any
// number of runners. The package does no scheduling of its own; ordering,
// parallelism and cycle handling belong to the Runner.
//
//	cleansing := taskclass.NewClass("Cleansing").
//		Static("clean", taskclass.Signal(func(done taskclass.Done) { done(nil) }))
//	if err := taskclass.Task()(cleansing, "clean"); err != nil {
//		return err
//	}
//	decorate, err := taskclass.Gulp(runner)
//	if err != nil {
//		return err
//	}
//	return decorate(cleansing)
package taskclass
