// Package taskrunner hosts the task runner that task classes register with. It
// exposes the `Executor` interface plus helpers (`Factory`, `Resolve`) so the
// CLI can build a runner once from Dependencies while unit tests swap in fakes.
// The default runner executes the dependency closure of the requested tasks,
// running independent dependencies concurrently and each task at most once
// per run.
package taskrunner
