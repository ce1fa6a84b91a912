// Package internal contains the implementation packages of the frontkit CLI.
//
// # Package Organization
//
//   - task: Series and Parallel composition of named tasks, conflict
//     detection and the runner
//   - adapters: copy, clean, scripts (esbuild), styles (sass), configs and
//     components (fixtures and macro options)
//   - assets: glob resolution, path remapping and output writes
//   - paths: the project layout and the per-target output roots
//   - pipeline: the runnable entries assembled from adapters
//   - watcher: fsnotify bindings that rerun tasks on change
//   - config: viper-backed configuration with FRONTKIT_ overrides
//   - errors, logging, validation, version: shared support
//
// Data flows one way: config builds a paths.Resolver, pipeline turns an
// Entry into a task tree of adapter calls, and the task runner executes it.
// The watcher reruns subtrees of that tree, each binding through its own
// runner whose metrics cover one batch.
package internal
