// Package cmd provides the command-line interface for frontkit.
//
// # Available Commands
//
//   - run: Run one or more pipelines by entry name
//   - build: Build a distribution target (package, dist or app)
//   - watch: Rebuild the review app's assets on change
//   - list: List the runnable entries
//   - components: List component definitions and their macro names
//   - config: Show the effective configuration
//   - validate: Check the configuration and assemble every pipeline
//   - version: Show version information
//
// # Command Examples
//
//	// Build the npm package
//	frontkit run build:package
//
//	// Clean and build the release assets
//	frontkit run clean:dist build:dist
//
//	// Compile only the stylesheets into dist
//	FRONTKIT_TARGET=dist frontkit run styles
//
//	// Watch the review app sources
//	frontkit watch --log-level debug
//
// Configuration is read from .frontkit.yml in the working directory, or the
// file named by --config or FRONTKIT_CONFIG_FILE. Every key can be
// overridden from the environment as FRONTKIT_<SECTION>_<KEY>.
package cmd
