// Package main hosts the takeslice CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, sets up structured
// logging, and hands work to the internal packages: slice runs the pipeline,
// offsets maintains the offset cache, history reads the run ledger, check
// runs dependency and directory preflight, and config scaffolds or validates
// the configuration file.
//
// Keep this package lean: add behaviour to the internal packages first and
// surface it here through commands or flags.
package main
