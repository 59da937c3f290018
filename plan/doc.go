// Package plan declares string pipelines in YAML and compiles them into
// pipeline.Pipeline values.
//
//	name: shout
//	includes: [clean]
//	steps:
//	  - op: map
//	    func: upper
//	  - op: take
//	    n: 10
//
// Included plans are resolved through a Loader and their steps run first, in
// include order. Named functions for map, filter and flat_map steps come from
// a Registry; DefaultRegistry holds the built-ins.
package plan
