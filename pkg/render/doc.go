// Package render turns a finished resolution into Graphviz output.
//
// [ToDOT] emits the dependency graph in DOT format with each package
// styled by its classification (satisfied, official, or buildable), and
// [SVG]/[PNG] rasterize the DOT text via Graphviz for direct file output.
package render
