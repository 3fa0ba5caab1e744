package graph

import "github.com/biopet/gentrap-report/internal/fastqc"

// NodeShape defines diagram shapes for the node kinds.
// Both D2 and Mermaid have native shape support.
type NodeShape struct {
	D2Shape      string // D2 shape name (rectangle, hexagon, etc.)
	MermaidShape string // Mermaid shape syntax ([], {{}}, etc.)
}

// NodeShapes maps node kinds to their diagram shapes.
var NodeShapes = map[NodeKind]NodeShape{
	KindRun:     {D2Shape: "cylinder", MermaidShape: "[()]"},
	KindSample:  {D2Shape: "hexagon", MermaidShape: "{{}}"},
	KindLibrary: {D2Shape: "rectangle", MermaidShape: "[]"},
	KindReport:  {D2Shape: "page", MermaidShape: "([])"},
}

// GetNodeShape returns the shape for a node kind, falling back to a rectangle.
func GetNodeShape(kind NodeKind) NodeShape {
	if shape, ok := NodeShapes[kind]; ok {
		return shape
	}
	return NodeShape{D2Shape: "rectangle", MermaidShape: "[]"}
}

// Color represents a color with fill and stroke values.
type Color struct {
	Fill   string // Background fill color (hex)
	Stroke string // Border/stroke color (hex)
}

// StatusColors maps QC statuses to their colors.
var StatusColors = map[fastqc.Status]Color{
	fastqc.StatusPass: {Fill: "#e8f5e9", Stroke: "#388e3c"}, // Light green
	fastqc.StatusWarn: {Fill: "#fff3e0", Stroke: "#f57c00"}, // Light orange
	fastqc.StatusFail: {Fill: "#ffebee", Stroke: "#c62828"}, // Light red
}

// noStatusColor is used for nodes without any FastQC report below them.
var noStatusColor = Color{Fill: "#fafafa", Stroke: "#9e9e9e"}

// GetStatusColor returns the color for a status.
func GetStatusColor(status fastqc.Status) Color {
	if c, ok := StatusColors[status]; ok {
		return c
	}
	return noStatusColor
}

// Options configures diagram generation.
type Options struct {
	Direction string // Layout direction: "right"/"LR" or "down"/"TD"
	Title     string // Optional diagram title
}

// DefaultOptions returns sensible defaults for diagram generation.
func DefaultOptions() *Options {
	return &Options{Direction: "right"}
}
