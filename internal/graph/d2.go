package graph

import (
	"fmt"
	"strings"
)

// D2 renders g as a D2 diagram.
func D2(g *Graph, opts *Options) string {
	if opts == nil {
		opts = DefaultOptions()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("direction: %s\n", d2Direction(opts.Direction)))

	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf("title: {\n  label: %s\n  near: top-center\n}\n", opts.Title))
	}
	sb.WriteString("\n")

	sb.WriteString("# Nodes\n")
	for _, n := range g.Nodes {
		sb.WriteString(generateD2Node(n))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString("# Edges\n")
	for _, e := range g.Edges {
		sb.WriteString(fmt.Sprintf("%s -> %s\n", sanitizeD2ID(e.From), sanitizeD2ID(e.To)))
	}

	return sb.String()
}

func d2Direction(d string) string {
	switch d {
	case "down", "TD":
		return "down"
	default:
		return "right"
	}
}

// generateD2Node generates a D2 node definition.
func generateD2Node(n Node) string {
	shape := GetNodeShape(n.Kind)
	color := GetStatusColor(n.Status)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: {\n", sanitizeD2ID(n.ID)))
	sb.WriteString(fmt.Sprintf("  label: \"%s\"\n", strings.ReplaceAll(n.Label, "\"", "\\\"")))
	sb.WriteString(fmt.Sprintf("  shape: %s\n", shape.D2Shape))
	sb.WriteString("  style: {\n")
	sb.WriteString(fmt.Sprintf("    fill: \"%s\"\n", color.Fill))
	sb.WriteString(fmt.Sprintf("    stroke: \"%s\"\n", color.Stroke))
	sb.WriteString("  }\n")
	sb.WriteString("}")

	return sb.String()
}

// sanitizeD2ID makes an ID safe for D2 by quoting if necessary.
// D2 reads dots as nesting, so every ID holding one is quoted too.
func sanitizeD2ID(id string) string {
	needsQuoting := false
	for _, c := range id {
		if !isAlphanumeric(c) && c != '_' && c != '-' {
			needsQuoting = true
			break
		}
	}

	if needsQuoting {
		escaped := strings.ReplaceAll(id, "\"", "\\\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return id
}

// isAlphanumeric returns true if the rune is a letter or digit.
func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
