package graph

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/biopet/gentrap-report/internal/fastqc"
)

// Mermaid renders g as a Mermaid flowchart. Every node whose subtree holds a
// FastQC report gets the class of its worst status.
func Mermaid(g *Graph, opts *Options) string {
	if opts == nil {
		opts = DefaultOptions()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("flowchart %s\n", mermaidDirection(opts.Direction)))

	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf("    subgraph title[\"%s\"]\n", escapeMermaidString(opts.Title)))
		sb.WriteString("    end\n")
	}

	for _, status := range fastqc.Statuses {
		c := GetStatusColor(status)
		sb.WriteString(fmt.Sprintf("    classDef %s fill:%s,stroke:%s\n", status, c.Fill, c.Stroke))
	}

	for _, n := range g.Nodes {
		sb.WriteString(fmt.Sprintf("    %s\n", generateMermaidNode(n)))
	}

	for _, e := range g.Edges {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(e.From), sanitizeMermaidID(e.To)))
	}

	return sb.String()
}

func mermaidDirection(d string) string {
	switch d {
	case "down", "TD":
		return "TD"
	default:
		return "LR"
	}
}

// generateMermaidNode creates a Mermaid node declaration with the shape of
// its kind and the class of its status.
func generateMermaidNode(n Node) string {
	id := sanitizeMermaidID(n.ID)
	label := escapeMermaidString(n.Label)

	var decl string
	switch GetNodeShape(n.Kind).MermaidShape {
	case "{{}}":
		decl = fmt.Sprintf("%s{{\"%s\"}}", id, label)
	case "([])":
		decl = fmt.Sprintf("%s([\"%s\"])", id, label)
	case "[()]":
		decl = fmt.Sprintf("%s[(\"%s\")]", id, label)
	default:
		decl = fmt.Sprintf("%s[\"%s\"]", id, label)
	}

	if n.Status != "" {
		decl += ":::" + n.Status.String()
	}
	return decl
}

// Mermaid IDs can contain alphanumeric chars and underscores.
var mermaidIDRegex = regexp.MustCompile(`[^a-zA-Z0-9_]`)

func sanitizeMermaidID(id string) string {
	sanitized := mermaidIDRegex.ReplaceAllString(id, "_")

	if len(sanitized) > 0 && sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "_" + sanitized
	}
	if sanitized == "" {
		sanitized = "_empty"
	}
	return sanitized
}

// escapeMermaidString escapes special characters in Mermaid string content.
func escapeMermaidString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	return s
}

// GeneratePieChart generates a Mermaid pie chart from statistics.
// The stats map contains category names as keys and counts as values.
func GeneratePieChart(stats map[string]int, title string) string {
	var sb strings.Builder

	if title != "" {
		sb.WriteString(fmt.Sprintf("pie title %s\n", escapeMermaidString(title)))
	} else {
		sb.WriteString("pie\n")
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sb.WriteString(fmt.Sprintf("    \"%s\" : %d\n", escapeMermaidString(key), stats[key]))
	}

	return sb.String()
}
