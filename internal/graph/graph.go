// Package graph draws the run -> sample -> library -> FastQC hierarchy of a
// pipeline run as Mermaid or D2 diagrams, coloured by QC status.
package graph

import (
	"fmt"

	"github.com/biopet/gentrap-report/internal/fastqc"
	"github.com/biopet/gentrap-report/internal/gentrap"
)

// NodeKind is the level of a node in the run hierarchy.
type NodeKind string

const (
	KindRun     NodeKind = "run"
	KindSample  NodeKind = "sample"
	KindLibrary NodeKind = "library"
	KindReport  NodeKind = "report"
)

// Node is one box of the diagram. Status is the worst FastQC status found
// at or below the node, empty when no report hangs below it.
type Node struct {
	ID     string
	Label  string
	Kind   NodeKind
	Status fastqc.Status
}

// Edge links a parent node to a child node.
type Edge struct {
	From string
	To   string
}

// Graph is the hierarchy of one run. Nodes are in depth-first order.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// FromRun builds the hierarchy of run. Samples and libraries keep the
// natural order of the model, reports the role order.
func FromRun(run *gentrap.Run) *Graph {
	g := &Graph{}

	runID := "run"
	runIdx := g.add(Node{ID: runID, Label: "Gentrap " + run.Version, Kind: KindRun})

	var runStatus fastqc.Status
	for _, s := range run.SamplesInOrder() {
		sampleID := runID + "/" + s.Name
		sampleIdx := g.add(Node{ID: sampleID, Label: s.Name, Kind: KindSample})
		g.Edges = append(g.Edges, Edge{From: runID, To: sampleID})

		var sampleStatus fastqc.Status
		for _, lib := range s.Libraries() {
			libID := sampleID + "/" + lib.Name
			libIdx := g.add(Node{ID: libID, Label: lib.Name, Kind: KindLibrary})
			g.Edges = append(g.Edges, Edge{From: sampleID, To: libID})

			var libStatus fastqc.Status
			for _, role := range gentrap.Roles() {
				r, ok := lib.Report(role)
				if !ok {
					continue
				}
				status := WorstStatus(r)
				reportID := libID + "/" + string(role)
				g.add(Node{
					ID:     reportID,
					Label:  reportLabel(role, r),
					Kind:   KindReport,
					Status: status,
				})
				g.Edges = append(g.Edges, Edge{From: libID, To: reportID})
				libStatus = worse(libStatus, status)
			}
			g.Nodes[libIdx].Status = libStatus
			sampleStatus = worse(sampleStatus, libStatus)
		}
		g.Nodes[sampleIdx].Status = sampleStatus
		runStatus = worse(runStatus, sampleStatus)
	}
	g.Nodes[runIdx].Status = runStatus

	return g
}

func (g *Graph) add(n Node) int {
	g.Nodes = append(g.Nodes, n)
	return len(g.Nodes) - 1
}

func reportLabel(role gentrap.Role, r *fastqc.Report) string {
	if n := r.FailsNum(); n > 0 {
		return fmt.Sprintf("%s (%d fail)", role, n)
	}
	if n := r.WarnsNum(); n > 0 {
		return fmt.Sprintf("%s (%d warn)", role, n)
	}
	return string(role)
}

// WorstStatus returns the most severe module status in r, or the empty
// status for a report without modules.
func WorstStatus(r *fastqc.Report) fastqc.Status {
	switch {
	case r.FailsNum() > 0:
		return fastqc.StatusFail
	case r.WarnsNum() > 0:
		return fastqc.StatusWarn
	case r.PassesNum() > 0:
		return fastqc.StatusPass
	}
	return ""
}

func severity(s fastqc.Status) int {
	switch s {
	case fastqc.StatusPass:
		return 1
	case fastqc.StatusWarn:
		return 2
	case fastqc.StatusFail:
		return 3
	}
	return 0
}

func worse(a, b fastqc.Status) fastqc.Status {
	if severity(b) > severity(a) {
		return b
	}
	return a
}

// StatusCounts sums module statuses over every report of run.
func StatusCounts(run *gentrap.Run) map[string]int {
	counts := make(map[string]int, len(fastqc.Statuses))
	for _, lib := range run.Libs {
		for _, r := range lib.Reports() {
			for status, n := range r.StatusCounts() {
				counts[status.String()] += n
			}
		}
	}
	return counts
}
