// Package gentraptest writes pipeline summary fixtures for tests.
//
// The fixture run has two samples. sample_1 is paired end with one library
// carrying all four FastQC roles; sample_2 is single end with one library
// carrying fastqc_R1 and fastqc_R1_qc. Both samples and libraries have RNA
// metrics. Every FastQC report is the same file: 7 pass, 2 warn, 2 fail.
package gentraptest

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

//go:embed testdata/fastqc_data.txt
var FastQCData []byte

// Names used by the fixture.
const (
	Sample1 = "sample_1"
	Sample2 = "sample_2"
	Library = "lib_1"
	Version = "0.4"
)

// WriteFastQC writes the FastQC fixture into dir and returns its path.
func WriteFastQC(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "fastqc_data.txt")
	if err := os.WriteFile(path, FastQCData, 0644); err != nil {
		t.Fatalf("write fastqc fixture: %v", err)
	}
	return path
}

// WriteSummary writes the FastQC fixture and a summary referencing it into
// dir, returning the summary path.
func WriteSummary(t testing.TB, dir string) string {
	t.Helper()
	fq := WriteFastQC(t, dir)
	return WriteDocument(t, dir, Document(fq))
}

// WriteDocument writes doc as JSON into dir and returns its path.
func WriteDocument(t testing.TB, dir string, doc map[string]any) string {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal summary fixture: %v", err)
	}
	path := filepath.Join(dir, "gentrap.summary.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write summary fixture: %v", err)
	}
	return path
}

// RNAStats are the RNA metrics of every fixture node.
//
//	exonic_bases             500000
//	pct_exonic_bases_all     0.5
//	pct_exonic_bases         0.625
//	pct_aligned_bases_all    0.8
//	pct_ribosomal_bases_all  0.001
func RNAStats() map[string]any {
	return map[string]any{
		"pf_bases":           1000000,
		"pf_aligned_bases":   800000,
		"coding_bases":       400000,
		"utr_bases":          100000,
		"intronic_bases":     200000,
		"intergenic_bases":   100000,
		"ribosomal_bases":    1000,
		"pf_ribosomal_bases": 1000,
	}
}

func fastqcEntry(path string) map[string]any {
	return map[string]any{
		"fastqc_data": map[string]any{"path": path, "md5": "0123456789abcdef"},
	}
}

func library(paired bool, fastqcPath string, roles ...string) map[string]any {
	files := map[string]any{
		"pipeline": map[string]any{
			"input_R1": map[string]any{"path": "/data/input_R1.fq.gz"},
		},
	}
	for _, role := range roles {
		files[role] = fastqcEntry(fastqcPath)
	}
	return map[string]any{
		"flexiprep": map[string]any{
			"settings": map[string]any{"skip_clip": false, "skip_trim": false, "paired": paired},
			"files":    files,
		},
		"bammetrics": map[string]any{
			"stats": map[string]any{
				"alignment_metrics": map[string]any{"pf_reads": 20000, "pf_aligned_reads": 18000},
			},
			"files": map[string]any{
				"insert_size_metrics": map[string]any{"path": "/out/insert_size_metrics.txt"},
			},
		},
		"gentrap": map[string]any{
			"stats": map[string]any{"rna_metrics": RNAStats()},
			"files": map[string]any{"rna_metrics": map[string]any{"path": "/out/rna_metrics.txt"}},
		},
	}
}

func sample(paired bool, libs map[string]any) map[string]any {
	return map[string]any{
		"gentrap": map[string]any{
			"stats": map[string]any{
				"pipeline":    map[string]any{"all_paired": paired},
				"rna_metrics": RNAStats(),
			},
		},
		"libraries": libs,
	}
}

// Document returns the fixture summary with every FastQC role pointing at
// fastqcPath.
func Document(fastqcPath string) map[string]any {
	return map[string]any{
		"gentrap": map[string]any{
			"settings": map[string]any{
				"version":         Version,
				"strand_protocol": "non_specific",
				"aligner":         "gsnap",
			},
			"executables": map[string]any{
				"cutadapt":                       map[string]any{"version": "1.5"},
				"sickle":                         map[string]any{"version": "1.33"},
				"fastqc":                         map[string]any{"version": "0.11.2"},
				"gsnap":                          map[string]any{"version": "2014-12-23"},
				"htseqcount":                     map[string]any{"version": "0.6.1"},
				"collectalignmentsummarymetrics": map[string]any{"version": nil},
				"samtoolsview":                   map[string]any{"version": "1.1"},
			},
			"files": map[string]any{
				"pipeline": map[string]any{
					"fragments_per_gene": map[string]any{"path": "/out/fragments_per_gene.tsv"},
				},
			},
		},
		"samples": map[string]any{
			Sample1: sample(true, map[string]any{
				Library: library(true, fastqcPath, "fastqc_R1", "fastqc_R2", "fastqc_R1_qc", "fastqc_R2_qc"),
			}),
			Sample2: sample(false, map[string]any{
				Library: library(false, fastqcPath, "fastqc_R1", "fastqc_R1_qc"),
			}),
		},
	}
}
