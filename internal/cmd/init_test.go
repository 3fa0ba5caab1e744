package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biopet/gentrap-report/internal/config"
)

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	initForce = false
	t.Cleanup(func() { initForce = false })

	run := func() string {
		var buf bytes.Buffer
		initCmd.SetOut(&buf)
		if err := runInit(initCmd, nil); err != nil {
			t.Fatalf("runInit: %v", err)
		}
		return buf.String()
	}

	out := run()
	if !strings.Contains(out, "Initialized gentrap-report at .gentrap") {
		t.Errorf("unexpected output: %q", out)
	}

	configFile := filepath.Join(dir, config.ConfigDirName, config.ConfigFileName)
	cfg, err := config.LoadFromPath(configFile)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if *cfg != *config.DefaultConfig() {
		t.Errorf("written config differs from defaults: %+v", cfg)
	}
	if _, err := os.Stat(filepath.Join(dir, config.ConfigDirName, "cache.db")); err != nil {
		t.Errorf("cache database not created: %v", err)
	}

	if out := run(); !strings.Contains(out, "Already initialized") {
		t.Errorf("second init should be a no-op, got %q", out)
	}

	if err := os.WriteFile(configFile, []byte("render:\n  locale: nl-NL\n"), 0644); err != nil {
		t.Fatal(err)
	}
	initForce = true
	if out := run(); !strings.Contains(out, "Initialized") {
		t.Errorf("forced init output: %q", out)
	}
	data, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "nl-NL") {
		t.Error("forced init should rewrite the config file")
	}
}
