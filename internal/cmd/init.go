package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/biopet/gentrap-report/internal/cache"
	"github.com/biopet/gentrap-report/internal/config"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the .gentrap directory",
	Long: `Initialize the .gentrap directory in the current directory.

This writes .gentrap/config.yaml with the default settings and creates the
metrics cache database at .gentrap/cache.db.`,
	Example: `  gentrap-report init          # Initialize in current directory
  gentrap-report init --force  # Rewrite config and recreate the cache`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if .gentrap already exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	dir := filepath.Join(cwd, config.ConfigDirName)
	configFile := filepath.Join(dir, config.ConfigFileName)

	_, err = os.Stat(configFile)
	if err == nil {
		if !initForce {
			fmt.Fprintf(out, "Already initialized at %s\n", config.ConfigDirName)
			return nil
		}
		if err := os.Remove(configFile); err != nil {
			return fmt.Errorf("removing existing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	if _, err := config.SaveDefault(cwd); err != nil {
		return err
	}

	dbPath := filepath.Join(cwd, config.DefaultConfig().Cache.Path)
	if initForce {
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing existing cache: %w", err)
			}
		}
	}

	c, err := cache.Open(dbPath)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer c.Close()

	fmt.Fprintf(out, "Initialized gentrap-report at %s\n", config.ConfigDirName)
	return nil
}
