// internal/cli/root.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shellpin/shellpin"
	"github.com/shellpin/shellpin/pkg/core"
	"github.com/shellpin/shellpin/pkg/platform"
)

var (
	cfgFile    string
	projectDir string
	systemFlag string
	debug      bool
	config     *core.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shellpin",
	Short: "Declarative dev shells",
	Long: `shellpin - Declarative dev shells

Describe a project's tools in shellpin.yaml, pin them in a lockfile,
and realize the same shell on every machine and platform.`,
	Version: "0.1.0",
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/shellpin/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", ".", "project directory containing shellpin.yaml")
	rootCmd.PersistentFlags().StringVar(&systemFlag, "system", "", "target system (default is the current platform)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add commands
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	config, err = core.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		config = core.DefaultConfig()
	}

	if debug {
		config.Debug = true
	}
}

// newManager loads the project descriptor with the effective config
func newManager() (*shellpin.Manager, error) {
	return shellpin.NewManager(projectDir, config)
}

// targetSystem resolves the --system flag, falling back to detection
func targetSystem() (platform.System, error) {
	if systemFlag != "" {
		s := platform.System(systemFlag)
		if !s.IsValid() {
			return "", fmt.Errorf("unknown system %q (valid: %v)", systemFlag, platform.DefaultSystems)
		}
		return s, nil
	}
	return platform.Detect()
}
