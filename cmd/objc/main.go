package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	objc "github.com/wippyai/objc-runtime"
	"github.com/wippyai/objc-runtime/config"
	"github.com/wippyai/objc-runtime/libobjc"
	"github.com/wippyai/objc-runtime/object"
	"github.com/wippyai/objc-runtime/objctest"
)

var rootCmd = &cobra.Command{
	Use:           "objc",
	Short:         "Inspect and message Objective-C classes from Go",
	Long:          `objc resolves method tables and sends dynamic messages through the Objective-C runtime.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return current.open(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return current.close()
	},
}

// session holds what every subcommand needs.
type session struct {
	cfg *config.Config
	log *zap.Logger
	rt  objc.Runtime
	reg *object.Registry
}

var current = &session{}

func main() {
	rootCmd.AddCommand(methodsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(browseCmd)

	rootCmd.PersistentFlags().String("config", "", "path to objc.toml (default ./objc.toml if present)")
	rootCmd.PersistentFlags().Bool("sim", false, "use the simulated runtime with demo classes")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "", "override log level (debug|info|warn|error|off)")

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (s *session) open(cmd *cobra.Command) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	sim, _ := flags.GetBool("sim")
	colorFlag, _ := flags.GetString("color")
	level, _ := flags.GetString("log-level")

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return err
	}
	if sim {
		cfg.Runtime.Simulated = true
	}
	if level != "" {
		cfg.Log.Level = level
	}

	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stdout)
	}

	log, err := cfg.Logger()
	if err != nil {
		return err
	}
	libobjc.SetLogger(log)
	object.SetLogger(log)

	var rt objc.Runtime
	if cfg.Runtime.Simulated {
		fake := objctest.New()
		objctest.Demo(fake)
		rt = fake
	} else {
		lib, err := libobjc.Open(cfg.LibraryOptions(log)...)
		if err != nil {
			return fmt.Errorf("%w (use --sim for the simulated runtime)", err)
		}
		rt = lib
	}

	s.cfg = cfg
	s.log = log
	s.rt = rt
	s.reg = object.New(rt, cfg.RegistryOptions(log)...)
	log.Debug("session opened",
		zap.Bool("simulated", cfg.Runtime.Simulated),
		zap.String("config", cfg.Path))
	return nil
}

func (s *session) close() error {
	if s.reg == nil {
		return nil
	}
	err := s.reg.Close()
	_ = s.log.Sync()
	return err
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
