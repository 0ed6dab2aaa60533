package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	configPath string
	webPort    = &webPortFlag{defaultPort: 8080}
	maxTicks   uint64
	dumpFrames bool

	mainCmd = &cobra.Command{
		Use:           "joypanel",
		Short:         "Joystick-driven LED dimmer with an OLED status panel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Drive the panel from the configured board (or its mock)",
		Args:  cobra.NoArgs,
		RunE:  runPanel,
	}
)

func main() {
	mainCmd.PersistentFlags().StringVarP(&configPath, "config", "c", filepath.Join("configs", "default.yaml"), "Config path. Must be a .yaml file in a configs/ directory")
	mainCmd.PersistentFlags().Var(webPort, "web", "Start the read-only diagnostic mirror; --web for port 8080, --web=8980 for a custom port")
	mainCmd.PersistentFlags().Lookup("web").NoOptDefVal = strconv.Itoa(webPort.defaultPort)
	runCmd.Flags().Uint64Var(&maxTicks, "ticks", 0, "Stop after n ticks (0 = run until interrupted)")
	runCmd.Flags().BoolVar(&dumpFrames, "dump", false, "Print every frame as text (mock display only)")
	mainCmd.AddCommand(runCmd)

	if err := mainCmd.Execute(); err != nil {
		log.Errorln(err)
		os.Exit(1)
	}
}

// webPortFlag implements pflag.Value for --web: 0 = disabled, --web or
// --web=8080 → 8080, --web=8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

var _ pflag.Value = (*webPortFlag)(nil)

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) Type() string { return "port" }

func (w *webPortFlag) port() int { return w.val }

// resolvePort gives the command line precedence over the config file.
func resolvePort(flagPort, cfgPort int) int {
	if flagPort > 0 {
		return flagPort
	}
	return cfgPort
}
