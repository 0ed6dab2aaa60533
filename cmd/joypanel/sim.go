//go:build sim

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cjeanneret/JoyPanel/internal/debug"
	"github.com/cjeanneret/JoyPanel/internal/hw/gpio"
	"github.com/cjeanneret/JoyPanel/internal/logic/debounce"
	"github.com/cjeanneret/JoyPanel/internal/logic/state"
	"github.com/cjeanneret/JoyPanel/internal/sim"
)

// The simulator links ebiten (cgo, X11/GL), so it is only built with
// -tags sim; the hardware binary stays pure Go.
var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Open a desktop window simulating the board",
	Args:  cobra.NoArgs,
	RunE:  runSim,
}

func init() {
	mainCmd.AddCommand(simCmd)
}

// simPanel wires the simulated board in place of every hardware role.
func simPanel() (*panel, *sim.Board) {
	board := sim.NewBoard(nil)
	ctl := state.New()
	det := debounce.NewDetector(ctl, board)
	board.SetEdgeHandler(det.OnRawEdge)

	p := &panel{ctl: ctl, det: det}
	p.deps.Analog = board
	p.deps.Outputs = board
	p.deps.Display = board
	p.deps.Pins = board
	p.deps.StylePin = sim.StylePin
	p.deps.TogglePin = sim.TogglePin
	p.deps.PressedLevel = gpio.Low
	return p, board
}

// runSim keeps the window on the main goroutine, as ebiten requires, and
// runs the control loop beside it. Closing the window stops the loop.
func runSim(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, board := simPanel()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)

	done := make(chan error, 1)
	go func() {
		defer cancel()
		done <- serve(ctx, p, resolvePort(webPort.port(), cfg.Defaults.WebPort))
	}()

	werr := sim.RunWindow(ctx, board, "JoyPanel")
	cancel()
	if err := <-done; err != nil {
		return err
	}
	if werr != nil {
		debug.Error(werr)
	}
	return werr
}
