package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"varvara/internal/hostconfig"
	"varvara/internal/hostlog"
	"varvara/internal/inputdev"
	"varvara/internal/sdlhost"
	"varvara/internal/uxn"
	"varvara/internal/varvara"
)

var (
	configPath string
	headless   bool
)

var runCmd = &cobra.Command{
	Use:   "run path/to/rom.rom [args...]",
	Short: "run a Uxn ROM",
	Args:  cobra.MinimumNArgs(1),
	Run:   runUxn,
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a uxnhost YAML config file")
	runCmd.Flags().BoolVar(&headless, "headless", false, "run without opening a window (console and filesystem only)")
}

func runUxn(cmd *cobra.Command, args []string) {
	cfg := hostconfig.Default()
	if configPath != "" {
		loaded, err := hostconfig.Load(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	level := log.WarnLevel
	if cfg.Log.Level == "debug" {
		level = log.DebugLevel
	}
	logger := hostlog.New(os.Stderr, level)
	if level == log.DebugLevel {
		for _, c := range cfg.Log.Components {
			logger.Enable(hostlog.Component(c))
		}
	}

	romPath := args[0]
	romArgs := args[1:]

	vb, err := varvara.New(cfg.Screen.Width, cfg.Screen.Height, nil, cfg.FS.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "uxnhost: %v\n", err)
		os.Exit(1)
	}
	vb.OnSystemDebug = func(enabled bool) {
		logger.Infof(hostlog.ComponentHost, "system debug overlay: %v", enabled)
	}

	m := &uxn.Machine{Device: vb, Logger: logger.For(hostlog.ComponentCPU)}
	if err := vb.Boot(m, romPath); err != nil {
		fmt.Fprintf(os.Stderr, "uxnhost: loading %s: %v\n", romPath, err)
		os.Exit(1)
	}

	vb.Console.Write = func(b byte) { os.Stdout.Write([]byte{b}) }
	vb.Console.WriteError = func(b byte) { os.Stderr.Write([]byte{b}) }

	m.Eval(uxn.PageProgram)
	vb.Console.FeedArgs(m, romArgs)

	if headless {
		runHeadless(m, vb)
		return
	}
	if err := runWindowed(m, vb, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "uxnhost: %v\n", err)
		os.Exit(1)
	}
}

func runHeadless(m *uxn.Machine, vb *varvara.Varvara) {
	for !vb.Halted(m) {
		vb.Screen.Frame(m)
		time.Sleep(time.Second / 60)
	}
}

func runWindowed(m *uxn.Machine, vb *varvara.Varvara, cfg hostconfig.Config) error {
	controller := &inputdev.Controller{}
	km := map[string]byte{}
	for key, name := range cfg.KeyMap {
		km[key] = buttonByName(name)
	}
	keymap := inputdev.NewKeyMapInput(controller, km)

	host, err := sdlhost.New(cfg.Screen.Width, cfg.Screen.Height, cfg.Screen.Zoom, keymap, &vb.Mouse, vb.Screen)
	if err != nil {
		return err
	}
	defer host.Close()
	vb.Screen.Presenter = host

	frameTime := time.Second / 60
	last := time.Now()
	for host.PumpEvents(m) && !vb.Halted(m) {
		vb.Screen.Frame(m)
		if err := sdlhost.RunFrame(m, &vb.Audio, host); err != nil {
			return err
		}
		if err := host.Present(); err != nil {
			return err
		}
		elapsed := time.Since(last)
		if elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
		last = time.Now()
	}
	return nil
}

func buttonByName(name string) byte {
	switch name {
	case "A":
		return inputdev.ButtonA
	case "B":
		return inputdev.ButtonB
	case "Select":
		return inputdev.ButtonSelect
	case "Start":
		return inputdev.ButtonStart
	case "Up":
		return inputdev.ButtonUp
	case "Down":
		return inputdev.ButtonDown
	case "Left":
		return inputdev.ButtonLeft
	case "Right":
		return inputdev.ButtonRight
	}
	return 0
}
