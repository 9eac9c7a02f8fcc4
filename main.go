package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"dscheirer.com/timecircuits/button"
	"dscheirer.com/timecircuits/eeprom"
	"dscheirer.com/timecircuits/i2c"
	"dscheirer.com/timecircuits/keypad"
)

var wg sync.WaitGroup

const lampTestTime = 5 * time.Second

// tcd [-config={config file}] [-sim] [-debug] [lamptest]

type options struct {
	configFile string
	sim        bool
	debug      bool
}

func main() {
	var opts options
	rootFlagSet := flag.NewFlagSet("tcd", flag.ExitOnError)
	rootFlagSet.StringVar(&opts.configFile, "config", "/etc/default/tcd/tcd.conf", "config file path")
	rootFlagSet.BoolVar(&opts.sim, "sim", false, "simulated i2c bus, keypad and button from the keyboard")
	rootFlagSet.BoolVar(&opts.debug, "debug", false, "debug logging and display dumps")

	lampCmd := &ffcli.Command{
		Name:       "lamptest",
		ShortUsage: "tcd [flags] lamptest",
		ShortHelp:  "Light every segment of every display",
		Exec: func(ctx context.Context, args []string) error {
			return execLampTest(opts)
		},
	}

	rootCmd := &ffcli.Command{
		ShortUsage:  "tcd [flags] <subcommand>",
		ShortHelp:   "Time circuits display",
		FlagSet:     rootFlagSet,
		Options:     []ff.Option{ff.WithEnvVarPrefix("TCD")},
		Subcommands: []*ffcli.Command{lampCmd},
		Exec: func(ctx context.Context, args []string) error {
			return execRun(opts)
		},
	}

	if err := rootCmd.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadSettings(opts options) (configSettings, error) {
	settings, err := initSettings(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.sim {
		settings.Set(sI2CSim, true)
	}
	if opts.debug {
		settings.Set(sDebug, true)
	}
	return settings, nil
}

type hardware struct {
	bus     *i2c.I2C
	storage eeprom.Storage
	enterIn button.Input
	kb      *keyboard
	closers []io.Closer
}

func (hw *hardware) Close() {
	for i := len(hw.closers) - 1; i >= 0; i-- {
		hw.closers[i].Close()
	}
	if !hw.bus.Simulated() {
		closeButtonPins()
	}
}

func openHardware(rt runtimeConfig) (*hardware, error) {
	settings := rt.settings
	sim := settings.GetBool(sI2CSim)
	debug := settings.GetBool(sDebug)

	bus, err := i2c.Open(settings.GetString(sI2CBus), sim)
	if err != nil {
		return nil, err
	}
	hw := &hardware{bus: bus, closers: []io.Closer{bus}}

	path := settings.GetString(sEEPROM)
	ef, err := eeprom.OpenFile(path)
	switch {
	case err == nil:
		hw.storage = ef
		hw.closers = append(hw.closers, ef)
	case sim:
		rt.logger.Printf("%s, saving to memory only", err.Error())
		hw.storage = eeprom.NewMemory()
	default:
		hw.Close()
		return nil, err
	}

	if !sim {
		hw.enterIn, err = openButtonPin(settings.GetInt(sButtonPin))
		if err != nil {
			hw.Close()
			return nil, err
		}
		return hw, nil
	}

	bus.Quiet(!debug)
	for _, k := range []string{sDestAddr, sPresAddr, sLastAddr, sSpeedoAddr} {
		bus.Attach(uint16(settings.GetByte(k)), newLogDisplay(k, debug))
	}
	kcfg := keypad.DefaultConfig()
	sk := newSimKeypad(kcfg, rt.clock)
	bus.Attach(uint16(settings.GetByte(sKeypadAddr)), sk)

	sb := &simButton{clock: rt.clock}
	hw.enterIn = sb

	enter := byte('e')
	if s := settings.GetString(sButtonSim); len(s) > 0 && s[0] >= 'a' && s[0] <= 'z' {
		enter = s[0]
	}
	hw.kb = &keyboard{keypad: sk, button: sb, enter: enter, logger: &ThreadLogger{name: "Keyboard"}}
	return hw, nil
}

func startup(opts options) (runtimeConfig, *hardware, *timeCircuits, io.Closer, error) {
	var rt runtimeConfig
	settings, err := loadSettings(opts)
	if err != nil {
		return rt, nil, nil, nil, err
	}

	// the terminal belongs to termbox in sim mode
	logs, err := setupLogging(settings, !settings.GetBool(sI2CSim))
	if err != nil {
		return rt, nil, nil, nil, err
	}

	rt = initRuntime(settings)
	if settings.GetBool(sDebug) {
		settings.Dump()
	}

	hw, err := openHardware(rt)
	if err != nil {
		logs.Close()
		return rt, nil, nil, nil, err
	}

	tc, err := newTimeCircuits(rt, hw.bus, hw.storage, hw.enterIn)
	if err == nil {
		err = tc.begin()
	}
	if err != nil {
		hw.Close()
		logs.Close()
		return rt, nil, nil, nil, err
	}
	return rt, hw, tc, logs, nil
}

func execRun(opts options) error {
	rt, hw, tc, logs, err := startup(opts)
	if err != nil {
		return err
	}
	defer logs.Close()
	defer hw.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case s := <-sigs:
			rt.logger.Printf("got %v", s)
			rt.comms.shutdown()
		case <-rt.comms.quit:
		}
	}()

	if hw.kb != nil {
		if err := initKeyboard(); err != nil {
			return err
		}
		wg.Add(1)
		go runKeyboard(rt, hw.kb)
		go func() {
			<-rt.comms.quit
			interruptKeyboard()
		}()
	}

	wg.Add(1)
	go runTimeCircuits(tc)

	wg.Wait()
	return nil
}

func execLampTest(opts options) error {
	_, hw, tc, logs, err := startup(opts)
	if err != nil {
		return err
	}
	defer logs.Close()
	defer hw.Close()

	tc.lampTest(lampTestTime)
	return nil
}
