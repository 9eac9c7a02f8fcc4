// utility functions
package main

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

type commChannels struct {
	quit chan struct{}
	once *sync.Once
}

// shutdown closes quit, more than once is fine
func (c commChannels) shutdown() {
	c.once.Do(func() { close(c.quit) })
}

type runtimeConfig struct {
	settings configSettings
	clock    clockwork.Clock
	logger   flogger
	comms    commChannels
}

func initCommChannels() commChannels {
	return commChannels{
		quit: make(chan struct{}),
		once: &sync.Once{},
	}
}

func initRuntime(settings configSettings) runtimeConfig {
	return runtimeConfig{
		settings: settings,
		clock:    clockwork.NewRealClock(),
		logger:   &ThreadLogger{name: "Main"},
		comms:    initCommChannels(),
	}
}

func initTestRuntime(settings configSettings) runtimeConfig {
	rt := initRuntime(settings)
	rt.clock = clockwork.NewFakeClock()
	return rt
}
