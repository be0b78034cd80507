//go:build rp2040

package main

import (
	"errors"
	"machine"

	"cloooock/core"
)

var ErrInvalidPin = errors.New("rp2040: no such GPIO")

const gpioCount = 30

// RPGPIODriver implements core.GPIODriver on the RP2040 bank 0 pins
type RPGPIODriver struct {
	configuredPins map[core.GPIOPin]machine.Pin
}

func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

func (d *RPGPIODriver) configure(pin core.GPIOPin, mode machine.PinMode) error {
	if pin >= gpioCount {
		return ErrInvalidPin
	}
	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: mode})
	d.configuredPins[pin] = machinePin
	return nil
}

func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinOutput)
}

func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinInputPullup)
}

func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return ErrInvalidPin
	}
	machinePin.Set(value)
	return nil
}

// ReadPin reads a configured pin; unconfigured pins read high like an
// idle pulled-up input
func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return true
	}
	return machinePin.Get()
}
