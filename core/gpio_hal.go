package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// ReadPin reads the current pin state
	ReadPin(pin GPIOPin) bool
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// GetGPIODriver returns the registered driver (nil if none)
func GetGPIODriver() GPIODriver {
	return gpioDriver
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}

// GPIOPair is a ChannelDriver on two plain GPIO outputs.
// The pins are written back to back from the main loop.
type GPIOPair struct {
	LED GPIOPin
	Out GPIOPin
}

// ConfigureGPIOPair configures both pins as outputs, driven low
func ConfigureGPIOPair(led, out GPIOPin) (*GPIOPair, error) {
	gpio := MustGPIO()
	for _, pin := range [2]GPIOPin{led, out} {
		if err := gpio.ConfigureOutput(pin); err != nil {
			return nil, err
		}
		if err := gpio.SetPin(pin, false); err != nil {
			return nil, err
		}
	}
	return &GPIOPair{LED: led, Out: out}, nil
}

// Write sets the indicator and output levels
func (p *GPIOPair) Write(led, out bool) {
	gpio := MustGPIO()
	// Errors only occur for unconfigured pins, which ConfigureGPIOPair rules out
	_ = gpio.SetPin(p.Out, out)
	_ = gpio.SetPin(p.LED, led)
}

// GPIOInput is a LevelInput on a GPIO pin with pull-up
type GPIOInput struct {
	Pin GPIOPin
}

// ConfigureGPIOInput configures pin as an input with pull-up
func ConfigureGPIOInput(pin GPIOPin) (*GPIOInput, error) {
	if err := MustGPIO().ConfigureInputPullUp(pin); err != nil {
		return nil, err
	}
	return &GPIOInput{Pin: pin}, nil
}

// Get reads the pin level
func (in *GPIOInput) Get() bool {
	return MustGPIO().ReadPin(in.Pin)
}
