package core

// DeviceState is the UI mode that decides what the encoder and buttons do
type DeviceState uint8

const (
	Running DeviceState = iota
	Paused
	SelectingChannel
	SettingDivision
)

// ButtonPressed identifies a button press event
type ButtonPressed uint8

const (
	PauseButtonPressed ButtonPressed = iota
	EncoderButtonPressed
)

// Transition returns the mode that follows a button press. Every mode/button
// pair has exactly one successor.
func (s DeviceState) Transition(button ButtonPressed) DeviceState {
	if button == PauseButtonPressed {
		if s == Running {
			return Paused
		}
		// Pause always leaves a menu back to Running
		return Running
	}

	switch s {
	case SelectingChannel:
		return SettingDivision
	default:
		// Running, Paused and SettingDivision all go (back) to channel selection
		return SelectingChannel
	}
}

// Scheduling reports whether channel outputs advance in this mode
func (s DeviceState) Scheduling() bool {
	return s == Running
}

// Selecting reports whether this mode shows the channel selection on the indicators
func (s DeviceState) Selecting() bool {
	return s == SelectingChannel || s == SettingDivision
}

// String returns the mode name
func (s DeviceState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case SelectingChannel:
		return "selecting"
	case SettingDivision:
		return "division"
	}
	return "unknown"
}

// String returns the button name
func (b ButtonPressed) String() string {
	switch b {
	case PauseButtonPressed:
		return "pause"
	case EncoderButtonPressed:
		return "encoder"
	}
	return "unknown"
}
