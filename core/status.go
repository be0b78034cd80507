package core

// MaxChannels is the number of output channels on the hardware
const MaxChannels = 4

// ChannelStatus is the reported configuration of one channel
type ChannelStatus struct {
	Numerator   uint16
	Denominator uint16
}

// Status is a comparable snapshot of the device for telemetry
type Status struct {
	BPM      uint16
	Mode     DeviceState
	Selected uint8
	BarTicks uint32
	Panics   uint32
	Count    uint8
	Channels [MaxChannels]ChannelStatus
}

// StatusReporter receives status snapshots from the controller
type StatusReporter interface {
	ReportStatus(s Status)
}
