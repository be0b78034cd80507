package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"

	"cloooock/host/monitor"
	"cloooock/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate of the debug UART")
	verbose = flag.Bool("verbose", false, "Print every status frame, not only changes")
)

func main() {
	flag.Parse()

	fmt.Println("cloooock monitor - clock module telemetry")
	fmt.Println("=========================================")

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	fmt.Printf("Connecting to %s at %d baud...\n", *device, *baud)
	m, err := monitor.Connect(cfg, os.Stdout, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	var stopped atomic.Bool
	go func() {
		<-interrupt
		stopped.Store(true)
		m.Close()
	}()

	err = m.Run()
	m.PrintSummary()
	if err != nil && !stopped.Load() {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
