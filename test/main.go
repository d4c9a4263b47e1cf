package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	bms "github.com/jonamat/go-ninebot-bms"
	protocol "github.com/jonamat/go-ninebot-bms/pkg/bms"
)

const BMS_PORT = "/dev/ttyUSB0"

func main() {
	fmt.Println("Starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The snapshot outlives reconnects so last known values stay visible.
	snapshot := protocol.NewSnapshot()

	for ctx.Err() == nil {
		bmsClient := bms.NewBMS(bms.SerialConfig{})
		err := bmsClient.Connect(BMS_PORT)
		if err != nil {
			fmt.Printf("Error connecting to BMS: %v\n", err)
			time.Sleep(1 * time.Second)
			continue
		}

		monitor, err := bms.NewMonitor(bmsClient, protocol.DefaultRequests,
			bms.WithSnapshot(snapshot),
			bms.WithRender(printView),
		)
		if err != nil {
			fmt.Println("Error creating monitor: ", err)
			return
		}

		if err := monitor.Run(ctx); err != nil {
			fmt.Println("Error reading data: ", err)
		}

		if err := bmsClient.Disconnect(); err != nil {
			fmt.Println("Error disconnecting from BMS: ", err)
		}

		// delay before reconnecting
		time.Sleep(1 * time.Second)
	}
}

func printView(view protocol.View) {
	if view.Err != nil {
		fmt.Println("Last frame rejected: ", view.Err)
	}
	fmt.Println("Serial number: ", view.Fields[protocol.FieldSerialNumber])
	fmt.Println("Firmware: ", view.Fields[protocol.FieldFirmwareVersion])
	fmt.Println("Remaining percent: ", view.Fields[protocol.FieldRemainingPercent])
	fmt.Println("Voltage: ", view.Fields[protocol.FieldVoltage])
	fmt.Println("Current: ", view.Fields[protocol.FieldCurrent])
	fmt.Println("Temperature 1: ", view.Fields[protocol.FieldTemp1])
	fmt.Println("Temperature 2: ", view.Fields[protocol.FieldTemp2])
	fmt.Println("Health percent: ", view.Fields[protocol.FieldHealthPercent])
	fmt.Println("Cell voltages: ", view.Fields[protocol.FieldCells])
	fmt.Println("Frames good/bad: ", view.Good, view.Bad)
	fmt.Println()
}

/*
	Output example:
	Starting...
	Serial number:  3NBAT1234ABCD
	Firmware:  1.2.3.4
	Remaining percent:  87
	Voltage:  39.12
	Current:  -0.01
	Temperature 1:  25
	Temperature 2:  24
	Health percent:  98
	Cell voltages:  {cell_1:3.912 cell_2:3.910 cell_3:3.915}
	Frames good/bad:  42 0
*/
