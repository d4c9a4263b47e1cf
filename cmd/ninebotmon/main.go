// cmd/ninebotmon/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	ninebotbms "github.com/jonamat/go-ninebot-bms/internal/bms"
	"github.com/jonamat/go-ninebot-bms/internal/config"
	"github.com/jonamat/go-ninebot-bms/internal/display"
	"github.com/jonamat/go-ninebot-bms/internal/logging"
	"github.com/jonamat/go-ninebot-bms/pkg/bms"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "path to YAML config file")
	portFlag := flag.String("port", "", "serial device, e.g. /dev/ttyUSB0 (overrides config)")
	levelFlag := flag.String("log-level", "", "log level (overrides config)")
	flag.Parse()

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *levelFlag != "" {
		cfg.Log.Level = *levelFlag
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	// --------------------
	// Open the link
	// --------------------

	portName := cfg.Serial.Port
	if portName == "" {
		ports, err := ninebotbms.ListPorts()
		if err != nil {
			return err
		}
		portName, err = ninebotbms.ChoosePort(os.Stdin, os.Stdout, ports)
		if err != nil {
			return err
		}
	}

	session := ninebotbms.NewBMS(ninebotbms.SerialConfig{
		Baud:        cfg.Serial.Baud,
		ReadTimeout: cfg.Serial.ReadTimeout(),
	})
	if err := session.Connect(portName); err != nil {
		return err
	}
	defer func() {
		if err := session.Disconnect(); err != nil {
			logger.Warn().Err(err).Msg("closing serial port")
		}
		fmt.Println("Serial port closed.")
	}()
	fmt.Printf("\nSuccessfully opened port %s. Starting monitor...\n", portName)
	logger.Info().Str("port", portName).Int("baud", cfg.Serial.Baud).Msg("serial port open")

	// --------------------
	// Run until Ctrl+C or a link failure
	// --------------------

	requests := make([]bms.Request, 0, len(cfg.Poll.Requests))
	for _, name := range cfg.Poll.Requests {
		request, err := bms.ParseRequest(name)
		if err != nil {
			return err
		}
		requests = append(requests, request)
	}

	monitor, err := ninebotbms.NewMonitor(session, requests,
		ninebotbms.WithTiming(ninebotbms.Timing{
			RequestGap: cfg.Poll.RequestGap(),
			Settle:     cfg.Poll.Settle(),
			Interval:   cfg.Poll.Interval(),
			ReadIdle:   cfg.Poll.ReadIdle(),
		}),
		ninebotbms.WithLogger(logger),
		ninebotbms.WithRender(renderer(logger, *cfg.Display.Clear)),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = monitor.Run(ctx)
	switch {
	case err != nil:
		fmt.Println("\nSerial link failed. Stopping.")
		return fmt.Errorf("monitor stopped: %w", err)
	case errors.Is(ctx.Err(), context.Canceled):
		fmt.Println("\n\nCtrl+C detected. Stopping monitor...")
	}
	return nil
}

func renderer(logger zerolog.Logger, clearScreen bool) func(bms.View) {
	opts := display.Options{Clear: clearScreen}
	return func(view bms.View) {
		if err := display.Render(os.Stdout, view, time.Now(), opts); err != nil {
			logger.Warn().Err(err).Msg("render failed")
		}
	}
}
