package ninebotbms

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.bug.st/serial/enumerator"
)

var ErrNoPorts = errors.New("no serial ports found")

// PortInfo describes one serial port found on the host.
type PortInfo struct {
	Name        string
	Description string
}

// ListPorts enumerates the serial ports on the host.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, detail := range details {
		ports = append(ports, PortInfo{Name: detail.Name, Description: describe(detail)})
	}
	return ports, nil
}

func describe(detail *enumerator.PortDetails) string {
	if !detail.IsUSB {
		return "n/a"
	}
	description := fmt.Sprintf("USB VID:PID=%s:%s", detail.VID, detail.PID)
	if detail.Product != "" {
		description = detail.Product + " (" + description + ")"
	}
	if detail.SerialNumber != "" {
		description += " SER=" + detail.SerialNumber
	}
	return description
}

// ChoosePort lists ports on out and reads the chosen number from in,
// asking again until the answer is valid.
func ChoosePort(in io.Reader, out io.Writer, ports []PortInfo) (string, error) {
	fmt.Fprintln(out, "Available serial ports:")
	if len(ports) == 0 {
		fmt.Fprintln(out, "No serial ports found!")
		return "", ErrNoPorts
	}
	for i, port := range ports {
		fmt.Fprintf(out, "  %d: %s - %s\n", i, port.Name, port.Description)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Enter port number to use: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("read port choice: %w", err)
			}
			return "", fmt.Errorf("read port choice: %w", io.ErrUnexpectedEOF)
		}

		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil && choice >= 0 && choice < len(ports) {
			return ports[choice].Name, nil
		}
		fmt.Fprintln(out, "Invalid input. Please enter a number from the list.")
	}
}
