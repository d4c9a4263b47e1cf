package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonamat/go-ninebot-bms/pkg/bms"
)

const (
	clearScreen  = "\033[H\033[2J"
	notAvailable = "N/A"
)

var rule = strings.Repeat("=", 60)

// Options controls terminal rendering.
type Options struct {
	Clear bool // prefix each frame with an ANSI clear-screen sequence
}

// Render writes the view in the monitor's text layout. When the latest
// frame failed its checksum only the error line is shown.
func Render(w io.Writer, view bms.View, now time.Time, opts Options) error {
	var out strings.Builder
	if opts.Clear {
		out.WriteString(clearScreen)
	}

	fmt.Fprintln(&out, rule)
	fmt.Fprintln(&out, "Segway-Ninebot BMS Monitor (Press Ctrl+C to exit)")
	fmt.Fprintln(&out, rule)

	if view.Err != nil {
		fmt.Fprintf(&out, "   %s\n", strings.ToUpper(view.Err.Error()))
		fmt.Fprintf(&out, "\n%s\n", rule)
		_, err := io.WriteString(w, out.String())
		return err
	}

	fields := view.Fields

	fmt.Fprintln(&out, "  [BATTERY INFORMATION]")
	fmt.Fprintf(&out, "   Serial Number: %s\n", text(fields, bms.FieldSerialNumber))
	fmt.Fprintf(&out, "   Firmware Version: %s\n", text(fields, bms.FieldFirmwareVersion))
	fmt.Fprintf(&out, "   Capacity: %s mAh\n", text(fields, bms.FieldCapacity))
	fmt.Fprintf(&out, "   Total Capacity: %s mAh\n", text(fields, bms.FieldTotalCapacity))
	fmt.Fprintf(&out, "   Design Voltage: %s\n", fixed(fields, bms.FieldDesignVoltage, 2, " V"))
	fmt.Fprintf(&out, "   Cycle Count: %s\n", text(fields, bms.FieldCycleCount))
	fmt.Fprintf(&out, "   Charge Count: %s\n", text(fields, bms.FieldChargeCount))

	fmt.Fprintln(&out, "\n  [BATTERY STATUS]")
	fmt.Fprintf(&out, "   Remaining Capacity: %s mAh\n", text(fields, bms.FieldRemainingCapacity))
	fmt.Fprintf(&out, "   Remaining: %s%%\n", text(fields, bms.FieldRemainingPercent))
	fmt.Fprintf(&out, "   Current: %s\n", fixed(fields, bms.FieldCurrent, 2, " A"))
	fmt.Fprintf(&out, "   Voltage: %s\n", fixed(fields, bms.FieldVoltage, 2, " V"))
	fmt.Fprintf(&out, "   Temperature: %s\n", temperatures(fields))
	fmt.Fprintf(&out, "   Health: %s%%\n", text(fields, bms.FieldHealthPercent))

	fmt.Fprintln(&out, "\n  [CELL VOLTAGES]")
	cells := view.Cells()
	if len(cells) == 0 {
		fmt.Fprintln(&out, "   No cell data available.")
	}
	for _, cell := range cells {
		fmt.Fprintf(&out, "   Cell %d: %.3f V\n", cell.Number, cell.Volts)
	}
	if lowest, highest, diff, ok := view.CellSpread(); ok {
		fmt.Fprintf(&out, "   Min: %.3fV, Max: %.3fV, Diff: %.3fV\n", lowest, highest, diff)
	}

	fmt.Fprintf(&out, "\n%s\n", rule)
	fmt.Fprintf(&out, "Last updated: %s\n", now.Format(time.DateTime))

	_, err := io.WriteString(w, out.String())
	return err
}

func text(fields bms.Fields, id bms.FieldID) string {
	value, ok := fields[id]
	if !ok {
		return notAvailable
	}
	return value.String()
}

func fixed(fields bms.Fields, id bms.FieldID, decimals int, unit string) string {
	value, ok := fields[id].Float()
	if !ok {
		return notAvailable
	}
	return fmt.Sprintf("%.*f%s", decimals, value, unit)
}

func temperatures(fields bms.Fields) string {
	temp1, ok1 := fields[bms.FieldTemp1].Int()
	temp2, ok2 := fields[bms.FieldTemp2].Int()
	if !ok1 || !ok2 {
		return notAvailable
	}
	return fmt.Sprintf("%d°C / %d°C", temp1, temp2)
}
