//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the cut-input lines from actual hardware using the
// Linux GPIO character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines [NumCutInputs]*gpiocdev.Line
}

// NewRealReader opens chip "gpiochip0" and requests pins as pulled-down
// inputs, matching the optoisolator modules' idle-low wiring.
func NewRealReader(pins [NumCutInputs]int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{chip: chip}
	for i, pin := range pins {
		line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request cut-input pin %d (index %d): %w", pin, i, err)
		}
		r.lines[i] = line
	}
	return r, nil
}

// Read returns the raw HIGH/LOW level of each line.
func (r *RealReader) Read() ([NumCutInputs]bool, error) {
	var out [NumCutInputs]bool
	for i, line := range r.lines {
		if line == nil {
			continue
		}
		v, err := line.Value()
		if err != nil {
			return out, fmt.Errorf("read cut-input line %d: %w", i, err)
		}
		out[i] = v != 0
	}
	return out, nil
}

// Close releases GPIO resources, reconfiguring lines to pulled-down
// inputs first so a reboot doesn't leave them in an unexpected state.
func (r *RealReader) Close() error {
	var errs []error
	for i, line := range r.lines {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure cut-input line %d: %w", i, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cut-input line %d: %w", i, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealActuator drives the release-mechanism output line via the Linux
// GPIO character device.
type RealActuator struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealActuator opens chip "gpiochip0" and requests pin as an output,
// initially driven low (locked).
func NewRealActuator(pin int) (*RealActuator, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request release pin %d: %w", pin, err)
	}
	return &RealActuator{chip: chip, line: line}, nil
}

// Drive sets the release output line HIGH (active=true) or LOW.
func (a *RealActuator) Drive(active bool) error {
	level := 0
	if active {
		level = 1
	}
	if err := a.line.SetValue(level); err != nil {
		return fmt.Errorf("drive release line: %w", err)
	}
	return nil
}

// Close releases GPIO resources, leaving the line driven low (locked).
func (a *RealActuator) Close() error {
	var errs []error
	if a.line != nil {
		if err := a.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive release line low: %w", err))
		}
		if err := a.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close release line: %w", err))
		}
	}
	if a.chip != nil {
		if err := a.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
