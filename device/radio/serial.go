package radio

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// connectSerial opens the serial port an XBee coordinator is attached to
func connectSerial(devicePath string, baud int, readTimeout time.Duration) (io.ReadWriteCloser, error) {
	if devicePath == "" {
		return nil, fmt.Errorf("no device path (e.g., /dev/ttyUSB0 or COM3) provided for serial radio")
	}

	// XBee modules ship at 9600 8N1
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(devicePath, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", devicePath, err)
	}

	// Read returns 0, nil on timeout, which lets the read loop notice cancellation
	if readTimeout > 0 {
		if err := port.SetReadTimeout(readTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("failed to set read timeout: %w", err)
		}
	}

	return port, nil
}
