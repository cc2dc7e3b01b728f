package radio

import (
	"fmt"
	"net"
	"time"
)

// connectTCP dials a serial-to-TCP bridge in front of the radio (e.g., "192.168.1.30:9750")
func connectTCP(address string, timeout time.Duration) (net.Conn, error) {
	if address == "" {
		return nil, fmt.Errorf("no device address (ip:port) provided for TCP radio")
	}

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to radio bridge at %s: %w", address, err)
	}

	return conn, nil
}
