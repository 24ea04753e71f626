package i2c

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gi2c "gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/uvindex"
)

var _ uvindex.I2CBus = &GobotBus{}

// GobotBus adapts a gobot I2C connector (e.g. the NanoPi NEO adaptor) to uvindex.I2CBus.
// Connections are opened lazily per device address and kept until Close.
type GobotBus struct {
	mx        sync.Mutex
	connector gi2c.Connector
	bus       int
	conns     map[byte]gi2c.Connection
}

func NewGobotBus(connector gi2c.Connector, bus int) *GobotBus {
	return &GobotBus{
		connector: connector,
		bus:       bus,
		conns:     make(map[byte]gi2c.Connection),
	}
}

func (b *GobotBus) connection(address byte) (gi2c.Connection, error) {
	if c, ok := b.conns[address]; ok {
		return c, nil
	}
	c, err := b.connector.GetI2cConnection(int(address), b.bus)
	if err != nil {
		return nil, fmt.Errorf("could not open connection to %#x on bus %d: %w", address, b.bus, err)
	}
	b.conns[address] = c
	return c, nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	c, err := b.connection(address)
	if err != nil {
		return err
	}
	n, err := c.Read(buffer)
	if err != nil {
		return fmt.Errorf("could not read from %#x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short read from %#x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

// WriteToAddr writes buffer to the device. The gobot connection cannot issue a
// zero-length write, so an empty buffer probes the address with a single byte read.
func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	c, err := b.connection(address)
	if err != nil {
		return err
	}
	if len(buffer) == 0 {
		_, err = c.ReadByte()
		if err != nil {
			return fmt.Errorf("no response from %#x: %w", address, err)
		}
		return nil
	}
	err = c.WriteBytes(buffer)
	if err != nil {
		return fmt.Errorf("could not write to %#x: %w", address, err)
	}
	return nil
}

func (b *GobotBus) Release(ctx context.Context) error {
	return nil
}

func (b *GobotBus) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var errs []error
	for addr, c := range b.conns {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %#x: %w", addr, err))
		}
		delete(b.conns, addr)
	}
	return errors.Join(errs...)
}
