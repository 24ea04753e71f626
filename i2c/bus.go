package i2c

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/mklimuk/uvindex"
)

var _ uvindex.I2CBus = &GenericBus{}

var initOnce = sync.OnceValue(initHost)

func initHost() error {
	state, err := host.Init()
	if err != nil {
		return fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("periph driver loaded", "driver", driver.String())
	}
	return nil
}

// GenericBus is an I2C bus exposed by the host (e.g. /dev/i2c-1 on Linux SBCs).
type GenericBus struct {
	bus i2c.BusCloser
}

func NewGenericBus(dev string) (*GenericBus, error) {
	if err := initOnce(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus %q: %w", dev, err)
	}
	return &GenericBus{
		bus: bus,
	}, nil
}

// ListBuses returns the names of I2C buses registered on the host.
func ListBuses() ([]string, error) {
	if err := initOnce(); err != nil {
		return nil, err
	}
	refs := i2creg.All()
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	return names, nil
}

// SetSpeed changes the bus clock.
func (b *GenericBus) SetSpeed(f physic.Frequency) error {
	err := b.bus.SetSpeed(f)
	if err != nil {
		return fmt.Errorf("could not set bus speed to %s: %w", f, err)
	}
	return nil
}

func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

// WriteToAddr writes buffer to the device. Host drivers skip empty transactions
// without touching the bus, so an empty buffer probes the address with a single byte read.
func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if len(buffer) == 0 {
		err := b.bus.Tx(uint16(address), nil, make([]byte, 1))
		if err != nil {
			return fmt.Errorf("no response from %#x: %w", address, err)
		}
		return nil
	}
	err := b.bus.Tx(uint16(address), buffer, nil)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

// Release is a no-op; every Tx ends with a stop condition.
func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}
