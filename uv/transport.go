package uv

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mklimuk/uvindex"
	"github.com/mklimuk/uvindex/snsctx"
)

// transport is the register bus a Sensor talks through. The implementation
// is chosen by the constructor and never changes afterwards.
type transport interface {
	probe(ctx context.Context) error
	read(ctx context.Context, register uint16, buffer []byte) (int, error)
}

type i2cTransport struct {
	bus    uvindex.I2CBus
	addr   byte
	logger *slog.Logger
}

// probe issues an empty write; an acknowledged transaction means the device is present.
func (t *i2cTransport) probe(ctx context.Context) error {
	err := t.bus.WriteToAddr(ctx, t.addr, []byte{})
	if err != nil {
		return fmt.Errorf("%w at %#x: %w", ErrNotDetected, t.addr, err)
	}
	return nil
}

func (t *i2cTransport) read(ctx context.Context, register uint16, buffer []byte) (int, error) {
	err := t.bus.WriteToAddr(ctx, t.addr, []byte{byte(register)})
	if err != nil {
		return 0, fmt.Errorf("could not write register address %#x: %w", register, err)
	}
	err = t.bus.Release(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not release bus: %w", err)
	}
	err = t.bus.ReadFromAddr(ctx, t.addr, buffer)
	if err != nil {
		return 0, fmt.Errorf("could not read register %#x: %w", register, err)
	}
	snsctx.Dump(ctx, t.logger, "i2c register read", buffer)
	// the device sends each 16-bit word low byte first
	swapPairs(buffer)
	return len(buffer), nil
}

type modbusTransport struct {
	client  uvindex.InputRegisterReader
	unit    byte
	timeout time.Duration
	logger  *slog.Logger
}

func (t *modbusTransport) probe(ctx context.Context) error {
	if ts, ok := t.client.(uvindex.TimeoutSetter); ok {
		ts.SetTimeout(t.timeout)
	}
	buf := make([]byte, 2)
	_, err := t.read(ctx, regPID, buf)
	if err != nil {
		return fmt.Errorf("could not read product id: %w", err)
	}
	pid := uint16(buf[0])<<8 | uint16(buf[1])
	if pid != ProductID {
		return fmt.Errorf("%w: %#04x", ErrUnexpectedPID, pid)
	}
	return nil
}

func (t *modbusTransport) read(ctx context.Context, register uint16, buffer []byte) (int, error) {
	n, err := t.client.ReadInputRegisters(ctx, t.unit, register, buffer)
	if err != nil {
		return n, fmt.Errorf("could not read input register %#x: %w", register, err)
	}
	snsctx.Dump(ctx, t.logger, "modbus input register read", buffer[:n])
	return n, nil
}

// swapPairs exchanges every adjacent byte pair in place (0<->1, 2<->3, ...).
// A trailing odd byte is left untouched.
func swapPairs(buf []byte) {
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = buf[i+1], buf[i]
	}
}
