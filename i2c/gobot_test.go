package i2c

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gi2c "gobot.io/x/gobot/v2/drivers/i2c"
)

// fakeConnection implements the subset of gi2c.Connection used by GobotBus.
type fakeConnection struct {
	gi2c.Connection
	data     []byte
	written  [][]byte
	probeErr error
	closed   bool
}

func (f *fakeConnection) Read(b []byte) (int, error) {
	return copy(b, f.data), nil
}

func (f *fakeConnection) ReadByte() (byte, error) {
	if f.probeErr != nil {
		return 0, f.probeErr
	}
	return 0, nil
}

func (f *fakeConnection) WriteBytes(b []byte) error {
	f.written = append(f.written, append([]byte(nil), b...))
	return nil
}

func (f *fakeConnection) Close() error {
	f.closed = true
	return nil
}

type fakeConnector struct {
	conns  map[int]*fakeConnection
	opened []int
	buses  []int
}

func (f *fakeConnector) GetI2cConnection(address int, busNr int) (gi2c.Connection, error) {
	f.opened = append(f.opened, address)
	f.buses = append(f.buses, busNr)
	c, ok := f.conns[address]
	if !ok {
		return nil, errors.New("no device")
	}
	return c, nil
}

func (f *fakeConnector) DefaultI2cBus() int {
	return 0
}

func TestGobotBus_ReadWrite(t *testing.T) {
	dev := &fakeConnection{data: []byte{0xBC, 0x02}}
	connector := &fakeConnector{conns: map[int]*fakeConnection{0x23: dev}}
	bus := NewGobotBus(connector, 2)
	ctx := context.Background()

	require.NoError(t, bus.WriteToAddr(ctx, 0x23, []byte{0x06}))
	require.NoError(t, bus.Release(ctx))
	buf := make([]byte, 2)
	require.NoError(t, bus.ReadFromAddr(ctx, 0x23, buf))

	assert.Equal(t, []byte{0xBC, 0x02}, buf)
	assert.Equal(t, [][]byte{{0x06}}, dev.written)
	// connection is opened once and reused
	assert.Equal(t, []int{0x23}, connector.opened)
	assert.Equal(t, []int{2}, connector.buses)
}

func TestGobotBus_ShortRead(t *testing.T) {
	dev := &fakeConnection{data: []byte{0x01}}
	bus := NewGobotBus(&fakeConnector{conns: map[int]*fakeConnection{0x23: dev}}, 0)
	err := bus.ReadFromAddr(context.Background(), 0x23, make([]byte, 2))
	assert.ErrorContains(t, err, "short read")
}

func TestGobotBus_EmptyWriteProbes(t *testing.T) {
	present := &fakeConnection{}
	absent := &fakeConnection{probeErr: errors.New("remote I/O error")}
	connector := &fakeConnector{conns: map[int]*fakeConnection{0x23: present, 0x24: absent}}
	bus := NewGobotBus(connector, 0)
	ctx := context.Background()

	assert.NoError(t, bus.WriteToAddr(ctx, 0x23, []byte{}))
	assert.Error(t, bus.WriteToAddr(ctx, 0x24, []byte{}))
	assert.Error(t, bus.WriteToAddr(ctx, 0x25, []byte{}))
	assert.Empty(t, present.written)

	found := Scan(ctx, bus, 0x22, 0x25)
	assert.Equal(t, []byte{0x23}, found)
}

func TestGobotBus_Close(t *testing.T) {
	a := &fakeConnection{}
	b := &fakeConnection{}
	connector := &fakeConnector{conns: map[int]*fakeConnection{0x23: a, 0x38: b}}
	bus := NewGobotBus(connector, 0)
	ctx := context.Background()
	require.NoError(t, bus.WriteToAddr(ctx, 0x23, []byte{0x00}))
	require.NoError(t, bus.WriteToAddr(ctx, 0x38, []byte{0x00}))

	require.NoError(t, bus.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)

	// reconnects after close
	require.NoError(t, bus.WriteToAddr(ctx, 0x23, []byte{0x00}))
	assert.Equal(t, []int{0x23, 0x38, 0x23}, connector.opened)
}
