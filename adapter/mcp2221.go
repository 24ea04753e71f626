package adapter

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/mklimuk/uvindex"
	"github.com/mklimuk/uvindex/snsctx"
)

const VendorID = 0x04D8
const ProductID = 0x00DD

const reportSize = 64

// HID command codes
const (
	cmdStatus      byte = 0x10
	cmdCancel      byte = 0x10
	cmdI2CWrite    byte = 0x90
	cmdI2CRead     byte = 0x91
	cmdI2CReadData byte = 0x40
)

const (
	respBusy          = 0x01
	stateAddrNack     = 0x25
	flagAddrNack      = 0x40
	respReadEngineErr = 0x41
	respInvalidSize   = 127
)

var ErrDeviceNotFound = errors.New("MCP2221 device not found")

var _ uvindex.I2CBus = &MCP2221{}

// MCP2221 is a Microchip USB to I2C bridge driven over raw HID reports.
type MCP2221 struct {
	mx           sync.Mutex
	request      []byte
	response     []byte
	responseWait time.Duration
	logger       *slog.Logger
}

type MCP2221Status struct {
	I2CState               int    `yaml:"i2c_state"`
	AddressNack            bool   `yaml:"address_nack"`
	I2CDataBufferCounter   int    `yaml:"i2c_data_buffer_counter"`
	I2CSpeedDivider        int    `yaml:"i2c_speed_divider"`
	I2CTimeout             int    `yaml:"i2c_timeout"`
	CurrentAddress         string `yaml:"current_address"`
	LastWriteRequestedSize uint16 `yaml:"last_write_requested_size"`
	LastWriteSentSize      uint16 `yaml:"last_write_sent_size"`
	ReadPending            int    `yaml:"read_pending"`
}

func NewMCP2221(logger *slog.Logger) *MCP2221 {
	if logger == nil {
		logger = slog.Default()
	}
	return &MCP2221{
		request:      make([]byte, reportSize),
		response:     make([]byte, reportSize),
		responseWait: 50 * time.Millisecond,
		logger:       logger,
	}
}

// Init checks that exactly one adapter is attached.
func (d *MCP2221) Init() error {
	devs := hid.Enumerate(VendorID, ProductID)
	switch len(devs) {
	case 0:
		return ErrDeviceNotFound
	case 1:
		return nil
	default:
		return fmt.Errorf("ambiguous device identification: %d adapters found", len(devs))
	}
}

func (d *MCP2221) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	encodeWrite(d.request, address, buffer)
	err := d.send(ctx)
	if err != nil {
		return fmt.Errorf("write to %x failed: %w", address, err)
	}
	if d.response[1] == respBusy {
		d.logger.DebugContext(ctx, "adapter busy", "address", address)
		return uvindex.ErrBusBusy
	}
	if len(buffer) > 0 {
		return nil
	}
	// the bridge accepts the command whether or not the target answered
	d.resetBuffers()
	d.request[0] = cmdStatus
	err = d.send(ctx)
	if err != nil {
		return fmt.Errorf("status request after probe of %x failed: %w", address, err)
	}
	return checkAddressAck(address, bufferToStatus(d.response))
}

func (d *MCP2221) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	encodeRead(d.request, address, len(buffer))
	err := d.send(ctx)
	if err != nil {
		return fmt.Errorf("bus read from %x failed: %w", address, err)
	}
	d.resetBuffers()
	d.request[0] = cmdI2CReadData
	err = d.send(ctx)
	if err != nil {
		return fmt.Errorf("error getting read data from adapter: %w", err)
	}
	return decodeReadData(d.response, buffer)
}

func (d *MCP2221) Status(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatus
	err := d.send(ctx)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

// Release cancels the current I2C transfer and frees the bus.
func (d *MCP2221) Release(ctx context.Context) error {
	_, err := d.ReleaseBus(ctx)
	return err
}

func (d *MCP2221) ReleaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatus
	d.request[2] = cmdCancel
	err := d.send(ctx)
	if err != nil {
		return nil, fmt.Errorf("release request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func encodeWrite(req []byte, address byte, data []byte) {
	req[0] = cmdI2CWrite
	binary.LittleEndian.PutUint16(req[1:3], uint16(len(data)))
	req[3] = address << 1
	copy(req[4:], data)
}

func encodeRead(req []byte, address byte, size int) {
	req[0] = cmdI2CRead
	binary.LittleEndian.PutUint16(req[1:3], uint16(size))
	req[3] = address<<1 | 1
}

func decodeReadData(resp []byte, buffer []byte) error {
	if resp[1] == respReadEngineErr {
		return fmt.Errorf("error reading the I2C slave data from the I2C engine")
	}
	if resp[3] == respInvalidSize || int(resp[3]) != len(buffer) {
		return fmt.Errorf("invalid data size byte; expected %d, got %d", len(buffer), resp[3])
	}
	copy(buffer, resp[4:])
	return nil
}

func checkAddressAck(address byte, status *MCP2221Status) error {
	if status.AddressNack {
		return fmt.Errorf("%w: %#x", uvindex.ErrAddressNack, address)
	}
	return nil
}

func bufferToStatus(buffer []byte) *MCP2221Status {
	/*
		8:     internal I2C state machine state
		9-10:  requested I2C transfer length (LE)
		11-12: already transferred number of bytes (LE)
		13:    internal I2C data buffer counter
		14:    current I2C communication speed divider
		15:    current I2C timeout
		16-17: I2C address being used
		20:    bit 6 set when the address was not acknowledged
		25:    read pending
	*/
	return &MCP2221Status{
		I2CState:               int(buffer[8]),
		AddressNack:            buffer[8] == stateAddrNack || buffer[20]&flagAddrNack != 0,
		LastWriteRequestedSize: binary.LittleEndian.Uint16(buffer[9:11]),
		LastWriteSentSize:      binary.LittleEndian.Uint16(buffer[11:13]),
		I2CDataBufferCounter:   int(buffer[13]),
		I2CSpeedDivider:        int(buffer[14]),
		I2CTimeout:             int(buffer[15]),
		CurrentAddress:         hex.EncodeToString(buffer[16:18]),
		ReadPending:            int(buffer[25]),
	}
}

func (d *MCP2221) send(ctx context.Context) error {
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) == 0 {
		return ErrDeviceNotFound
	}
	if len(devs) > 1 {
		return fmt.Errorf("ambiguous device identification")
	}
	dev, err := devs[0].Open()
	if err != nil {
		return fmt.Errorf("error opening device: %w", err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			d.logger.WarnContext(ctx, "could not close adapter", "error", err)
		}
	}()
	snsctx.Dump(ctx, d.logger, "sending message to adapter", d.request)
	n, err := dev.Write(d.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short write: %d", n)
	}
	timer := time.NewTimer(d.responseWait)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}
	n, err = dev.Read(d.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short read: %d", n)
	}
	snsctx.Dump(ctx, d.logger, "read message from adapter", d.response)
	return nil
}

func (d *MCP2221) resetBuffers() {
	clear(d.request)
	clear(d.response)
}
