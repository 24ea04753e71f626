package uv

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mklimuk/uvindex"
)

// DefaultAddress is the 7-bit I2C address of the sensor. The Modbus unit
// address of the serial variant is the same value.
const DefaultAddress = 0x23

// ProductID is the value of the PID register.
const ProductID uint16 = 0x427C

// DefaultResponseTimeout applies to the serial transport only.
const DefaultResponseTimeout = 200 * time.Millisecond

const (
	regPID   uint16 = 0x00
	regRaw   uint16 = 0x06
	regIndex uint16 = 0x07
	regRisk  uint16 = 0x08
)

var (
	ErrNilBuffer     = errors.New("uv: destination buffer is empty")
	ErrNotDetected   = errors.New("uv: device did not acknowledge")
	ErrUnexpectedPID = errors.New("uv: unexpected product id")
)

// IndexSource selects how UV index and risk level are obtained.
type IndexSource int

const (
	// IndexComputed derives index and risk from the raw register using the
	// threshold tables in this package.
	IndexComputed IndexSource = iota
	// IndexRegister reads index and risk from the device registers 0x07 and 0x08.
	// Firmware revisions disagree with IndexComputed for the same raw value.
	IndexRegister
)

func (s IndexSource) String() string {
	switch s {
	case IndexComputed:
		return "computed"
	case IndexRegister:
		return "register"
	default:
		return fmt.Sprintf("IndexSource(%d)", int(s))
	}
}

// ParseIndexSource is the inverse of IndexSource.String.
func ParseIndexSource(s string) (IndexSource, error) {
	switch s {
	case "", "computed":
		return IndexComputed, nil
	case "register":
		return IndexRegister, nil
	default:
		return 0, fmt.Errorf("unknown index source %q", s)
	}
}

// Reading is the result of a single sampling cycle.
type Reading struct {
	Raw   uint16    `yaml:"raw"`
	Index uint16    `yaml:"uv_index"`
	Risk  uint16    `yaml:"risk_level"`
	At    time.Time `yaml:"at"`
}

func (r Reading) RiskName() string {
	return RiskName(r.Risk)
}

// Reader is implemented by anything that can produce UV readings.
type Reader interface {
	Begin(ctx context.Context) error
	ReadUVOriginalData(ctx context.Context) (uint16, error)
	ReadUVIndex(ctx context.Context) (uint16, error)
	ReadRiskLevel(ctx context.Context) (uint16, error)
	Read(ctx context.Context) (Reading, error)
}

var _ Reader = &Sensor{}

type Opts struct {
	Address         byte
	Logger          *slog.Logger
	Source          IndexSource
	ResponseTimeout time.Duration
}

type Opt func(*Opts)

func WithAddress(addr byte) Opt {
	return func(o *Opts) {
		o.Address = addr
	}
}

func WithLogger(logger *slog.Logger) Opt {
	return func(o *Opts) {
		o.Logger = logger
	}
}

func WithIndexSource(source IndexSource) Opt {
	return func(o *Opts) {
		o.Source = source
	}
}

// WithResponseTimeout sets the response timeout configured on the serial
// transport during Begin. It has no effect on I2C.
func WithResponseTimeout(timeout time.Duration) Opt {
	return func(o *Opts) {
		o.ResponseTimeout = timeout
	}
}

// Sensor represents the DFRobot 240370 UV index sensor.
// Typical usage:
//
//	s := NewI2C(bus)
//	if err := s.Begin(ctx); err != nil { ... }
//	idx, err := s.ReadUVIndex(ctx)
//
// A Sensor is not safe for concurrent use.
type Sensor struct {
	transport transport
	source    IndexSource
	logger    *slog.Logger
}

func buildOpts(opts []Opt) Opts {
	config := Opts{
		Address:         DefaultAddress,
		Source:          IndexComputed,
		ResponseTimeout: DefaultResponseTimeout,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return config
}

// NewI2C creates a sensor reading registers directly over an I2C bus.
func NewI2C(bus uvindex.I2CBus, opts ...Opt) *Sensor {
	config := buildOpts(opts)
	return &Sensor{
		transport: &i2cTransport{bus: bus, addr: config.Address, logger: config.Logger},
		source:    config.Source,
		logger:    config.Logger,
	}
}

// NewModbus creates a sensor reading Modbus input registers over a serial line.
func NewModbus(client uvindex.InputRegisterReader, opts ...Opt) *Sensor {
	config := buildOpts(opts)
	return &Sensor{
		transport: &modbusTransport{
			client:  client,
			unit:    config.Address,
			timeout: config.ResponseTimeout,
			logger:  config.Logger,
		},
		source: config.Source,
		logger: config.Logger,
	}
}

func (s *Sensor) IndexSource() IndexSource {
	return s.source
}

// Begin checks that the device is present. Over I2C the device has to
// acknowledge its address; over Modbus the PID register has to hold ProductID.
// It must be called before any read and may be called again at any time.
func (s *Sensor) Begin(ctx context.Context) error {
	err := s.transport.probe(ctx)
	if err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "uv sensor detected", "source", s.source)
	return nil
}

// ReadUVOriginalData returns the raw UV register value.
func (s *Sensor) ReadUVOriginalData(ctx context.Context) (uint16, error) {
	return s.readWord(ctx, regRaw)
}

// ReadUVIndex returns the UV index (0-11).
func (s *Sensor) ReadUVIndex(ctx context.Context) (uint16, error) {
	if s.source == IndexRegister {
		return s.readWord(ctx, regIndex)
	}
	raw, err := s.ReadUVOriginalData(ctx)
	if err != nil {
		return 0, err
	}
	return UVIndex(raw), nil
}

// ReadRiskLevel returns the risk level (0-4).
func (s *Sensor) ReadRiskLevel(ctx context.Context) (uint16, error) {
	if s.source == IndexRegister {
		return s.readWord(ctx, regRisk)
	}
	index, err := s.ReadUVIndex(ctx)
	if err != nil {
		return 0, err
	}
	return RiskLevel(index), nil
}

// Read performs a complete sampling cycle. With IndexComputed the index and
// risk are derived from a single raw read so all three values are consistent.
func (s *Sensor) Read(ctx context.Context) (Reading, error) {
	raw, err := s.ReadUVOriginalData(ctx)
	if err != nil {
		return Reading{}, err
	}
	reading := Reading{Raw: raw, At: time.Now()}
	if s.source == IndexComputed {
		reading.Index = UVIndex(raw)
		reading.Risk = RiskLevel(reading.Index)
		return reading, nil
	}
	reading.Index, err = s.readWord(ctx, regIndex)
	if err != nil {
		return Reading{}, err
	}
	reading.Risk, err = s.readWord(ctx, regRisk)
	if err != nil {
		return Reading{}, err
	}
	return reading, nil
}

func (s *Sensor) readWord(ctx context.Context, register uint16) (uint16, error) {
	buf := make([]byte, 2)
	n, err := s.readRegister(ctx, register, buf)
	if err != nil {
		return 0, err
	}
	if n < len(buf) {
		return 0, fmt.Errorf("short read from register %#x: %d bytes", register, n)
	}
	return binary.BigEndian.Uint16(buf), nil
}

// readRegister fills buffer with the contents of the register starting at
// register and returns the number of bytes read.
func (s *Sensor) readRegister(ctx context.Context, register uint16, buffer []byte) (int, error) {
	if len(buffer) == 0 {
		s.logger.ErrorContext(ctx, "register read into empty buffer", "register", register)
		return 0, ErrNilBuffer
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.transport.read(ctx, register, buffer)
}
