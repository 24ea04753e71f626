package modbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mb "github.com/goburrow/modbus"

	"github.com/mklimuk/uvindex"
)

// Serial line parameters are fixed by the device.
const (
	BaudRate = 9600
	DataBits = 8
	Parity   = "N"
	StopBits = 1
)

const DefaultTimeout = 200 * time.Millisecond

var _ uvindex.InputRegisterReader = &RTUClient{}
var _ uvindex.TimeoutSetter = &RTUClient{}

type Opts struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

type Opt func(*Opts)

func WithTimeout(timeout time.Duration) Opt {
	return func(o *Opts) {
		o.Timeout = timeout
	}
}

// WithLogger routes framing diagnostics of the underlying handler to logger at debug level.
func WithLogger(logger *slog.Logger) Opt {
	return func(o *Opts) {
		o.Logger = logger
	}
}

// RTUClient reads input registers over a Modbus-RTU serial line.
// Requests are serialised because the unit id is set on the shared handler per call.
type RTUClient struct {
	mx      sync.Mutex
	handler *mb.RTUClientHandler
	client  mb.Client
	logger  *slog.Logger
}

func NewRTUClient(port string, opts ...Opt) *RTUClient {
	config := Opts{Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	h := mb.NewRTUClientHandler(port)
	h.BaudRate = BaudRate
	h.DataBits = DataBits
	h.Parity = Parity
	h.StopBits = StopBits
	h.Timeout = config.Timeout
	h.Logger = slog.NewLogLogger(config.Logger.Handler(), slog.LevelDebug)
	return newRTUClient(h, mb.NewClient(h), config.Logger)
}

func newRTUClient(h *mb.RTUClientHandler, client mb.Client, logger *slog.Logger) *RTUClient {
	return &RTUClient{handler: h, client: client, logger: logger}
}

func (c *RTUClient) Connect(ctx context.Context) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	err := c.handler.Connect()
	if err != nil {
		return fmt.Errorf("could not open serial port %s: %w", c.handler.Address, err)
	}
	c.logger.DebugContext(ctx, "modbus rtu connected", "port", c.handler.Address, "baud", c.handler.BaudRate)
	return nil
}

func (c *RTUClient) Close() error {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.handler.Close()
}

// SetTimeout changes the response timeout for subsequent requests.
func (c *RTUClient) SetTimeout(timeout time.Duration) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.handler.Timeout = timeout
}

// ReadInputRegisters reads enough registers starting at register to fill buffer
// and returns the number of bytes copied.
func (c *RTUClient) ReadInputRegisters(ctx context.Context, unit byte, register uint16, buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, errors.New("modbus: empty buffer")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mx.Lock()
	defer c.mx.Unlock()
	c.handler.SlaveId = unit
	quantity := uint16((len(buffer) + 1) / 2)
	results, err := c.client.ReadInputRegisters(register, quantity)
	if err != nil {
		return 0, fmt.Errorf("modbus: read %d input registers at %#x from unit %#x: %w", quantity, register, unit, err)
	}
	return copy(buffer, results), nil
}
