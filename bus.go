package uvindex

import (
	"context"
	"fmt"
	"time"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

// ErrAddressNack is returned when no device acknowledged the address.
var ErrAddressNack = fmt.Errorf("address not acknowledged")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// InputRegisterReader reads Modbus input registers (function code 0x04) from a unit.
// The register contents are copied big-endian into buffer; the number of bytes
// copied is returned.
type InputRegisterReader interface {
	ReadInputRegisters(ctx context.Context, unit byte, register uint16, buffer []byte) (int, error)
}

// TimeoutSetter is implemented by transports with a configurable response timeout.
type TimeoutSetter interface {
	SetTimeout(timeout time.Duration)
}
