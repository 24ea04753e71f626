package i2c

import (
	"context"

	"github.com/mklimuk/uvindex"
)

// Range of regular 7-bit addresses; the rest are reserved by the I2C specification.
const (
	FirstAddress byte = 0x08
	LastAddress  byte = 0x77
)

// Scan probes every address in [from, to] with an empty write and returns
// the addresses that acknowledged. It stops early when ctx is done.
func Scan(ctx context.Context, bus uvindex.AddressableWriter, from, to byte) []byte {
	var found []byte
	for addr := int(from); addr <= int(to); addr++ {
		if ctx.Err() != nil {
			break
		}
		if err := bus.WriteToAddr(ctx, byte(addr), []byte{}); err == nil {
			found = append(found, byte(addr))
		}
	}
	return found
}
