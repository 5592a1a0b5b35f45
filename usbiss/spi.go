package usbiss

import (
	"context"
	"fmt"

	"github.com/moffa90/go-usbiss/protocol"
	"tinygo.org/x/drivers"
)

// SPI exposes the adapter as a tinygo drivers.SPI.
type SPI struct {
	a *Adapter
}

var _ drivers.SPI = (*SPI)(nil)

// SPI returns the adapter's SPI bus. The adapter must be in SPI mode.
func (a *Adapter) SPI() *SPI {
	return &SPI{a: a}
}

// Tx clocks out w and stores the bytes clocked in to r. Either may be empty;
// an empty w clocks out zeros. When both are given they must have the same
// length. Transfers longer than one frame are split, and chip select is
// released between frames.
func (s *SPI) Tx(w, r []byte) error {
	n := len(w)
	if n == 0 {
		n = len(r)
	} else if len(r) > 0 && len(r) != n {
		return fmt.Errorf("spi tx: write %d bytes but read buffer holds %d", len(w), len(r))
	}
	if n == 0 {
		return nil
	}

	ctx := context.Background()
	out := make([]byte, protocol.MaxSPIPayload)
	for off := 0; off < n; off += protocol.MaxSPIPayload {
		end := off + protocol.MaxSPIPayload
		if end > n {
			end = n
		}

		chunk := out[:end-off]
		if len(w) > 0 {
			copy(chunk, w[off:end])
		} else {
			for i := range chunk {
				chunk[i] = 0
			}
		}

		in, err := s.a.SPITransfer(ctx, chunk)
		if err != nil {
			return err
		}
		if len(r) > 0 {
			copy(r[off:end], in)
		}
	}
	return nil
}

// Transfer clocks out one byte and returns the byte clocked in.
func (s *SPI) Transfer(b byte) (byte, error) {
	in, err := s.a.SPITransfer(context.Background(), []byte{b})
	if err != nil {
		return 0, err
	}
	return in[0], nil
}
