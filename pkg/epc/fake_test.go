package epc

import (
	"github.com/tyan-boot/wdepc/pkg/drive/sgio"
)

type exchange struct {
	cdb []byte
	in  int
	out int
}

// fakeDrive records every CDB and answers with canned data.
type fakeDrive struct {
	exchanges []exchange
	sense     sgio.Sense
	status    sgio.Status
	err       error
	// logs maps a log address to its content
	logs   map[uint8][]byte
	closed bool
}

func (f *fakeDrive) PassThrough(cdb []byte, in, out []byte) (*sgio.Response, error) {
	c := make([]byte, len(cdb))
	copy(c, cdb)
	f.exchanges = append(f.exchanges, exchange{cdb: c, in: len(in), out: len(out)})
	if f.err != nil {
		return nil, f.err
	}
	if len(cdb) == 16 && sgio.Command(cdb[14]) == sgio.ATA_READ_LOG_DMA_EXT {
		copy(out, f.logs[cdb[8]])
	}
	return &sgio.Response{Status: f.status, Sense: f.sense}, nil
}

func (f *fakeDrive) Close() error {
	f.closed = true
	return nil
}

// directory returns a General Purpose Log Directory listing pages per
// address.
func directory(pages map[uint8]uint16) []byte {
	var dir LogDirectory
	dir[0] = 0x01
	for addr, n := range pages {
		dir[int(addr)*2] = byte(n)
		dir[int(addr)*2+1] = byte(n >> 8)
	}
	return dir[:]
}
