package epc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneralLogCached(t *testing.T) {
	f := &fakeDrive{logs: map[uint8][]byte{
		LogAddrDirectory: directory(map[uint8]uint16{LogAddrPowerConditions: 2}),
	}}
	d := New(f)

	first, err := d.GeneralLog()
	require.NoError(t, err)
	second, err := d.GeneralLog()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, f.exchanges, 1)
	assert.Equal(t, uint16(2), first.Pages(LogAddrPowerConditions))
	assert.Equal(t, uint16(1), first.Version())

	// READ LOG DMA EXT of log address 0, one page
	assert.Equal(t, []byte{0x85, 0x15, 0x0e, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0xa0, 0x47, 0}, f.exchanges[0].cdb)
	assert.Equal(t, LogPageSize, f.exchanges[0].out)
}

func TestGeneralLogNotCachedOnError(t *testing.T) {
	f := &fakeDrive{err: errors.New("boom")}
	d := New(f)

	_, err := d.GeneralLog()
	require.Error(t, err)

	f.err = nil
	f.logs = map[uint8][]byte{LogAddrDirectory: directory(nil)}
	_, err = d.GeneralLog()
	require.NoError(t, err)
	assert.Len(t, f.exchanges, 2)
}

func TestReadLogPage(t *testing.T) {
	f := &fakeDrive{logs: map[uint8][]byte{
		LogAddrDirectory: directory(map[uint8]uint16{LogAddrPowerConditions: 2}),
	}}
	d := New(f)

	page, err := d.ReadLogPage(LogAddrPowerConditions)
	require.NoError(t, err)
	assert.Len(t, page, 1024)

	require.Len(t, f.exchanges, 2)
	assert.Equal(t, 1024, f.exchanges[1].out)
	assert.Equal(t, 0, f.exchanges[1].in)
	// count 2, log address 08h
	assert.Equal(t, []byte{0x85, 0x15, 0x0e, 0, 0, 0, 2, 0, 8, 0, 0, 0, 0, 0xa0, 0x47, 0}, f.exchanges[1].cdb)

	// The directory is not read again
	_, err = d.ReadLogPage(LogAddrPowerConditions)
	require.NoError(t, err)
	assert.Len(t, f.exchanges, 3)
}

func TestReadLogPageNotSupported(t *testing.T) {
	f := &fakeDrive{logs: map[uint8][]byte{LogAddrDirectory: directory(nil)}}
	d := New(f)

	_, err := d.ReadLogPage(LogAddrPowerConditions)
	assert.ErrorIs(t, err, ErrLogNotSupported)
	assert.Len(t, f.exchanges, 1)
}
