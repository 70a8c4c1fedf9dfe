// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package epc

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tyan-boot/wdepc/pkg/drive/sgio"
)

const (
	LogAddrDirectory       = 0x00
	LogAddrPowerConditions = 0x08

	LogPageSize = 512
)

var (
	ErrLogNotSupported = errors.New("log address not supported by device")
)

// LogDirectory is the General Purpose Log Directory (log address 00h).
type LogDirectory [LogPageSize]byte

// Pages returns the number of 512-byte pages of log address addr.
func (l *LogDirectory) Pages(addr uint8) uint16 {
	return binary.LittleEndian.Uint16(l[int(addr)*2:])
}

// Version is the General Purpose Logging version, stored in the slot of
// log address 0.
func (l *LogDirectory) Version() uint16 {
	return l.Pages(LogAddrDirectory)
}

func (d *Device) readLog(addr uint8, pages uint16, buf []byte) error {
	cdb := sgio.ATA16(sgio.TaskFile{
		Command:  sgio.ATA_READ_LOG_DMA_EXT,
		Protocol: sgio.ProtocolDMAIn,
		Count:    pages,
		LBALow:   uint16(addr),
	})
	if _, err := d.exchange(cdb[:], nil, buf); err != nil {
		return fmt.Errorf("READ LOG DMA EXT %#02x: %w", addr, err)
	}
	return nil
}

// GeneralLog returns the General Purpose Log Directory. The directory is
// read from the device once and cached for the lifetime of d.
func (d *Device) GeneralLog() (LogDirectory, error) {
	d.dirMu.Lock()
	defer d.dirMu.Unlock()

	if d.dir != nil {
		return *d.dir, nil
	}
	dir := &LogDirectory{}
	if err := d.readLog(LogAddrDirectory, 1, dir[:]); err != nil {
		return LogDirectory{}, err
	}
	d.dir = dir
	return *dir, nil
}

// ReadLogPage reads every page of log address addr, sized by the General
// Purpose Log Directory.
func (d *Device) ReadLogPage(addr uint8) ([]byte, error) {
	dir, err := d.GeneralLog()
	if err != nil {
		return nil, err
	}
	pages := dir.Pages(addr)
	if pages == 0 {
		return nil, fmt.Errorf("%w: %#02x", ErrLogNotSupported, addr)
	}
	buf := make([]byte, LogPageSize*int(pages))
	if err := d.readLog(addr, pages, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
