// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package epc implements the ATA Extended Power Conditions feature set on
// top of SCSI/ATA Translation pass-through.
package epc

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/tyan-boot/wdepc/pkg/drive"
	"github.com/tyan-boot/wdepc/pkg/drive/sgio"
)

// SET FEATURES subcommand selection for the EPC feature set.
const (
	featureEPC = 0x4a

	subRestore       = 0x00
	subGoToCondition = 0x01
	subSetTimer      = 0x02
	subEnableEPC     = 0x04
	subDisableEPC    = 0x05

	lbaSaveBit    = 1 << 4
	lbaEnableBit  = 1 << 5
	lbaDefaultBit = 1 << 6
)

// PassThrough executes a single ATA pass-through exchange.
type PassThrough interface {
	PassThrough(cdb []byte, in, out []byte) (*sgio.Response, error)
}

// Drive is a PassThrough that owns an open device.
type Drive interface {
	PassThrough
	Close() error
}

type identifier interface {
	Identify() (*drive.Identity, error)
	Features() (*drive.Features, error)
}

// Device is an open ATA device supporting EPC. A Device must not be used
// concurrently for state-changing operations.
type Device struct {
	drive Drive
	log   *log.Logger

	dirMu sync.Mutex
	dir   *LogDirectory
}

type DeviceOpt func(d *Device)

// WithLogger logs every exchange to l.
func WithLogger(l *log.Logger) DeviceOpt {
	return func(d *Device) {
		d.log = l
	}
}

// New wraps an already open drive.
func New(d Drive, opts ...DeviceOpt) *Device {
	dev := &Device{
		drive: d,
		log:   log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(dev)
	}
	return dev
}

// Open opens the device at path. Querying only needs drive.ReadOnly, any
// SET FEATURES operation requires drive.ReadWrite. Root privileges are
// required either way.
func Open(path string, mode drive.Mode, opts ...DeviceOpt) (*Device, error) {
	d, err := drive.Open(path, mode)
	if err != nil {
		return nil, err
	}
	return New(d, opts...), nil
}

func (d *Device) Close() error {
	return d.drive.Close()
}

func (d *Device) exchange(cdb []byte, in, out []byte) (*sgio.Response, error) {
	d.log.Printf("cdb: % x", cdb)
	resp, err := d.drive.PassThrough(cdb, in, out)
	if err != nil {
		return nil, err
	}
	d.log.Printf("status: %+v sense: % x", resp.Status, resp.Sense[:resp.Status.SenseLen])
	if err := resp.Status.Err(); err != nil {
		return nil, err
	}
	if resp.Status.DriverStatus&sgio.DRIVER_SENSE != 0 {
		sd, err := sgio.ParseSense(resp.Sense)
		if err != nil {
			return nil, err
		}
		if err := sd.Err(); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// Identify returns the identity of the underlying drive.
func (d *Device) Identify() (*drive.Identity, error) {
	id, ok := d.drive.(identifier)
	if !ok {
		return nil, drive.ErrNotSupported
	}
	return id.Identify()
}

// Features returns the EPC and APM feature set state reported by IDENTIFY
// DEVICE.
func (d *Device) Features() (*drive.Features, error) {
	id, ok := d.drive.(identifier)
	if !ok {
		return nil, drive.ErrNotSupported
	}
	return id.Features()
}

// QueryMode returns the current power mode of the device.
func (d *Device) QueryMode() (PowerMode, error) {
	cdb := sgio.ATA12(sgio.TaskFile{
		Command:  sgio.ATA_CHECK_POWER_MODE,
		Protocol: sgio.ProtocolNone,
	})
	resp, err := d.exchange(cdb[:], nil, nil)
	if err != nil {
		return PowerModeUnknown, fmt.Errorf("CHECK POWER MODE: %w", err)
	}
	sd, err := sgio.ParseSense(resp.Sense)
	if err == nil {
		err = sd.Err()
	}
	if err != nil {
		return PowerModeUnknown, fmt.Errorf("CHECK POWER MODE: %w", err)
	}
	return PowerModeFromSectorCount(sd.SectorCount), nil
}

// QuerySetting reads and decodes the Power Conditions log.
func (d *Device) QuerySetting() (*Setting, error) {
	raw, err := d.ReadLogPage(LogAddrPowerConditions)
	if err != nil {
		return nil, err
	}
	return ParseSetting(raw)
}

func (d *Device) setFeatures(c Condition, lbaLow uint8, timer Timer) error {
	cdb := sgio.ATA12(sgio.TaskFile{
		Command:  sgio.ATA_SET_FEATURES,
		Protocol: sgio.ProtocolNone,
		Feature:  featureEPC,
		Count:    uint16(c),
		LBALow:   uint16(lbaLow),
		// Timer occupies LBA (23:8)
		LBAMid:  uint16(timer & 0xff),
		LBAHigh: uint16(timer >> 8),
	})
	if _, err := d.exchange(cdb[:], nil, nil); err != nil {
		return fmt.Errorf("SET FEATURES EPC subcommand %#x: %w", lbaLow&0xf, err)
	}
	return nil
}

// GotoCondition moves the device into power condition c immediately.
func (d *Device) GotoCondition(c Condition) error {
	return d.setFeatures(c, subGoToCondition, 0)
}

// SetTimer sets the current timer of condition c and enables or disables
// the condition. With save set the new values also become the saved ones.
func (d *Device) SetTimer(c Condition, timer Timer, enable, save bool) error {
	lba := uint8(subSetTimer)
	if enable {
		lba |= lbaEnableBit
	}
	if save {
		lba |= lbaSaveBit
	}
	return d.setFeatures(c, lba, timer)
}

// SetState enables or disables condition c. It is SetTimer with a zero
// timer.
func (d *Device) SetState(c Condition, enable, save bool) error {
	return d.SetTimer(c, 0, enable, save)
}

// EnableEPC enables the EPC feature set. This disables APM.
func (d *Device) EnableEPC() error {
	return d.setFeatures(0, subEnableEPC, 0)
}

// DisableEPC disables the EPC feature set. APM is not re-enabled.
func (d *Device) DisableEPC() error {
	return d.setFeatures(0, subDisableEPC, 0)
}

// Restore restores the current settings of condition c from the default
// values (def) or the saved values, optionally saving the result.
func (d *Device) Restore(c Condition, def, save bool) error {
	lba := uint8(subRestore)
	if def {
		lba |= lbaDefaultBit
	}
	if save {
		lba |= lbaSaveBit
	}
	return d.setFeatures(c, lba, 0)
}
