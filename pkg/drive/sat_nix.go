// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"runtime"

	"github.com/tyan-boot/wdepc/pkg/drive/sgio"
)

// FdIntf is an open device node. *os.File satisfies it.
type FdIntf interface {
	Fd() uintptr
	Close() error
}

// ATADrive is an ATA device addressed through SCSI/ATA Translation.
type ATADrive struct {
	fd FdIntf
}

// PassThrough executes one ATA pass-through CDB. At most one of in and out
// may be set.
func (d *ATADrive) PassThrough(cdb []byte, in, out []byte) (*sgio.Response, error) {
	resp, err := sgio.Execute(d.fd.Fd(), cdb, in, out)
	runtime.KeepAlive(d.fd)
	return resp, err
}

func (d *ATADrive) Identify() (*Identity, error) {
	inq, err := sgio.SCSIInquiry(d.fd.Fd())
	runtime.KeepAlive(d.fd)
	if err != nil {
		return nil, err
	}
	if !inq.SAT() {
		return nil, ErrDeviceNotSupported
	}

	id, err := sgio.ATAIdentify(d.fd.Fd())
	runtime.KeepAlive(d.fd)
	if err != nil {
		return nil, err
	}

	return &Identity{
		// SCSI ATA Translation (SAT)
		Protocol:     "SATA",
		Model:        id.ModelNumber(),
		Firmware:     id.FirmwareRevision(),
		SerialNumber: id.SerialNumber(),
	}, nil
}

func (d *ATADrive) Features() (*Features, error) {
	id, err := sgio.ATAIdentify(d.fd.Fd())
	runtime.KeepAlive(d.fd)
	if err != nil {
		return nil, err
	}
	return &Features{
		EPCSupported: id.EPCSupported(),
		EPCEnabled:   id.EPCEnabled(),
		APMSupported: id.APMSupported(),
		APMEnabled:   id.APMEnabled(),
	}, nil
}

func (d *ATADrive) Close() error {
	return d.fd.Close()
}

func ATA(fd FdIntf) *ATADrive {
	// Save the full object reference to avoid the underlying File-like object
	// to be GC'd
	return &ATADrive{fd: fd}
}

func isSCSI(fd FdIntf) bool {
	_, err := sgio.SCSIInquiry(fd.Fd())
	return err == nil
}
