// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Copyright 2021 Christian Svensson. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// SCSI generic IO functions.

package sgio

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/dswarbrick/smart/ioctl"
)

type CDBDirection int32

const (
	CDBNone       CDBDirection = -1
	CDBToDevice   CDBDirection = -2
	CDBFromDevice CDBDirection = -3

	SG_INFO_OK_MASK = 0x1
	SG_INFO_OK      = 0x0

	SG_IO = 0x2285

	// Timeout in milliseconds
	DEFAULT_TIMEOUT = 60000

	SENSE_LEN = 32

	DRIVER_SENSE = 0x8
)

var (
	// ErrInvalidDirection is returned when a single exchange is given both
	// a buffer to send and a buffer to receive into.
	ErrInvalidDirection = errors.New("only one transfer direction allowed per exchange")
)

// SCSI CDB types
type (
	CDB6  [6]byte
	CDB12 [12]byte
	CDB16 [16]byte
)

// SCSI generic ioctl header, defined as sg_io_hdr_t in <scsi/sg.h>
type sgIoHdr struct {
	interface_id    int32        // 'S' for SCSI generic (required)
	dxfer_direction CDBDirection // data transfer direction
	cmd_len         uint8        // SCSI command length (<= 16 bytes)
	mx_sb_len       uint8        // max length to write to sbp
	iovec_count     uint16       //nolint:structcheck,unused // 0 implies no scatter gather
	dxfer_len       uint32       // byte count of data transfer
	dxferp          uintptr      // points to data transfer memory or scatter gather list
	cmdp            uintptr      // points to command to perform
	sbp             uintptr      // points to sense_buffer memory
	timeout         uint32       // MAX_UINT -> no timeout (unit: millisec)
	flags           uint32       //nolint:structcheck,unused // 0 -> default, see SG_FLAG...
	pack_id         int32        //nolint:structcheck,unused // unused internally (normally)
	usr_ptr         uintptr      //nolint:structcheck,unused // unused internally
	status          uint8        // SCSI status
	masked_status   uint8        // shifted, masked scsi status
	msg_status      uint8        //nolint:structcheck,unused // messaging level data (optional)
	sb_len_wr       uint8        // byte count actually written to sbp
	host_status     uint16       // errors from host adapter
	driver_status   uint16       // errors from software driver
	resid           int32        // dxfer_len - actual_transferred
	duration        uint32       // time taken by cmd (unit: millisec)
	info            uint32       // auxiliary information
}

// Sense is the fixed-size sense buffer returned with every exchange.
type Sense [SENSE_LEN]byte

// Status is the completion state reported by the SG driver for one exchange.
type Status struct {
	SCSIStatus   uint8
	MaskedStatus uint8
	HostStatus   uint16
	DriverStatus uint16
	Info         uint32
	SenseLen     uint8 // bytes actually written to the sense buffer
	Resid        int32
	Duration     uint32 // milliseconds
}

// OK reports whether the driver flagged the exchange as completed without
// any error or check condition.
func (s Status) OK() bool {
	return s.Info&SG_INFO_OK_MASK == SG_INFO_OK
}

// Err returns a *StatusError when the host adapter or the SG driver failed
// the exchange. A device check condition with sense data attached is not an
// error at this level: ATA pass-through uses it to return output registers.
func (s Status) Err() error {
	if s.OK() {
		return nil
	}
	if s.HostStatus == 0 && s.DriverStatus&^DRIVER_SENSE == 0 {
		return nil
	}
	return &StatusError{Status: s}
}

// StatusError carries the raw completion fields of a failed exchange.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("SCSI status: %#02x, host status: %#02x, driver status: %#02x",
		e.Status.SCSIStatus, e.Status.HostStatus, e.Status.DriverStatus)
}

// TransportError is returned when the SG_IO ioctl itself fails.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("SG_IO ioctl failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Response is the raw result of one exchange. Interpreting the sense buffer
// is left to ParseSense.
type Response struct {
	Status Status
	Sense  Sense
}

func execGenericIO(fd uintptr, hdr *sgIoHdr) error {
	if err := ioctl.Ioctl(fd, SG_IO, uintptr(unsafe.Pointer(hdr))); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

// Execute issues a single SG_IO exchange. At most one of in (sent to the
// device) and out (filled from the device) may be non-empty.
func Execute(fd uintptr, cdb []byte, in, out []byte) (*Response, error) {
	if len(in) > 0 && len(out) > 0 {
		return nil, ErrInvalidDirection
	}

	resp := &Response{}

	hdr := sgIoHdr{
		interface_id:    'S',
		dxfer_direction: CDBNone,
		timeout:         DEFAULT_TIMEOUT,
		cmd_len:         uint8(len(cdb)),
		mx_sb_len:       uint8(len(resp.Sense)),
		cmdp:            uintptr(unsafe.Pointer(&cdb[0])),
		sbp:             uintptr(unsafe.Pointer(&resp.Sense[0])),
	}

	var buf []byte
	switch {
	case len(in) > 0:
		hdr.dxfer_direction = CDBToDevice
		buf = in
	case len(out) > 0:
		hdr.dxfer_direction = CDBFromDevice
		buf = out
	}
	if buf != nil {
		hdr.dxfer_len = uint32(len(buf))
		hdr.dxferp = uintptr(unsafe.Pointer(&buf[0]))
	}

	err := execGenericIO(fd, &hdr)
	runtime.KeepAlive(cdb)
	runtime.KeepAlive(buf)
	runtime.KeepAlive(resp)
	if err != nil {
		return nil, err
	}

	resp.Status = Status{
		SCSIStatus:   hdr.status,
		MaskedStatus: hdr.masked_status,
		HostStatus:   hdr.host_status,
		DriverStatus: hdr.driver_status,
		Info:         hdr.info,
		SenseLen:     hdr.sb_len_wr,
		Resid:        hdr.resid,
		Duration:     hdr.duration,
	}
	return resp, nil
}

// SendCDB executes a CDB that reads into buf, failing on any non-OK status.
func SendCDB(fd uintptr, cdb []byte, buf []byte) error {
	resp, err := Execute(fd, cdb, nil, buf)
	if err != nil {
		return err
	}
	if !resp.Status.OK() {
		return &StatusError{Status: resp.Status}
	}
	return nil
}
