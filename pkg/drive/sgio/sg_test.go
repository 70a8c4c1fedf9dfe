// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sgio

import (
	"errors"
	"syscall"
	"testing"
	"unsafe"
)

func TestSgIoHdrSize(t *testing.T) {
	// sizeof(sg_io_hdr_t) on 64-bit Linux
	if unsafe.Sizeof(uintptr(0)) == 8 {
		if got := unsafe.Sizeof(sgIoHdr{}); got != 88 {
			t.Errorf("sizeof(sgIoHdr) = %d; want 88", got)
		}
	}
}

func TestExecuteInvalidDirection(t *testing.T) {
	cdb := ATA16(TaskFile{Command: ATA_READ_LOG_DMA_EXT, Protocol: ProtocolDMAIn, Count: 1})
	// The file descriptor is never touched when the direction is invalid.
	resp, err := Execute(^uintptr(0), cdb[:], make([]byte, 512), make([]byte, 512))
	if !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("Execute() error = %v; want %v", err, ErrInvalidDirection)
	}
	if resp != nil {
		t.Errorf("Execute() response = %+v; want nil", resp)
	}
}

func TestExecuteBadDescriptor(t *testing.T) {
	cdb := ATA12(TaskFile{Command: ATA_CHECK_POWER_MODE, Protocol: ProtocolNone})
	_, err := Execute(^uintptr(0), cdb[:], nil, nil)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Execute() error = %v; want *TransportError", err)
	}
	if !errors.Is(err, syscall.EBADF) {
		t.Errorf("Execute() error = %v; want EBADF", err)
	}
}

func TestStatusErr(t *testing.T) {
	testCases := []struct {
		name    string
		status  Status
		wantErr bool
	}{
		{"OK", Status{}, false},
		{"Check condition with sense", Status{SCSIStatus: 0x02, DriverStatus: DRIVER_SENSE, Info: 1}, false},
		{"Host adapter failure", Status{HostStatus: 0x07, Info: 1}, true},
		{"Driver timeout", Status{DriverStatus: 0x06, Info: 1}, true},
		{"Driver timeout with sense", Status{DriverStatus: 0x06 | DRIVER_SENSE, Info: 1}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.status.Err()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Err() = %v; wantErr %v", err, tc.wantErr)
			}
			var se *StatusError
			if tc.wantErr && (!errors.As(err, &se) || se.Status != tc.status) {
				t.Errorf("Err() = %#v; want *StatusError carrying %+v", err, tc.status)
			}
		})
	}
}
