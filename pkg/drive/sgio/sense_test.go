// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sgio

import (
	"errors"
	"testing"
)

func senseFromHex(t *testing.T, s string) Sense {
	t.Helper()
	var sense Sense
	copy(sense[:], mustHex(t, s))
	return sense
}

func TestParseSense(t *testing.T) {
	testCases := []struct {
		name string
		data string
		want SenseData
	}{
		{"Idle A",
			"72 01 00 1D 00 00 00 0E 09 0C 00 00 00 81 00 00 00 00 00 00 A0 50",
			SenseData{SenseKey: 0x1, ASCQ: 0x1d, Descriptor: DESC_ATA_STATUS_RETURN, SectorCount: 0x81, Device: 0xa0, Status: 0x50}},
		{"Active",
			"72 01 00 1D 00 00 00 0E 09 0C 00 00 00 FF 00 00 00 00 00 00 A0 50",
			SenseData{SenseKey: 0x1, ASCQ: 0x1d, Descriptor: DESC_ATA_STATUS_RETURN, SectorCount: 0xff, Device: 0xa0, Status: 0x50}},
		{"Deferred, extended registers",
			"73 05 24 00 00 00 00 0E 09 0C 01 04 12 34 01 02 03 04 05 06 40 51",
			SenseData{SenseKey: SENSE_ILLEGAL_REQUEST, ASC: 0x24, Descriptor: DESC_ATA_STATUS_RETURN, Extend: true,
				Error: 0x04, SectorCount: 0x1234, LBA: 0x050301060402, Device: 0x40, Status: 0x51}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSense(senseFromHex(t, tc.data))
			if err != nil {
				t.Fatalf("ParseSense() failed: %v", err)
			}
			if *got != tc.want {
				t.Errorf("ParseSense() = %+v; want %+v", *got, tc.want)
			}
		})
	}
}

func TestParseSenseSectorCountOffset(t *testing.T) {
	var sense Sense
	sense[0] = 0x72
	sense[12] = 0x00
	sense[13] = 0x81
	sd, err := ParseSense(sense)
	if err != nil {
		t.Fatalf("ParseSense() failed: %v", err)
	}
	if sd.SectorCount != 0x81 {
		t.Errorf("SectorCount = %#04x; want 0x0081", sd.SectorCount)
	}
}

func TestParseSenseErrors(t *testing.T) {
	for code := 0; code < 0x100; code++ {
		var sense Sense
		sense[0] = byte(code)
		_, err := ParseSense(sense)
		switch code {
		case 0x70, 0x71:
			if !errors.Is(err, ErrUnsupportedSenseFormat) {
				t.Errorf("ParseSense(%#02x) error = %v; want %v", code, err, ErrUnsupportedSenseFormat)
			}
		case 0x72, 0x73:
			if err != nil {
				t.Errorf("ParseSense(%#02x) error = %v; want nil", code, err)
			}
		default:
			if !errors.Is(err, ErrProtocolViolation) {
				t.Errorf("ParseSense(%#02x) error = %v; want %v", code, err, ErrProtocolViolation)
			}
		}
	}
}

func TestIllegalRequest(t *testing.T) {
	sd, err := ParseSense(senseFromHex(t, "72 05 24 00"))
	if err != nil {
		t.Fatalf("ParseSense() failed: %v", err)
	}
	if !sd.IllegalRequest() {
		t.Errorf("IllegalRequest() = false; want true")
	}
}

func TestSenseDataErr(t *testing.T) {
	testCases := []struct {
		name    string
		sense   string
		wantErr bool
		illegal bool
	}{
		{"Recovered with output registers", "72 01 00 1d 00 00 00 0e 09 0c 00 00 00 ff 00 00 00 00 00 00 a0 50", false, false},
		{"No sense", "72 00 00 00 00 00 00 0e 09 0c 00 00 00 00 00 00 00 00 00 00 a0 50", false, false},
		{"Aborted command", "72 0b 00 00 00 00 00 0e 09 0c 00 04 00 00 00 00 00 00 00 00 a0 51", true, false},
		{"ERR bit with recovered sense key", "72 01 00 1d 00 00 00 0e 09 0c 00 04 00 00 00 00 00 00 00 00 a0 51", true, false},
		{"Illegal request", "72 05 24 00 00 00 00 0e 09 0c 00 04 00 00 00 00 00 00 00 00 a0 51", true, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sd, err := ParseSense(senseFromHex(t, tc.sense))
			if err != nil {
				t.Fatalf("ParseSense() failed: %v", err)
			}
			err = sd.Err()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Err() = %v; wantErr %v", err, tc.wantErr)
			}
			if err == nil {
				return
			}
			var ae *ATAError
			if !errors.As(err, &ae) || ae.Sense != *sd {
				t.Errorf("Err() = %#v; want *ATAError carrying %+v", err, *sd)
			}
			if got := errors.Is(err, ErrIllegalRequest); got != tc.illegal {
				t.Errorf("errors.Is(%v, ErrIllegalRequest) = %v; want %v", err, got, tc.illegal)
			}
		})
	}
}
