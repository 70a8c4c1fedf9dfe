// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sgio

import (
	"errors"
	"fmt"
)

const (
	SENSE_FIXED_CURRENT       = 0x70
	SENSE_FIXED_DEFERRED      = 0x71
	SENSE_DESCRIPTOR_CURRENT  = 0x72
	SENSE_DESCRIPTOR_DEFERRED = 0x73

	SENSE_NO_SENSE        = 0x0
	SENSE_RECOVERED_ERROR = 0x1
	SENSE_ILLEGAL_REQUEST = 0x5

	// ERR bit of the ATA STATUS register
	ATA_STATUS_ERR = 0x01

	// ATA Status Return sense data descriptor
	DESC_ATA_STATUS_RETURN = 0x09

	// Offset of the first descriptor in descriptor format sense data
	senseDescOffset = 8
)

var (
	ErrIllegalRequest = errors.New("illegal SCSI request")

	// ErrUnsupportedSenseFormat is returned for fixed format sense data,
	// which does not carry the ATA output registers in a parseable form.
	ErrUnsupportedSenseFormat = errors.New("fixed format sense data is not supported")

	// ErrProtocolViolation is returned when the response code of the sense
	// buffer is not a valid SCSI sense response code.
	ErrProtocolViolation = errors.New("invalid sense data response code")
)

// SenseData holds the ATA output registers returned through an ATA Status
// Return descriptor.
type SenseData struct {
	SenseKey uint8
	ASC      uint8
	ASCQ     uint8

	Descriptor  uint8
	Extend      bool
	Error       uint8
	SectorCount uint16
	LBA         uint64
	Device      uint8
	Status      uint8
}

// ParseSense decodes descriptor format sense data.
func ParseSense(sense Sense) (*SenseData, error) {
	switch sense[0] {
	case SENSE_DESCRIPTOR_CURRENT, SENSE_DESCRIPTOR_DEFERRED:
	case SENSE_FIXED_CURRENT, SENSE_FIXED_DEFERRED:
		return nil, ErrUnsupportedSenseFormat
	default:
		return nil, fmt.Errorf("%w: %#02x", ErrProtocolViolation, sense[0])
	}

	desc := sense[senseDescOffset:]
	sd := &SenseData{
		SenseKey:   sense[1] & 0x0f,
		ASC:        sense[2],
		ASCQ:       sense[3],
		Descriptor: desc[0],
		Extend:     desc[2]&0x1 != 0,
		Error:      desc[3],
		// COUNT (15:8) and COUNT (7:0)
		SectorCount: uint16(desc[4])<<8 | uint16(desc[5]),
		Device:      desc[12],
		Status:      desc[13],
	}
	// LBA (7:0), (15:8), (23:16) live at odd offsets 7, 9, 11 and their
	// extended counterparts at 6, 8, 10.
	for i := 0; i < 3; i++ {
		sd.LBA |= uint64(desc[7+2*i]) << (8 * i)
		sd.LBA |= uint64(desc[6+2*i]) << (8 * (i + 3))
	}
	return sd, nil
}

// IllegalRequest reports whether the sense key is ILLEGAL REQUEST.
func (sd *SenseData) IllegalRequest() bool {
	return sd.SenseKey == SENSE_ILLEGAL_REQUEST
}

// Err returns an *ATAError if the device failed the command: the ATA
// STATUS register has ERR set or the sense key reports more than a
// recovered error.
func (sd *SenseData) Err() error {
	if sd.Status&ATA_STATUS_ERR != 0 {
		return &ATAError{Sense: *sd}
	}
	switch sd.SenseKey {
	case SENSE_NO_SENSE, SENSE_RECOVERED_ERROR:
		return nil
	default:
		return &ATAError{Sense: *sd}
	}
}

// ATAError is a command rejected or aborted by the device.
type ATAError struct {
	Sense SenseData
}

func (e *ATAError) Error() string {
	return fmt.Sprintf("ATA command failed: sense key %#x, ASC/ASCQ %#02x/%#02x, error %#02x, status %#02x",
		e.Sense.SenseKey, e.Sense.ASC, e.Sense.ASCQ, e.Sense.Error, e.Sense.Status)
}

// Unwrap returns ErrIllegalRequest for commands the device does not accept.
func (e *ATAError) Unwrap() error {
	if e.Sense.IllegalRequest() {
		return ErrIllegalRequest
	}
	return nil
}
