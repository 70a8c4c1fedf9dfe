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

package sgio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	ATA_PASSTHROUGH = 0xa1

	SCSI_INQUIRY         = 0x12
	SCSI_ATA_PASSTHRU_16 = 0x85
)

// SCSI INQUIRY response
type InquiryResponse struct {
	Peripheral   byte // peripheral qualifier, device type
	_            byte
	Version      byte
	_            [5]byte
	VendorIdent  [8]byte
	ProductIdent [16]byte
	ProductRev   [4]byte
}

func (inq InquiryResponse) String() string {
	return fmt.Sprintf("Type=0x%x, Vendor=%s, Product=%s, Revision=%s",
		inq.Peripheral,
		strings.TrimSpace(string(inq.VendorIdent[:])),
		strings.TrimSpace(string(inq.ProductIdent[:])),
		strings.TrimSpace(string(inq.ProductRev[:])))
}

// SAT reports whether the device is an ATA device behind a SCSI/ATA
// Translation layer.
func (inq InquiryResponse) SAT() bool {
	return bytes.Equal(inq.VendorIdent[:], []byte("ATA     "))
}

// ATA IDENTIFY DEVICE response
type IdentifyDeviceResponse struct {
	_        [20]byte
	Serial   [20]byte
	_        [6]byte
	Firmware [8]byte
	Model    [40]byte
	_        [72]byte
	Word83   uint16 // commands and feature sets supported
	_        [4]byte
	Word86   uint16 // commands and feature sets enabled
	_        [64]byte
	Word119  uint16 // commands and feature sets supported (continued)
	Word120  uint16 // commands and feature sets enabled (continued)
	_        [270]byte
}

const (
	word83APM  = 1 << 3
	word86APM  = 1 << 3
	word119EPC = 1 << 7
	word120EPC = 1 << 7

	// Words 119 and 120 are only valid when bits 15:14 are 01b
	wordValidMask = 0xc000
	wordValid     = 0x4000
)

func ATAString(b []byte) string {
	out := make([]byte, len(b))
	for i := 0; i < len(b)/2; i++ {
		out[i*2] = b[i*2+1]
		out[i*2+1] = b[i*2]
	}
	return string(out)
}

func (id IdentifyDeviceResponse) String() string {
	return fmt.Sprintf("Serial=%s, Firmware=%s, Model=%s",
		id.SerialNumber(), id.FirmwareRevision(), id.ModelNumber())
}

func (id IdentifyDeviceResponse) SerialNumber() string {
	return strings.TrimSpace(ATAString(id.Serial[:]))
}

func (id IdentifyDeviceResponse) FirmwareRevision() string {
	return strings.TrimSpace(ATAString(id.Firmware[:]))
}

func (id IdentifyDeviceResponse) ModelNumber() string {
	return strings.TrimSpace(ATAString(id.Model[:]))
}

func (id IdentifyDeviceResponse) APMSupported() bool {
	return id.Word83&wordValidMask == wordValid && id.Word83&word83APM != 0
}

func (id IdentifyDeviceResponse) APMEnabled() bool {
	return id.Word86&word86APM != 0
}

func (id IdentifyDeviceResponse) EPCSupported() bool {
	return id.Word119&wordValidMask == wordValid && id.Word119&word119EPC != 0
}

func (id IdentifyDeviceResponse) EPCEnabled() bool {
	return id.Word120&wordValidMask == wordValid && id.Word120&word120EPC != 0
}

// ParseIdentify decodes a 512-byte IDENTIFY DEVICE data block.
func ParseIdentify(raw []byte) (IdentifyDeviceResponse, error) {
	var resp IdentifyDeviceResponse
	// IDENTIFY data is a sequence of little endian words
	err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &resp)
	return resp, err
}

// INQUIRY - Returns parsed inquiry data.
func SCSIInquiry(fd uintptr) (InquiryResponse, error) {
	var resp InquiryResponse

	respBuf := make([]byte, 36)

	cdb := CDB6{SCSI_INQUIRY}
	binary.BigEndian.PutUint16(cdb[3:], uint16(len(respBuf)))

	if err := SendCDB(fd, cdb[:], respBuf); err != nil {
		return resp, err
	}

	binary.Read(bytes.NewBuffer(respBuf), binary.LittleEndian, &resp)

	return resp, nil
}

// ATA Passthrough via SCSI (which is what Linux uses for all ATA these days)
func ATAIdentify(fd uintptr) (IdentifyDeviceResponse, error) {
	respBuf := make([]byte, 512)

	cdb := ATA12(TaskFile{
		Command:  ATA_IDENTIFY_DEVICE,
		Protocol: ProtocolPIOIn,
		Count:    1,
	})

	if err := SendCDB(fd, cdb[:], respBuf); err != nil {
		return IdentifyDeviceResponse{}, err
	}

	return ParseIdentify(respBuf)
}
