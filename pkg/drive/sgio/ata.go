// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// ATA PASS-THROUGH (12) and (16) command block encoding, see SAT-4 12.2.2.

package sgio

// Command is an ATA command opcode.
type Command uint8

const (
	ATA_READ_LOG_EXT     Command = 0x2f
	ATA_READ_LOG_DMA_EXT Command = 0x47
	ATA_CHECK_POWER_MODE Command = 0xe5
	ATA_IDENTIFY_DEVICE  Command = 0xec
	ATA_SET_FEATURES     Command = 0xef
)

// CheckCondition reports whether the command needs its output registers
// returned in the sense data (CK_COND).
func (c Command) CheckCondition() bool {
	return c == ATA_CHECK_POWER_MODE
}

// Protocol is the ATA protocol field of a pass-through CDB.
type Protocol uint8

const (
	ProtocolNone   Protocol = 3
	ProtocolPIOIn  Protocol = 4
	ProtocolPIOOut Protocol = 5
	ProtocolDMA    Protocol = 6
	ProtocolDMAIn  Protocol = 10
	ProtocolDMAOut Protocol = 11
)

// FromDevice reports the T_DIR bit implied by the protocol.
func (p Protocol) FromDevice() bool {
	return p == ProtocolPIOIn || p == ProtocolDMAIn
}

// Flag byte (CDB byte 2) layout.
const (
	ckCondBit     = 1 << 5
	tDirBit       = 1 << 3
	bytBlokBit    = 1 << 2
	tLengthCount  = 0x2 // transfer length in the COUNT field
	extendBit     = 0x1
	deviceDefault = 0xa0
)

// TaskFile is the ATA register set of one command. Each field holds the
// previous (HOB) byte in bits 15:8 and the current byte in bits 7:0; the
// 12-byte CDB only carries the current byte.
type TaskFile struct {
	Command  Command
	Protocol Protocol
	Feature  uint16
	Count    uint16
	LBALow   uint16
	LBAMid   uint16
	LBAHigh  uint16
}

func (tf *TaskFile) flags() byte {
	// OFF_LINE is always zero
	f := byte(bytBlokBit | tLengthCount)
	if tf.Command.CheckCondition() {
		f |= ckCondBit
	}
	if tf.Protocol.FromDevice() {
		f |= tDirBit
	}
	return f
}

// ATA16 encodes the task file as an ATA PASS-THROUGH (16) CDB with the
// EXTEND bit set.
func ATA16(tf TaskFile) CDB16 {
	cdb := CDB16{SCSI_ATA_PASSTHRU_16}
	cdb[1] = byte(tf.Protocol)<<1 | extendBit
	cdb[2] = tf.flags()
	cdb[3] = byte(tf.Feature >> 8)
	cdb[4] = byte(tf.Feature)
	cdb[5] = byte(tf.Count >> 8)
	cdb[6] = byte(tf.Count)
	cdb[7] = byte(tf.LBALow >> 8)
	cdb[8] = byte(tf.LBALow)
	cdb[9] = byte(tf.LBAMid >> 8)
	cdb[10] = byte(tf.LBAMid)
	cdb[11] = byte(tf.LBAHigh >> 8)
	cdb[12] = byte(tf.LBAHigh)
	cdb[13] = deviceDefault
	cdb[14] = byte(tf.Command)
	cdb[15] = 0 // control
	return cdb
}

// ATA12 encodes the task file as an ATA PASS-THROUGH (12) CDB.
func ATA12(tf TaskFile) CDB12 {
	cdb := CDB12{ATA_PASSTHROUGH}
	cdb[1] = byte(tf.Protocol) << 1
	cdb[2] = tf.flags()
	cdb[3] = byte(tf.Feature)
	cdb[4] = byte(tf.Count)
	cdb[5] = byte(tf.LBALow)
	cdb[6] = byte(tf.LBAMid)
	cdb[7] = byte(tf.LBAHigh)
	cdb[8] = deviceDefault
	cdb[9] = byte(tf.Command)
	cdb[11] = 0 // control
	return cdb
}
