// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Power Conditions log (log address 08h), see ACS-4 9.20.

package epc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const (
	DescriptorSize   = 64
	PowerCondLogSize = 1024

	// TimerUnit is the resolution of every EPC timer.
	TimerUnit = 100 * time.Millisecond
)

// Byte offsets of each descriptor within the Power Conditions log.
// Idle descriptors live in the first 512-byte page, standby descriptors at
// the end of the second one.
const (
	offsetIdleA    = 0
	offsetIdleB    = 64
	offsetIdleC    = 128
	offsetStandbyY = 512 + 384
	offsetStandbyZ = 512 + 448
)

// Flag bits of descriptor byte 1.
const (
	flagSupported     = 1 << 7
	flagSavable       = 1 << 6
	flagChangeable    = 1 << 5
	flagDefaultEnable = 1 << 4
	flagSavedEnable   = 1 << 3
	flagCurrentEnable = 1 << 2

	offsetFlags = 1
)

var (
	ErrShortBuffer = errors.New("buffer too short")
	ErrTimerRange  = errors.New("timer out of range")
)

// PowerConditionDescriptor describes one power condition. Timers are in
// units of 100 milliseconds.
type PowerConditionDescriptor struct {
	Supported     bool
	Savable       bool
	Changeable    bool
	DefaultEnable bool
	SavedEnable   bool
	CurrentEnable bool

	DefaultTimer uint32
	SavedTimer   uint32
	CurrentTimer uint32
	RecoveryTime uint32
	MinTimer     uint32
	MaxTimer     uint32
}

// ParseDescriptor decodes the first 64 bytes of raw.
func ParseDescriptor(raw []byte) (PowerConditionDescriptor, error) {
	if len(raw) < DescriptorSize {
		return PowerConditionDescriptor{}, fmt.Errorf("power condition descriptor: %w: %d bytes", ErrShortBuffer, len(raw))
	}
	flags := raw[offsetFlags]
	return PowerConditionDescriptor{
		Supported:     flags&flagSupported != 0,
		Savable:       flags&flagSavable != 0,
		Changeable:    flags&flagChangeable != 0,
		DefaultEnable: flags&flagDefaultEnable != 0,
		SavedEnable:   flags&flagSavedEnable != 0,
		CurrentEnable: flags&flagCurrentEnable != 0,

		DefaultTimer: binary.LittleEndian.Uint32(raw[4:8]),
		SavedTimer:   binary.LittleEndian.Uint32(raw[8:12]),
		CurrentTimer: binary.LittleEndian.Uint32(raw[12:16]),
		RecoveryTime: binary.LittleEndian.Uint32(raw[16:20]),
		MinTimer:     binary.LittleEndian.Uint32(raw[20:24]),
		MaxTimer:     binary.LittleEndian.Uint32(raw[24:28]),
	}, nil
}

// Setting is a snapshot of all five power condition descriptors.
type Setting struct {
	IdleA    PowerConditionDescriptor
	IdleB    PowerConditionDescriptor
	IdleC    PowerConditionDescriptor
	StandbyY PowerConditionDescriptor
	StandbyZ PowerConditionDescriptor
}

// ParseSetting decodes a complete Power Conditions log.
func ParseSetting(raw []byte) (*Setting, error) {
	if len(raw) < PowerCondLogSize {
		return nil, fmt.Errorf("power conditions log: %w: %d bytes", ErrShortBuffer, len(raw))
	}
	s := &Setting{}
	for _, f := range []struct {
		d   *PowerConditionDescriptor
		off int
	}{
		{&s.IdleA, offsetIdleA},
		{&s.IdleB, offsetIdleB},
		{&s.IdleC, offsetIdleC},
		{&s.StandbyY, offsetStandbyY},
		{&s.StandbyZ, offsetStandbyZ},
	} {
		// Cannot fail, the length was checked above
		*f.d, _ = ParseDescriptor(raw[f.off : f.off+DescriptorSize])
	}
	return s, nil
}

// Descriptor returns the descriptor of condition c.
func (s *Setting) Descriptor(c Condition) PowerConditionDescriptor {
	switch c {
	case ConditionIdleA:
		return s.IdleA
	case ConditionIdleB:
		return s.IdleB
	case ConditionIdleC:
		return s.IdleC
	case ConditionStandbyY:
		return s.StandbyY
	case ConditionStandbyZ:
		return s.StandbyZ
	}
	return PowerConditionDescriptor{}
}

// Timer is an EPC timer value as accepted by SET FEATURES, in units of
// 100 milliseconds.
type Timer uint16

// TimerFromDuration converts d to a Timer. d must be a non-negative
// multiple of 100ms no larger than 6553.5s.
func TimerFromDuration(d time.Duration) (Timer, error) {
	if d < 0 || d%TimerUnit != 0 || d/TimerUnit > 0xffff {
		return 0, fmt.Errorf("%w: %v (must be a multiple of %v up to %v)", ErrTimerRange, d, TimerUnit, TimerDuration(0xffff))
	}
	return Timer(d / TimerUnit), nil
}

func (t Timer) Duration() time.Duration {
	return TimerDuration(uint32(t))
}

// TimerDuration converts a descriptor timer field to a time.Duration.
func TimerDuration(v uint32) time.Duration {
	return time.Duration(v) * TimerUnit
}
