// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package epc

import (
	"fmt"
	"strings"
)

// PowerMode is the power state reported by CHECK POWER MODE.
type PowerMode int

const (
	PowerModeUnknown PowerMode = iota
	PowerModeActive
	PowerModeIdleA
	PowerModeIdleB
	PowerModeIdleC
	PowerModeStandbyY
	PowerModeStandbyZ
)

func (m PowerMode) String() string {
	switch m {
	case PowerModeActive:
		return "active"
	case PowerModeIdleA:
		return "idle_a"
	case PowerModeIdleB:
		return "idle_b"
	case PowerModeIdleC:
		return "idle_c"
	case PowerModeStandbyY:
		return "standby_y"
	case PowerModeStandbyZ:
		return "standby_z"
	default:
		return "unknown"
	}
}

func (m PowerMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// PowerModeFromSectorCount maps the COUNT output register of CHECK POWER
// MODE to a power mode.
func PowerModeFromSectorCount(count uint16) PowerMode {
	switch count {
	case 0xff:
		return PowerModeActive
	case uint16(ConditionIdleA):
		return PowerModeIdleA
	case uint16(ConditionIdleB):
		return PowerModeIdleB
	case uint16(ConditionIdleC):
		return PowerModeIdleC
	case uint16(ConditionStandbyY):
		return PowerModeStandbyY
	case uint16(ConditionStandbyZ):
		return PowerModeStandbyZ
	default:
		return PowerModeUnknown
	}
}

// Condition returns the power condition to request in order to enter m.
// Active shares its identifier with Idle A. Unknown has no condition.
func (m PowerMode) Condition() (Condition, bool) {
	switch m {
	case PowerModeActive, PowerModeIdleA:
		return ConditionIdleA, true
	case PowerModeIdleB:
		return ConditionIdleB, true
	case PowerModeIdleC:
		return ConditionIdleC, true
	case PowerModeStandbyY:
		return ConditionStandbyY, true
	case PowerModeStandbyZ:
		return ConditionStandbyZ, true
	default:
		return 0, false
	}
}

// Condition is an EPC power condition identifier, the target of the
// SET FEATURES subcommands.
type Condition uint8

const (
	ConditionStandbyZ Condition = 0x00
	ConditionStandbyY Condition = 0x01
	ConditionIdleA    Condition = 0x81
	ConditionIdleB    Condition = 0x82
	ConditionIdleC    Condition = 0x83
)

// Conditions lists every power condition in log page order.
var Conditions = []Condition{
	ConditionIdleA,
	ConditionIdleB,
	ConditionIdleC,
	ConditionStandbyY,
	ConditionStandbyZ,
}

func (c Condition) String() string {
	switch c {
	case ConditionIdleA:
		return "idle_a"
	case ConditionIdleB:
		return "idle_b"
	case ConditionIdleC:
		return "idle_c"
	case ConditionStandbyY:
		return "standby_y"
	case ConditionStandbyZ:
		return "standby_z"
	default:
		return fmt.Sprintf("Condition(%#02x)", uint8(c))
	}
}

// ParseCondition accepts the names returned by Condition.String, case
// insensitive, with '-' in place of '_' allowed.
func ParseCondition(s string) (Condition, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, c := range Conditions {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown power condition %q", s)
}

func (c *Condition) UnmarshalText(text []byte) error {
	v, err := ParseCondition(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c Condition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
