// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style // license that can be found in the LICENSE file.

package drive

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	ErrNotSupported       = errors.New("operation is not supported")
	ErrDeviceNotSupported = errors.New("device is not supported")
)

// Mode selects how the device node is opened. Status queries only need
// ReadOnly; SET FEATURES commands need ReadWrite.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadWrite {
		return "read-write"
	}
	return "read-only"
}

type Identity struct {
	Protocol     string
	SerialNumber string
	Model        string
	Firmware     string
}

func (i *Identity) String() string {
	return fmt.Sprintf("Protocol=%s, Model=%s, Serial=%s, Firmware=%s",
		i.Protocol, i.Model, i.SerialNumber, i.Firmware)
}

// Features lists the power management feature sets reported by IDENTIFY
// DEVICE.
type Features struct {
	EPCSupported bool
	EPCEnabled   bool
	APMSupported bool
	APMEnabled   bool
}

// OpenError is returned when the device node cannot be opened.
type OpenError struct {
	Path string
	Mode Mode
	Err  error
}

func (e *OpenError) Error() string {
	msg := fmt.Sprintf("open %s (%s): %v", e.Path, e.Mode, e.Err)
	if e.Permission() {
		msg += " (root privileges are required)"
	}
	return msg
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Permission reports whether the open failed for lack of privileges.
func (e *OpenError) Permission() bool {
	return errors.Is(e.Err, unix.EACCES) || errors.Is(e.Err, unix.EPERM)
}
