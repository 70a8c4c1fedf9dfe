// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"fmt"
	"os"
)

// Open opens an ATA device reachable through SG_IO ATA pass-through.
func Open(device string, mode Mode) (*ATADrive, error) {
	flag := os.O_RDONLY
	if mode == ReadWrite {
		flag = os.O_RDWR
	}
	d, err := os.OpenFile(device, flag, 0)
	if err != nil {
		return nil, &OpenError{Path: device, Mode: mode, Err: err}
	}

	if isNVME(d) {
		d.Close()
		return nil, fmt.Errorf("%s: NVMe has no ATA power conditions: %w", device, ErrDeviceNotSupported)
	}
	if !isSCSI(d) {
		d.Close()
		return nil, fmt.Errorf("%s: %w", device, ErrDeviceNotSupported)
	}

	return ATA(d), nil
}
