// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/davecgh/go-spew/spew"

	"github.com/tyan-boot/wdepc/pkg/drive"
	"github.com/tyan-boot/wdepc/pkg/epc"
)

func (t *diagCmd) Run(ctx *context) error {
	spew.Config.Indent = "  "

	d, err := ctx.open(&t.DeviceEmbed, drive.ReadOnly)
	if err != nil {
		return err
	}
	defer d.Close()

	id, err := d.Identify()
	if err != nil {
		log.Printf("Identify failed: %v", err)
	} else {
		log.Printf("Drive identity: %s", id)
	}
	f, err := d.Features()
	if err != nil {
		log.Printf("Features failed: %v", err)
	} else {
		log.Printf("Power management features:")
		spew.Dump(f)
	}
	if m, err := d.QueryMode(); err != nil {
		log.Printf("CHECK POWER MODE failed: %v", err)
	} else {
		log.Printf("Current power mode: %s", m)
	}

	dir, err := d.GeneralLog()
	if err != nil {
		return fmt.Errorf("GeneralLog() failed: %w", err)
	}
	log.Printf("General Purpose Log Directory, version %d", dir.Version())
	fmt.Print(hex.Dump(dir[:]))

	log.Printf("Power Conditions log is %d page(s)", dir.Pages(epc.LogAddrPowerConditions))
	raw, err := d.ReadLogPage(epc.LogAddrPowerConditions)
	if err != nil {
		log.Printf("Unable to read the Power Conditions log: %v", err)
		return nil
	}
	fmt.Print(hex.Dump(raw))

	s, err := epc.ParseSetting(raw)
	if err != nil {
		return fmt.Errorf("ParseSetting() failed: %w", err)
	}
	log.Printf("Decoded power conditions:")
	spew.Dump(s)
	return nil
}
