// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/tyan-boot/wdepc/pkg/drive"
	"github.com/tyan-boot/wdepc/pkg/epc"
)

type statusCmd struct {
	Devices  []string `arg:"" type:"path" help:"Devices to query (e.g. /dev/sda /dev/sdb)"`
	Output   string   `short:"o" default:"table" enum:"table,json,openmetrics" help:"Output format; one of [table, json, openmetrics]"`
	NoHeader bool     `help:"Suppress the header in table format output"`
}

type DeviceState struct {
	Device   string
	Identity *drive.Identity
	Features *drive.Features
	Mode     epc.PowerMode
	Setting  *epc.Setting `json:",omitempty"`
}

type Devices []DeviceState

func queryDevice(devpath string, opts ...epc.DeviceOpt) (*DeviceState, error) {
	d, err := epc.Open(devpath, drive.ReadOnly, opts...)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	s := &DeviceState{Device: devpath}
	if s.Identity, err = d.Identify(); err != nil {
		return nil, fmt.Errorf("Identify() failed: %w", err)
	}
	if s.Features, err = d.Features(); err != nil {
		return nil, fmt.Errorf("Features() failed: %w", err)
	}
	if s.Mode, err = d.QueryMode(); err != nil {
		log.Printf("QueryMode(%s): %v", devpath, err)
	}
	if s.Features.EPCSupported {
		if s.Setting, err = d.QuerySetting(); err != nil {
			log.Printf("QuerySetting(%s): %v", devpath, err)
		}
	}
	return s, nil
}

func (t *statusCmd) Run(ctx *context) error {
	var state Devices
	for _, devpath := range t.Devices {
		s, err := queryDevice(devpath, ctx.opts...)
		if err != nil {
			log.Printf("%s: %v", devpath, err)
			continue
		}
		state = append(state, *s)
	}

	switch t.Output {
	case "json":
		return outputJSON(os.Stdout, state)
	case "openmetrics":
		return outputMetrics(os.Stdout, state)
	default:
		return outputTable(os.Stdout, state, !t.NoHeader)
	}
}

func outputJSON(w io.Writer, state Devices) error {
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func conditionCell(s *epc.Setting, c epc.Condition) string {
	if s == nil {
		return "-"
	}
	d := s.Descriptor(c)
	switch {
	case !d.Supported:
		return "-"
	case !d.CurrentEnable:
		return "off"
	default:
		return epc.TimerDuration(d.CurrentTimer).String()
	}
}

func outputTable(w io.Writer, state Devices, header bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	if header {
		fmt.Fprint(tw, "DEVICE\tMODEL\tSERIAL\tFIRMWARE\tEPC\tAPM\tMODE")
		for _, c := range epc.Conditions {
			fmt.Fprint(tw, "\t", c)
		}
		fmt.Fprint(tw, "\t\n")
	}
	for _, s := range state {
		fmt.Fprint(tw,
			s.Device, "\t",
			s.Identity.Model, "\t",
			s.Identity.SerialNumber, "\t",
			s.Identity.Firmware, "\t",
			featureState(s.Features.EPCSupported, s.Features.EPCEnabled), "\t",
			featureState(s.Features.APMSupported, s.Features.APMEnabled), "\t",
			s.Mode)
		for _, c := range epc.Conditions {
			fmt.Fprint(tw, "\t", conditionCell(s.Setting, c))
		}
		fmt.Fprint(tw, "\t\n")
	}
	return tw.Flush()
}
