// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/tyan-boot/wdepc/pkg/cmdutil"
	"github.com/tyan-boot/wdepc/pkg/drive"
	"github.com/tyan-boot/wdepc/pkg/epc"
)

var errNotConfirmed = errors.New("enabling EPC disables APM, pass --yes to confirm")

// context is the context struct required by kong command line parser
type context struct {
	opts []epc.DeviceOpt
}

func (c *context) open(d *cmdutil.DeviceEmbed, mode drive.Mode) (*epc.Device, error) {
	return d.Open(mode, c.opts...)
}

// openEPC opens the device read-write and checks that it implements EPC.
func (c *context) openEPC(d *cmdutil.DeviceEmbed) (*epc.Device, error) {
	dev, err := c.open(d, drive.ReadWrite)
	if err != nil {
		return nil, err
	}
	f, err := dev.Features()
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("Features() failed: %w", err)
	}
	if !f.EPCSupported {
		dev.Close()
		return nil, fmt.Errorf("%s: EPC feature set: %w", d.Device, drive.ErrNotSupported)
	}
	return dev, nil
}

type infoCmd struct {
	cmdutil.DeviceEmbed `embed:""`
}

type modeCmd struct {
	cmdutil.DeviceEmbed `embed:""`
}

type enableCmd struct {
	cmdutil.DeviceEmbed `embed:""`

	Yes bool `short:"y" type:"confirm" help:"Confirm enabling EPC, which disables APM"`
}

type disableCmd struct {
	cmdutil.DeviceEmbed `embed:""`
}

type gotoCmd struct {
	cmdutil.DeviceEmbed `embed:""`

	Condition epc.Condition `arg:"" help:"Power condition to enter (idle_a, idle_b, idle_c, standby_y, standby_z)"`
}

type timerCmd struct {
	cmdutil.DeviceEmbed `embed:""`

	Condition epc.Condition `arg:"" help:"Power condition to configure"`
	Timer     time.Duration `required:"" short:"t" help:"Timer in multiples of 100ms (e.g. 2m30s)"`
	Disable   bool          `help:"Disable the condition instead of enabling it"`
	Save      bool          `short:"s" help:"Make the new setting persistent"`
}

type stateCmd struct {
	cmdutil.DeviceEmbed `embed:""`

	Condition epc.Condition `arg:"" help:"Power condition to configure"`
	Enable    bool          `xor:"state" help:"Enable the condition"`
	Disable   bool          `xor:"state" help:"Disable the condition"`
	Save      bool          `short:"s" help:"Make the new setting persistent"`
}

type restoreCmd struct {
	cmdutil.DeviceEmbed `embed:""`

	Condition epc.Condition `arg:"" help:"Power condition to restore"`
	Default   bool          `help:"Restore from the default instead of the saved setting"`
	Save      bool          `short:"s" help:"Save the restored setting"`
}

type applyCmd struct {
	cmdutil.DeviceEmbed `embed:""`

	Profile string `arg:"" type:"existingfile" help:"YAML profile to apply"`
	Yes     bool   `short:"y" help:"Confirm enabling EPC, which disables APM, without asking"`
}

type diagCmd struct {
	cmdutil.DeviceEmbed `embed:""`
}

// cli is the main command line interface struct required by kong command line parser
var cli struct {
	Verbose bool            `short:"v" help:"Log every ATA command and its result to stderr"`
	Config  kong.ConfigFlag `help:"Load flag defaults from a JSON file"`

	Info    infoCmd    `cmd:"" help:"Show drive identity and EPC/APM feature state"`
	Mode    modeCmd    `cmd:"" help:"Show the current power mode"`
	Status  statusCmd  `cmd:"" help:"Show power mode and EPC settings of one or more drives"`
	Enable  enableCmd  `cmd:"" help:"Enable the EPC feature set (disables APM)"`
	Disable disableCmd `cmd:"" help:"Disable the EPC feature set"`
	Goto    gotoCmd    `cmd:"" help:"Move the drive to a power condition now"`
	Timer   timerCmd   `cmd:"" help:"Set the timer of a power condition"`
	State   stateCmd   `cmd:"" help:"Enable or disable a power condition"`
	Restore restoreCmd `cmd:"" help:"Restore a power condition from its default or saved setting"`
	Apply   applyCmd   `cmd:"" help:"Apply a YAML profile"`
	Diag    diagCmd    `cmd:"" help:"Dump raw logs and decoded settings for debugging"`
}

func featureState(supported, enabled bool) string {
	switch {
	case !supported:
		return "not supported"
	case enabled:
		return "enabled"
	default:
		return "disabled"
	}
}

func (t *infoCmd) Run(ctx *context) error {
	d, err := ctx.open(&t.DeviceEmbed, drive.ReadOnly)
	if err != nil {
		return err
	}
	defer d.Close()

	id, err := d.Identify()
	if err != nil {
		return fmt.Errorf("Identify() failed: %w", err)
	}
	f, err := d.Features()
	if err != nil {
		return fmt.Errorf("Features() failed: %w", err)
	}
	fmt.Printf("Device:   %s\n", t.Device)
	fmt.Printf("Model:    %s\n", id.Model)
	fmt.Printf("Serial:   %s\n", id.SerialNumber)
	fmt.Printf("Firmware: %s\n", id.Firmware)
	fmt.Printf("EPC:      %s\n", featureState(f.EPCSupported, f.EPCEnabled))
	fmt.Printf("APM:      %s\n", featureState(f.APMSupported, f.APMEnabled))
	return nil
}

func (t *modeCmd) Run(ctx *context) error {
	d, err := ctx.open(&t.DeviceEmbed, drive.ReadOnly)
	if err != nil {
		return err
	}
	defer d.Close()

	m, err := d.QueryMode()
	if err != nil {
		return err
	}
	fmt.Println(m)
	return nil
}

func (t *enableCmd) Run(ctx *context) error {
	if !t.Yes {
		return errNotConfirmed
	}
	d, err := ctx.openEPC(&t.DeviceEmbed)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.EnableEPC(); err != nil {
		return err
	}
	fmt.Println("EPC enabled, APM is now disabled")
	return nil
}

func (t *disableCmd) Run(ctx *context) error {
	d, err := ctx.openEPC(&t.DeviceEmbed)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.DisableEPC()
}

func (t *gotoCmd) Run(ctx *context) error {
	d, err := ctx.openEPC(&t.DeviceEmbed)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.GotoCondition(t.Condition)
}

func (t *timerCmd) Run(ctx *context) error {
	timer, err := epc.TimerFromDuration(t.Timer)
	if err != nil {
		return err
	}
	d, err := ctx.openEPC(&t.DeviceEmbed)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.SetTimer(t.Condition, timer, !t.Disable, t.Save)
}

func (t *stateCmd) Validate() error {
	if t.Enable == t.Disable {
		return errors.New("exactly one of --enable or --disable is required")
	}
	return nil
}

func (t *stateCmd) Run(ctx *context) error {
	d, err := ctx.openEPC(&t.DeviceEmbed)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.SetState(t.Condition, t.Enable, t.Save)
}

func (t *restoreCmd) Run(ctx *context) error {
	d, err := ctx.openEPC(&t.DeviceEmbed)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Restore(t.Condition, t.Default, t.Save)
}

func (t *applyCmd) Run(ctx *context) error {
	f, err := os.Open(t.Profile)
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := epc.LoadProfile(f)
	if err != nil {
		return fmt.Errorf("%s: %w", t.Profile, err)
	}
	if err := confirmProfile(p, t.Yes, cmdutil.ConfirmTerminal); err != nil {
		return err
	}
	d, err := ctx.openEPC(&t.DeviceEmbed)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.ApplyProfile(p)
}

// confirmProfile asks before applying a profile that enables EPC, unless
// yes is set.
func confirmProfile(p *epc.Profile, yes bool, ask func(question string) (bool, error)) error {
	if !p.EnablesEPC() || yes {
		return nil
	}
	ok, err := ask("Profile enables EPC, which disables APM. Continue")
	if err != nil {
		return err
	}
	if !ok {
		return errNotConfirmed
	}
	return nil
}
