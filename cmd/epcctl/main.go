// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tyan-boot/wdepc/pkg/cmdutil"
	"github.com/tyan-boot/wdepc/pkg/epc"
)

const (
	programName = "epcctl"
	programDesc = "ATA Extended Power Conditions control"
)

func main() {
	// Parse kong flags and sub-commands
	ctx := kong.Parse(&cli,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Configuration(kong.JSON, "/etc/epcctl.json", "~/.config/epcctl.json"),
		kong.Resolvers(cmdutil.ResolveConfirm()))

	c := &context{}
	if cli.Verbose {
		c.opts = append(c.opts, epc.WithLogger(log.New(os.Stderr, "epc: ", log.Lmicroseconds)))
	}

	// Run the command
	err := ctx.Run(c)
	ctx.FatalIfErrorf(err)
}
