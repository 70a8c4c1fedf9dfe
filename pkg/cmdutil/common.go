package cmdutil

import (
	"fmt"

	"github.com/tyan-boot/wdepc/pkg/drive"
	"github.com/tyan-boot/wdepc/pkg/epc"
)

type DeviceEmbed struct {
	Device string `required:"" short:"d" env:"EPC_DEVICE" type:"path" help:"Path to ATA device (e.g. /dev/sda)"`
}

// Open opens the device for EPC operations. State-changing commands need
// drive.ReadWrite.
func (t *DeviceEmbed) Open(mode drive.Mode, opts ...epc.DeviceOpt) (*epc.Device, error) {
	d, err := epc.Open(t.Device, mode, opts...)
	if err != nil {
		return nil, fmt.Errorf("epc.Open(%s) failed: %w", t.Device, err)
	}
	return d, nil
}
