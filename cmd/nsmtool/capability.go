package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
)

func capabilityCommands() []cli.Command {
	return []cli.Command{
		{Name: "ping", Usage: "check a device responds", Action: actionPing},
		{Name: "supported-types", Usage: "list a device's supported NVIDIA message types", Action: actionSupportedTypes},
		{Name: "supported-commands", Usage: "list a device's supported commands for a message type", ArgsUsage: "<type>", Action: actionSupportedCommands},
		{Name: "identify", Usage: "query device identification", Action: actionIdentify},
	}
}

func actionPing(c *cli.Context) error {
	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, sw := wire.EncodePingReq(0)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode ping request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	cc, _, sw := wire.DecodePingResp(resp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode ping response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "ping completion code: %v", cc)
	}
	fmt.Println("ok")
	return nil
}

func actionSupportedTypes(c *cli.Context) error {
	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, sw := wire.EncodeSupportedNvidiaMessageTypesReq(0)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	bitmap, cc, _, sw := wire.DecodeSupportedNvidiaMessageTypesResp(resp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "completion code: %v", cc)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Type", "Supported"})
	for i := 0; i < wire.SupportedTypesBitmapLen*8; i++ {
		if bitmap[i/8]&(1<<uint(i%8)) != 0 {
			table.Append([]string{strconv.Itoa(i), "yes"})
		}
	}
	table.Render()
	return nil
}

func actionSupportedCommands(c *cli.Context) error {
	if c.NArg() != 1 {
		return failf(exitTransportOrEncode, "usage: nsmtool supported-commands <type>")
	}
	target, err := strconv.Atoi(c.Args().Get(0))
	if err != nil {
		return failf(exitTransportOrEncode, "invalid type %q: %v", c.Args().Get(0), err)
	}

	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, sw := wire.EncodeSupportedCommandCodesReq(0, wire.NvidiaMsgType(target))
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	bitmap, cc, _, sw := wire.DecodeSupportedCommandCodesResp(resp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "completion code: %v", cc)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Command", "Supported"})
	for i := 0; i < wire.SupportedCommandsBitmapLen*8; i++ {
		if bitmap[i/8]&(1<<uint(i%8)) != 0 {
			table.Append([]string{strconv.Itoa(i), "yes"})
		}
	}
	table.Render()
	return nil
}

func actionIdentify(c *cli.Context) error {
	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, sw := wire.EncodeQueryDeviceIdentificationReq(0)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	identification, instance, cc, _, sw := wire.DecodeQueryDeviceIdentificationResp(resp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "completion code: %v", cc)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Append([]string{"Device Identification", strconv.Itoa(int(identification))})
	table.Append([]string{"Device Instance", strconv.Itoa(int(instance))})
	table.Render()
	return nil
}
