package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
)

func histogramCommands() []cli.Command {
	return []cli.Command{
		{
			Name:      "histogram",
			Usage:     "read a histogram's format and bucket counts",
			ArgsUsage: "<id>",
			Action:    actionHistogram,
		},
	}
}

func actionHistogram(c *cli.Context) error {
	if c.NArg() != 1 {
		return failf(exitTransportOrEncode, "usage: nsmtool histogram <id>")
	}
	id, err := strconv.Atoi(c.Args().Get(0))
	if err != nil {
		return failf(exitTransportOrEncode, "invalid histogram id %q: %v", c.Args().Get(0), err)
	}

	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	formatReq, sw := wire.EncodeGetHistogramFormatReq(0, uint8(id))
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode format request: %v", sw)
	}
	formatResp, err := cl.sendRecv(formatReq)
	if err != nil {
		return err
	}
	format, cc, _, sw := wire.DecodeGetHistogramFormatResp(formatResp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode format response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "histogram format completion code: %v", cc)
	}

	dataReq, sw := wire.EncodeGetHistogramDataReq(0, uint8(id))
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode data request: %v", sw)
	}
	dataResp, err := cl.sendRecv(dataReq)
	if err != nil {
		return err
	}
	counts, cc, _, sw := wire.DecodeGetHistogramDataResp(dataResp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode data response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "histogram data completion code: %v", cc)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Bucket Offset", "Count"})
	for i, offset := range format.BucketOffsets {
		count := uint32(0)
		if i < len(counts) {
			count = counts[i]
		}
		table.Append([]string{fmt.Sprintf("%d", offset), fmt.Sprintf("%d", count)})
	}
	table.Render()
	return nil
}
