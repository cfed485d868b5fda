package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
)

func gpmCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "gpm-aggregate",
			Usage: "query aggregate GPM metrics",
			Flags: []cli.Flag{
				cli.UintFlag{Name: "metrics", Usage: "retrieval source bitfield", Value: 0},
			},
			Action: actionGpmAggregate,
		},
		{
			Name:  "gpm-instance",
			Usage: "query per-instance GPM metrics",
			Flags: []cli.Flag{
				cli.UintFlag{Name: "metric", Usage: "retrieval source id", Value: 0},
				cli.UintFlag{Name: "mask", Usage: "instance bitmap", Value: 0xFF},
			},
			Action: actionGpmInstance,
		},
	}
}

func actionGpmAggregate(c *cli.Context) error {
	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, sw := wire.EncodeQueryAggregateGPMMetricsReq(0, uint8(c.Uint("metrics")))
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	return printAggregateSamples(resp, wire.CmdQueryAggregateGPMMetrics)
}

func actionGpmInstance(c *cli.Context) error {
	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, sw := wire.EncodeQueryPerInstanceGPMMetricsReq(0, uint8(c.Uint("metric")), uint8(c.Uint("mask")))
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	return printAggregateSamples(resp, wire.CmdQueryPerInstanceGPMMetrics)
}

// printAggregateSamples decodes resp as an aggregate response and
// prints one table row per raw telemetry sample -- nsmtool has no
// catalog of tag->unit mappings (that lives in nsm/config's descriptor
// build-out), so it prints tags and raw bytes rather than decoded
// physical units.
func printAggregateSamples(resp []byte, command uint8) error {
	_, cc, stream, sw := wire.DecodeAggregateResp(resp, wire.TypePlatformEnvironmental)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "completion code: %v", cc)
	}
	samples, sw := wire.DecodeSamples(stream)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode samples: %v", sw)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Tag", "Valid", "Bytes"})
	for _, s := range samples {
		table.Append([]string{fmt.Sprintf("0x%02x", s.Tag), fmt.Sprintf("%v", s.Valid), fmt.Sprintf("% x", s.Data)})
	}
	table.Render()
	return nil
}
