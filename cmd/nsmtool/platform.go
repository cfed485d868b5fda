package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
)

func platformCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "temp",
			Usage: "read a temperature sensor",
			Flags: []cli.Flag{cli.UintFlag{Name: "sensor-id", Value: 0}},
			Action: actionOneShot("temperature (C)", func(cl *client, c *cli.Context) ([]byte, wire.SoftwareCode) {
				return wire.EncodeGetTemperatureReadingReq(0, uint8(c.Uint("sensor-id")))
			}, func(resp []byte) (string, wire.CompletionCode, wire.SoftwareCode) {
				raw, cc, _, sw := wire.DecodeGetTemperatureReadingResp(resp)
				return fmt.Sprintf("%.2f", float64(raw)/256.0), cc, sw
			}),
		},
		{
			Name:  "power",
			Usage: "read a power sensor",
			Flags: []cli.Flag{
				cli.UintFlag{Name: "sensor-id", Value: 0},
				cli.UintFlag{Name: "interval", Usage: "repeat the read every <ms> milliseconds (0: read once)", Value: 0},
			},
			Action: actionPower,
		},
		{
			Name:  "energy",
			Usage: "read an energy counter",
			Flags: []cli.Flag{cli.UintFlag{Name: "sensor-id", Value: 0}},
			Action: actionOneShot("energy", func(cl *client, c *cli.Context) ([]byte, wire.SoftwareCode) {
				return wire.EncodeGetEnergyCountReq(0, uint8(c.Uint("sensor-id")))
			}, func(resp []byte) (string, wire.CompletionCode, wire.SoftwareCode) {
				milliJoules, cc, _, sw := wire.DecodeGetEnergyCountResp(resp)
				return humanize.Comma(int64(milliJoules)) + " mJ", cc, sw
			}),
		},
		{
			Name:  "voltage",
			Usage: "read a voltage sensor",
			Flags: []cli.Flag{cli.UintFlag{Name: "sensor-id", Value: 0}},
			Action: actionOneShot("voltage (mV)", func(cl *client, c *cli.Context) ([]byte, wire.SoftwareCode) {
				return wire.EncodeGetVoltageReq(0, uint8(c.Uint("sensor-id")))
			}, func(resp []byte) (string, wire.CompletionCode, wire.SoftwareCode) {
				mv, cc, _, sw := wire.DecodeGetVoltageResp(resp)
				return fmt.Sprintf("%d", mv), cc, sw
			}),
		},
		{
			Name:   "driver-info",
			Usage:  "query driver state and version",
			Action: actionDriverInfo,
		},
	}
}

// actionOneShot builds a cli.ActionFunc that dials, sends one request,
// decodes it to a single printed value, and enforces the exit-code
// contract -- the common shape most nsmtool subcommands share.
func actionOneShot(
	label string,
	gen func(cl *client, c *cli.Context) ([]byte, wire.SoftwareCode),
	decode func(resp []byte) (string, wire.CompletionCode, wire.SoftwareCode),
) cli.ActionFunc {
	return func(c *cli.Context) error {
		cl, cleanup, err := dial(c)
		if err != nil {
			return err
		}
		defer cleanup()

		req, sw := gen(cl, c)
		if sw != wire.SWSuccess {
			return failf(exitTransportOrEncode, "encode request: %v", sw)
		}
		resp, err := cl.sendRecv(req)
		if err != nil {
			return err
		}
		value, cc, sw := decode(resp)
		if sw != wire.SWSuccess {
			return failf(exitTransportOrEncode, "decode response: %v", sw)
		}
		if cc != wire.Success {
			return failf(exitNonSuccessCompCode, "%s completion code: %v", label, cc)
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.Append([]string{label, value})
		table.Render()
		return nil
	}
}

func actionPower(c *cli.Context) error {
	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	sensorID := uint8(c.Uint("sensor-id"))
	interval := c.Uint("interval")
	if interval == 0 {
		return readAndPrintPower(cl, sensorID)
	}

	ticker := time.NewTicker(time.Duration(interval) * time.Millisecond)
	defer ticker.Stop()
	for {
		if err := readAndPrintPower(cl, sensorID); err != nil {
			return err
		}
		select {
		case <-cl.ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readAndPrintPower(cl *client, sensorID uint8) error {
	req, sw := wire.EncodeGetPowerReq(0, sensorID)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	milliWatts, cc, _, sw := wire.DecodeGetPowerResp(resp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "power completion code: %v", cc)
	}
	fmt.Printf("%s power: %d mW\n", time.Now().Format(time.RFC3339), milliWatts)
	return nil
}

func actionDriverInfo(c *cli.Context) error {
	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, sw := wire.EncodeGetDriverInfoReq(0)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	info, cc, _, sw := wire.DecodeGetDriverInfoResp(resp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "driver-info completion code: %v", cc)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Append([]string{"State", fmt.Sprintf("%d", info.State)})
	table.Append([]string{"Version", info.Version})
	table.Render()
	return nil
}
