package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
)

func modeCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "mig-mode",
			Usage: "query or set MIG mode",
			Flags: []cli.Flag{cli.IntFlag{Name: "set", Usage: "0 or 1 to set MIG mode, omit to query", Value: -1}},
			Action: actionModeToggle("mig mode",
				wire.EncodeGetMigModeReq,
				func(resp []byte) (bool, wire.CompletionCode, wire.SoftwareCode) {
					enabled, cc, _, sw := wire.DecodeGetMigModeResp(resp)
					return enabled, cc, sw
				},
				wire.EncodeSetMigModeReq,
			),
		},
		{
			Name:  "ecc-mode",
			Usage: "query or set ECC mode",
			Flags: []cli.Flag{cli.IntFlag{Name: "set", Usage: "0 or 1 to set ECC mode, omit to query", Value: -1}},
			Action: actionModeToggle("ecc mode",
				wire.EncodeGetEccModeReq,
				func(resp []byte) (bool, wire.CompletionCode, wire.SoftwareCode) {
					enabled, cc, _, sw := wire.DecodeGetEccModeResp(resp)
					return enabled, cc, sw
				},
				wire.EncodeSetEccModeReq,
			),
		},
		{
			Name:   "ecc-counts",
			Usage:  "read ECC error counts",
			Action: actionEccCounts,
		},
		{
			Name:   "edpp",
			Usage:  "read the programmable EDPp scaling factor",
			Action: actionEdpp,
		},
		{
			Name:      "clock-limit",
			Usage:     "read the min/max clock limit for a clock domain",
			ArgsUsage: "<graphics|memory>",
			Action:    actionClockLimit,
		},
		{
			Name:      "current-clock",
			Usage:     "read the current clock frequency for a clock domain",
			ArgsUsage: "<graphics|memory>",
			Action:    actionCurrentClock,
		},
		{
			Name:   "row-remap-state",
			Usage:  "read row-remapping state flags",
			Action: actionRowRemapState,
		},
	}
}

// clockID maps the CLI's "graphics"/"memory" argument to the wire clock
// domain id libnsm uses (0=graphics, 1=memory).
func clockID(c *cli.Context) (uint8, error) {
	if c.NArg() != 1 {
		return 0, failf(exitTransportOrEncode, "usage: <graphics|memory>")
	}
	switch c.Args().Get(0) {
	case "graphics":
		return 0, nil
	case "memory":
		return 1, nil
	default:
		return 0, failf(exitTransportOrEncode, "unknown clock domain %q (want graphics|memory)", c.Args().Get(0))
	}
}

// actionModeToggle builds the shared query/set shape mig-mode and
// ecc-mode share: query when --set is left at its default of -1, set when
// it's 0 or 1; any other value is a usage error.
func actionModeToggle(
	label string,
	genGet func(instanceID uint8) ([]byte, wire.SoftwareCode),
	decodeGet func(resp []byte) (bool, wire.CompletionCode, wire.SoftwareCode),
	genSet func(instanceID uint8, requestedMode uint8) ([]byte, wire.SoftwareCode),
) cli.ActionFunc {
	return func(c *cli.Context) error {
		cl, cleanup, err := dial(c)
		if err != nil {
			return err
		}
		defer cleanup()

		set := c.Int("set")
		if set != -1 {
			if set != 0 && set != 1 {
				return failf(exitTransportOrEncode, "--set must be 0 or 1")
			}
			req, sw := genSet(0, uint8(set))
			if sw != wire.SWSuccess {
				return failf(exitTransportOrEncode, "encode set request: %v", sw)
			}
			if _, err := cl.sendRecv(req); err != nil {
				return err
			}
			fmt.Printf("%s set to %d\n", label, set)
			return nil
		}

		req, sw := genGet(0)
		if sw != wire.SWSuccess {
			return failf(exitTransportOrEncode, "encode request: %v", sw)
		}
		resp, err := cl.sendRecv(req)
		if err != nil {
			return err
		}
		enabled, cc, sw := decodeGet(resp)
		if sw != wire.SWSuccess {
			return failf(exitTransportOrEncode, "decode response: %v", sw)
		}
		if cc != wire.Success {
			return failf(exitNonSuccessCompCode, "%s completion code: %v", label, cc)
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.Append([]string{label, fmt.Sprintf("%v", enabled)})
		table.Render()
		return nil
	}
}

func actionEccCounts(c *cli.Context) error {
	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, sw := wire.EncodeGetEccErrorCountsReq(0)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	counts, cc, _, sw := wire.DecodeGetEccErrorCountsResp(resp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "ecc-counts completion code: %v", cc)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Counter", "Value"})
	table.Append([]string{"SRAM Corrected", fmt.Sprintf("%d", counts.SRAMCorrected)})
	table.Append([]string{"SRAM Uncorrected (SECDED)", fmt.Sprintf("%d", counts.SRAMUncorrectedSECDED)})
	table.Append([]string{"SRAM Uncorrected (Parity)", fmt.Sprintf("%d", counts.SRAMUncorrectedParity)})
	table.Append([]string{"DRAM Corrected", fmt.Sprintf("%d", counts.DRAMCorrected)})
	table.Append([]string{"DRAM Uncorrected", fmt.Sprintf("%d", counts.DRAMUncorrected)})
	table.Render()
	return nil
}

func actionEdpp(c *cli.Context) error {
	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, sw := wire.EncodeGetProgrammableEDPpScalingFactorReq(0)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	f, cc, _, sw := wire.DecodeGetProgrammableEDPpScalingFactorResp(resp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "edpp completion code: %v", cc)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Append([]string{"Default", fmt.Sprintf("%d%%", f.Default)})
	table.Append([]string{"Maximum", fmt.Sprintf("%d%%", f.Maximum)})
	table.Append([]string{"Minimum", fmt.Sprintf("%d%%", f.Minimum)})
	table.Render()
	return nil
}

func actionClockLimit(c *cli.Context) error {
	id, err := clockID(c)
	if err != nil {
		return err
	}
	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, sw := wire.EncodeGetClockLimitReq(0, id)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	limit, cc, _, sw := wire.DecodeGetClockLimitResp(resp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "clock-limit completion code: %v", cc)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Append([]string{"Requested Min (MHz)", fmt.Sprintf("%d", limit.RequestedMin)})
	table.Append([]string{"Requested Max (MHz)", fmt.Sprintf("%d", limit.RequestedMax)})
	table.Append([]string{"Present Min (MHz)", fmt.Sprintf("%d", limit.PresentMin)})
	table.Append([]string{"Present Max (MHz)", fmt.Sprintf("%d", limit.PresentMax)})
	table.Render()
	return nil
}

func actionCurrentClock(c *cli.Context) error {
	id, err := clockID(c)
	if err != nil {
		return err
	}
	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, sw := wire.EncodeGetCurrentClockFrequencyReq(0, id)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	mhz, cc, _, sw := wire.DecodeGetCurrentClockFrequencyResp(resp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "current-clock completion code: %v", cc)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Append([]string{"Current Clock (MHz)", fmt.Sprintf("%d", mhz)})
	table.Render()
	return nil
}

func actionRowRemapState(c *cli.Context) error {
	cl, cleanup, err := dial(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, sw := wire.EncodeGetRowRemapStateFlagsReq(0)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "encode request: %v", sw)
	}
	resp, err := cl.sendRecv(req)
	if err != nil {
		return err
	}
	flags, cc, _, sw := wire.DecodeGetRowRemapStateFlagsResp(resp)
	if sw != wire.SWSuccess {
		return failf(exitTransportOrEncode, "decode response: %v", sw)
	}
	if cc != wire.Success {
		return failf(exitNonSuccessCompCode, "row-remap-state completion code: %v", cc)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Append([]string{"Row Remap State Flags", fmt.Sprintf("0x%02x", flags)})
	table.Render()
	return nil
}
