package main

import (
	"fmt"
	"strconv"
	"strings"
)

// deviceSeed is one operator-supplied (uuid, eid) pair identifying a
// device to register at startup. Real deployments would discover these
// from the object-bus inventory named in nsm/publish's contract; nsmd
// itself stays a thin wiring shell and takes them as flags instead.
type deviceSeed struct {
	uuid string
	eid  uint8
}

func parseDeviceSeeds(values []string) ([]deviceSeed, error) {
	seeds := make([]deviceSeed, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		uuid, eidStr, ok := strings.Cut(v, "=")
		if !ok || uuid == "" || eidStr == "" {
			return nil, fmt.Errorf("invalid --device %q, want uuid=eid", v)
		}
		eid, err := strconv.ParseUint(eidStr, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid --device %q: eid: %w", v, err)
		}
		if seen[uuid] {
			return nil, fmt.Errorf("duplicate --device uuid %q", uuid)
		}
		seen[uuid] = true
		seeds = append(seeds, deviceSeed{uuid: uuid, eid: uint8(eid)})
	}
	return seeds, nil
}
