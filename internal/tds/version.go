package tds

import (
	"fmt"
	"strings"
)

// Version is the TDS protocol version negotiated at login, as carried on the
// wire. Later versions compare greater.
type Version uint32

const (
	Version7_0  Version = 0x70000000
	Version7_1  Version = 0x71000001
	Version7_2  Version = 0x72090002
	Version7_3A Version = 0x730A0003
	Version7_3B Version = 0x730B0003
	Version7_4  Version = 0x74000004
)

var versionNames = map[Version]string{
	Version7_0:  "7_0",
	Version7_1:  "7_1",
	Version7_2:  "7_2",
	Version7_3A: "7_3_A",
	Version7_3B: "7_3_B",
	Version7_4:  "7_4",
}

// ParseVersion accepts tags such as "7_2", "7.2", "7_3_A" or "7.3B"
func ParseVersion(s string) (Version, error) {
	norm := strings.ToUpper(strings.NewReplacer(".", "", "_", "", " ", "").Replace(s))
	for v, name := range versionNames {
		if strings.ReplaceAll(name, "_", "") == norm {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown TDS version %q", s)
}

func (v Version) String() string {
	if name, ok := versionNames[v]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(v))
}

// AtLeast7_2 reports whether v uses the 7.2+ layouts (32-bit user types,
// multi-part table names, 64-bit DONE row counts)
func (v Version) AtLeast7_2() bool {
	return v >= Version7_2
}
