package sectoralarm

import (
	"fmt"
	"strings"
)

// ArmMode is the ArmCmd value sent to /Panel/ArmPanel.
type ArmMode string

const (
	ArmPartial ArmMode = "Partial"
	ArmTotal   ArmMode = "Total"
	ArmDisarm  ArmMode = "Disarm"
)

// ArmInfo describes an arm mode in terms the CLI needs.
type ArmInfo struct {
	Mode ArmMode
	Name string // lower-case name accepted on the command line
	Verb string // past tense used in human output
}

var armInfos = map[string]ArmInfo{
	"partial": {Mode: ArmPartial, Name: "partial", Verb: "partially armed"},
	"total":   {Mode: ArmTotal, Name: "total", Verb: "fully armed"},
	"disarm":  {Mode: ArmDisarm, Name: "disarm", Verb: "disarmed"},
}

// ParseArmMode looks up a mode by its command-line name or its ArmCmd value.
func ParseArmMode(name string) (ArmInfo, error) {
	if strings.TrimSpace(name) == "" {
		return ArmInfo{}, fmt.Errorf("arm mode is required")
	}
	info, ok := armInfos[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ArmInfo{}, fmt.Errorf("unsupported arm mode: %q", name)
	}
	return info, nil
}
