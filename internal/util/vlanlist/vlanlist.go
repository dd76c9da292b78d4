// Package vlanlist parses Cisco style VLAN lists such as "1,2,5-10".
package vlanlist

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	minVID = 1
	maxVID = 4094
)

// Parse expands a VLAN list into a sorted, de-duplicated slice of VIDs.
// Ranges are inclusive on both ends.
func Parse(list string) ([]int, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, fmt.Errorf("empty VLAN list")
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		start, err := parseVID(lo)
		if err != nil {
			return nil, err
		}
		end := start
		if isRange {
			end, err = parseVID(hi)
			if err != nil {
				return nil, err
			}
			if end < start {
				return nil, fmt.Errorf("invalid VLAN range %q: end before start", part)
			}
		}
		for vid := start; vid <= end; vid++ {
			seen[vid] = struct{}{}
		}
	}

	vids := make([]int, 0, len(seen))
	for vid := range seen {
		vids = append(vids, vid)
	}
	sort.Ints(vids)
	return vids, nil
}

func parseVID(s string) (int, error) {
	vid, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid VLAN id %q", s)
	}
	if vid < minVID || vid > maxVID {
		return 0, fmt.Errorf("VLAN id %d out of range %d-%d", vid, minVID, maxVID)
	}
	return vid, nil
}
