// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"fmt"
	"slices"

	"github.com/sysroute/sysroute/lib/ref"
)

// CanisterIDRange is an inclusive range of canister ids.
type CanisterIDRange struct {
	Start ref.CanisterID `json:"start" yaml:"start"`
	End   ref.CanisterID `json:"end" yaml:"end"`
}

// Contains reports whether p lies within the range.
func (r CanisterIDRange) Contains(p ref.PrincipalID) bool {
	return r.Start.Principal().Compare(p) <= 0 && p.Compare(r.End.Principal()) <= 0
}

// String renders the range as "start..end".
func (r CanisterIDRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// RouteEntry assigns a range to its owning subnet.
type RouteEntry struct {
	Range  CanisterIDRange
	Subnet ref.SubnetID
}

// RoutingTable maps disjoint canister id ranges to owning subnets. The
// zero value is an empty table. Entries are kept sorted by range start.
//
// A RoutingTable is not safe for concurrent mutation. Once it is part
// of a published snapshot it is only read.
type RoutingTable struct {
	entries []RouteEntry
}

// Insert assigns a range to a subnet. Returns an error if the range is
// inverted or overlaps a range already in the table.
func (t *RoutingTable) Insert(r CanisterIDRange, subnet ref.SubnetID) error {
	if r.Start.Compare(r.End) > 0 {
		return fmt.Errorf("invalid range %s: start is after end", r)
	}

	// Position of the first entry starting after r.Start.
	index, _ := slices.BinarySearchFunc(t.entries, r.Start, func(entry RouteEntry, start ref.CanisterID) int {
		if entry.Range.Start.Compare(start) <= 0 {
			return -1
		}
		return 1
	})
	if index > 0 {
		previous := t.entries[index-1]
		if previous.Range.End.Compare(r.Start) >= 0 {
			return fmt.Errorf("range %s overlaps %s owned by subnet %s", r, previous.Range, previous.Subnet)
		}
	}
	if index < len(t.entries) {
		next := t.entries[index]
		if r.End.Compare(next.Range.Start) >= 0 {
			return fmt.Errorf("range %s overlaps %s owned by subnet %s", r, next.Range, next.Subnet)
		}
	}

	t.entries = slices.Insert(t.entries, index, RouteEntry{Range: r, Subnet: subnet})
	return nil
}

// Route returns the subnet owning p. A principal outside every range
// still routes when it is itself the id of a subnet that owns a range:
// subnets are addressable by their own id. The boolean is false when
// no subnet owns p.
func (t *RoutingTable) Route(p ref.PrincipalID) (ref.SubnetID, bool) {
	// Last entry whose start is <= p.
	index, _ := slices.BinarySearchFunc(t.entries, p, func(entry RouteEntry, target ref.PrincipalID) int {
		if entry.Range.Start.Principal().Compare(target) <= 0 {
			return -1
		}
		return 1
	})
	if index > 0 && t.entries[index-1].Range.Contains(p) {
		return t.entries[index-1].Subnet, true
	}

	candidate := ref.NewSubnetID(p)
	for _, entry := range t.entries {
		if entry.Subnet == candidate {
			return candidate, true
		}
	}
	return ref.SubnetID{}, false
}

// Entries returns a copy of the table's entries in range order.
func (t *RoutingTable) Entries() []RouteEntry {
	return slices.Clone(t.entries)
}

// Len returns the number of ranges in the table.
func (t *RoutingTable) Len() int {
	return len(t.entries)
}

// Subnets returns the distinct owning subnets in ascending id order.
func (t *RoutingTable) Subnets() []ref.SubnetID {
	subnets := make([]ref.SubnetID, 0, len(t.entries))
	for _, entry := range t.entries {
		subnets = append(subnets, entry.Subnet)
	}
	slices.SortFunc(subnets, ref.SubnetID.Compare)
	return slices.Compact(subnets)
}
