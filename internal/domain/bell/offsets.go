package bell

import (
	"slices"
	"time"
)

// OffsetTable maps an exam kind and slot to the ring offsets applied to the slot's base time.
type OffsetTable map[Kind]map[int][]time.Duration

// DefaultOffsets returns the offset table used by the trigger loop and the reports.
func DefaultOffsets() OffsetTable {
	midSem := []time.Duration{
		0,
		5 * time.Minute,
		15 * time.Minute,
		2*time.Hour + 5*time.Minute,
		2*time.Hour + 15*time.Minute,
	}

	endSem := []time.Duration{
		0,
		5 * time.Minute,
		15 * time.Minute,
		3*time.Hour + 5*time.Minute,
		3*time.Hour + 15*time.Minute,
	}

	table := OffsetTable{
		KindMidSem: make(map[int][]time.Duration, MaxSlot),
		KindEndSem: make(map[int][]time.Duration, MaxSlot),
	}

	for slot := MinSlot; slot <= MaxSlot; slot++ {
		table[KindMidSem][slot] = slices.Clone(midSem)
		table[KindEndSem][slot] = slices.Clone(endSem)
	}

	return table
}

// Expand returns the ring times of one slot: base time plus every offset,
// wrapped at midnight, sorted ascending and without duplicates.
// An unknown kind or slot yields an empty result.
func (t OffsetTable) Expand(kind Kind, slot int, base TimeOfDay) []TimeOfDay {
	offsets := t[kind][slot]
	times := make([]TimeOfDay, 0, len(offsets))

	for _, offset := range offsets {
		times = append(times, base.Add(offset))
	}

	slices.Sort(times)

	return slices.Compact(times)
}

// Instants returns the union of ring times of every slot of a date, sorted and deduplicated.
func (t OffsetTable) Instants(slots SlotSchedule) []TimeOfDay {
	var times []TimeOfDay

	for _, slot := range slots.Slots() {
		event := slots[slot]
		times = append(times, t.Expand(event.Kind, slot, event.BaseTime)...)
	}

	slices.Sort(times)

	return slices.Compact(times)
}
