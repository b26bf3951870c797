// Package pack implements the two label collision-avoidance algorithms of
// the timeline.
//
// [Lanes] assigns interval entities (species lifespans) to horizontal lanes
// so that no two intervals in the same lane overlap. It runs once over the
// full dataset; the result is stored on the prepared entities and never
// recomputed.
//
// [Rows] assigns point-event labels to vertical rows from their current
// pixel positions. Positions change with every zoom or pan, so Rows is a
// pure function re-run from scratch on every render pass. It processes
// events in input order and never re-sorts by position, which keeps the
// assignment deterministic for a given input.
//
// Both algorithms are greedy and order-sensitive.
package pack
