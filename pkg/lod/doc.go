// Package lod holds the level-of-detail policy: zoom- and width-dependent
// rules deciding which entities are eligible for display and how much of
// their labels fits.
//
// Every function is pure and depends only on its arguments, so a render pass
// can apply the policy without any state. Visibility thresholds are
// monotonic in the zoom scale k: zooming in never hides an entity that was
// eligible further out, and label budgets never shrink.
package lod
