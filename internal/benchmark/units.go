package benchmark

import (
	"fmt"
	"time"
)

// Unit is one rung of a Ladder: magnitudes at or above Threshold are
// divided by it and rendered with Suffix.
type Unit struct {
	Threshold float64
	Suffix    string
}

// Ladder is an ordered list of units with ascending thresholds. The first
// unit is the base unit.
type Ladder []Unit

// TimeLadder scales seconds.
var TimeLadder = Ladder{
	{1e-9, "ns"},
	{1e-6, "µs"},
	{1e-3, "ms"},
	{1, "s"},
	{60, "m"},
	{3600, "h"},
	{86400, "d"},
	{604800, "w"},
}

var byteUnits = []string{"KB", "MB", "GB", "TB", "PB", "EB", "ZB"}

// Format renders v in the largest unit whose threshold does not exceed it,
// with 3 significant figures. Values below the base threshold use the base unit.
func (l Ladder) Format(v float64) string {
	if len(l) == 0 {
		return fmt.Sprintf("%.3g", v)
	}
	selected := l[0]
	for _, u := range l {
		if v < u.Threshold {
			break
		}
		selected = u
	}
	return fmt.Sprintf("%.3g%s", v/selected.Threshold, selected.Suffix)
}

// FormatSeconds formats a duration expressed in seconds.
func FormatSeconds(seconds float64) string {
	return TimeLadder.Format(seconds)
}

// FormatDuration formats d using the time ladder.
func FormatDuration(d time.Duration) string {
	return FormatSeconds(d.Seconds())
}

// FormatBytes formats a byte count. Counts below 1024 are printed exactly;
// larger counts are divided by 1024 until they drop below 1024, stopping at ZB.
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%dB", n)
	}
	v := float64(n)
	for _, suffix := range byteUnits {
		v /= 1024
		if v < 1024 {
			return fmt.Sprintf("%.3g%s", v, suffix)
		}
	}
	return fmt.Sprintf("%.3g%s", v, byteUnits[len(byteUnits)-1])
}
