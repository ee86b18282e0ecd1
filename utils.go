package main

import "hash/fnv"

// cursorPalette are the presence display colors. The hex values travel in
// the presence record; terminals render the nearest ANSI color below.
var cursorPalette = [numColors]string{
	"#e11d48", // red
	"#16a34a", // green
	"#ca8a04", // yellow
	"#2563eb", // blue
	"#9333ea", // magenta
	"#0891b2", // cyan
	"#f97316", // orange
	"#64748b", // slate
}

var ansiByColor = map[string]string{
	"#e11d48": "\x1b[31m",
	"#16a34a": "\x1b[32m",
	"#ca8a04": "\x1b[33m",
	"#2563eb": "\x1b[34m",
	"#9333ea": "\x1b[35m",
	"#0891b2": "\x1b[36m",
	"#f97316": "\x1b[91m",
	"#64748b": "\x1b[90m",
}

const colorReset = "\x1b[0m"

// presenceColor assigns a stable palette color to a user id.
func presenceColor(userID string) string {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return cursorPalette[h.Sum32()%numColors]
}

func ansiForColor(hex string) string {
	if code, ok := ansiByColor[hex]; ok {
		return code
	}
	return "\x1b[37m"
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
