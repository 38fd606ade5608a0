// Package sample bundles a simulated prescription table.
package sample

import (
	_ "embed"
)

// Name is the file name the bundled table is written and displayed as.
const Name = "模擬處方資料.csv"

//go:embed prescriptions.csv
var data []byte

// Bytes returns a copy of the bundled CSV.
func Bytes() []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
