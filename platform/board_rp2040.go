//go:build rp2040

package platform

const BoardName = "pico"
