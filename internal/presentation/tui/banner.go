package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs a professional ASCII art banner for Crossflow.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Cyan/Indigo)
	s1 := termenv.String("                          __ _               ").Foreground(p.Color("#67e8f9"))
	s2 := termenv.String("  ___ _ __ ___  ___ ___ / _| | _____      __").Foreground(p.Color("#22d3ee"))
	s3 := termenv.String(" / __| '__/ _ \\/ __/ __| |_| |/ _ \\ \\ /\\ / /").Foreground(p.Color("#38bdf8"))
	s4 := termenv.String("| (__| | | (_) \\__ \\__ \\  _| | (_) \\ V  V / ").Foreground(p.Color("#60a5fa"))
	s5 := termenv.String(" \\___|_|  \\___/|___/___/_| |_|\\___/ \\_/\\_/  ").Foreground(p.Color("#818cf8"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}
