// Package settings stores user preferences in a small TOML file.
//
// The only preference is the day/night theme. It defaults to follow_system
// and ToggleTheme cycles it the way the theme switch does: night becomes day,
// anything else becomes night.
package settings
