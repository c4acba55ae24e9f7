// Package access holds the membership hierarchy and the single access gate
// every route and service consults.
package access

import (
	"fmt"
	"strings"
)

const (
	LevelFundador = 0
	LevelIniciado = 1
	LevelAcolito  = 2
	LevelWarrior  = 3
	LevelLord     = 4
	LevelDarth    = 5
	LevelMaestro  = 6

	MinLevel = LevelFundador
	MaxLevel = LevelMaestro

	// DefaultLevel is assigned to new accounts.
	DefaultLevel = LevelIniciado
)

// LevelInfo describes one rank of the hierarchy.
type LevelInfo struct {
	Level     int    `json:"level"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Dashboard string `json:"dashboard"`
}

var levels = [...]LevelInfo{
	{LevelFundador, "Fundador", "fundador", "/dashboard/fundador"},
	{LevelIniciado, "Iniciado", "iniciado", "/dashboard/iniciado"},
	{LevelAcolito, "Acólito", "acolito", "/dashboard/acolito"},
	{LevelWarrior, "Warrior", "warrior", "/dashboard/warrior"},
	{LevelLord, "Lord", "lord", "/dashboard/lord"},
	{LevelDarth, "Darth", "darth", "/dashboard/darth"},
	{LevelMaestro, "Maestro", "maestro", "/dashboard/maestro"},
}

// Levels returns a copy of the hierarchy ordered by level.
func Levels() []LevelInfo {
	out := make([]LevelInfo, len(levels))
	copy(out, levels[:])
	return out
}

// ValidLevel reports whether level is inside 0..6.
func ValidLevel(level int) bool {
	return level >= MinLevel && level <= MaxLevel
}

// Info returns the table row for level.
func Info(level int) (LevelInfo, bool) {
	if !ValidLevel(level) {
		return LevelInfo{}, false
	}
	return levels[level], true
}

// Name returns the display name of level, or "Desconocido".
func Name(level int) string {
	if info, ok := Info(level); ok {
		return info.Name
	}
	return "Desconocido"
}

// ParseLevel resolves a slug (case-insensitive) or a display name to its level.
func ParseLevel(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, info := range levels {
		if s == info.Slug || s == strings.ToLower(info.Name) {
			return info.Level, nil
		}
	}
	return 0, fmt.Errorf("nivel desconocido: %q", s)
}
