package timespec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidFormat = errors.New("invalid time format")
	// ErrNoValidTimes: ningún horario sobrevivió la validación; la acción de guardado se rechaza entera.
	ErrNoValidTimes = errors.New("no valid reminder times")
)

// TimeSpec es una hora del día en reloj de 24h (HH:MM).
type TimeSpec struct {
	Hour   int
	Minute int
}

// FormatError indica qué valor fue rechazado.
type FormatError struct {
	Raw string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q (expected H:MM or HH:MM)", ErrInvalidFormat, e.Raw)
}

func (e *FormatError) Unwrap() error { return ErrInvalidFormat }

// Parse acepta exactamente "H:MM" o "HH:MM".
func Parse(raw string) (TimeSpec, error) {
	s := strings.TrimSpace(raw)

	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return TimeSpec{}, &FormatError{Raw: raw}
	}
	if !digits(hh) || !digits(mm) {
		return TimeSpec{}, &FormatError{Raw: raw}
	}

	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	if h > 23 || m > 59 {
		return TimeSpec{}, &FormatError{Raw: raw}
	}

	return TimeSpec{Hour: h, Minute: m}, nil
}

// MustParse es para tests y constantes.
func MustParse(raw string) TimeSpec {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// FilterValid descarta entradas inválidas o repetidas y devuelve cuántas se descartaron.
// El orden de las válidas se conserva.
func FilterValid(raws []string) ([]TimeSpec, int) {
	out := make([]TimeSpec, 0, len(raws))
	seen := make(map[TimeSpec]struct{}, len(raws))
	dropped := 0

	for _, raw := range raws {
		t, err := Parse(raw)
		if err != nil {
			dropped++
			continue
		}
		if _, dup := seen[t]; dup {
			dropped++
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out, dropped
}

// ValidOrError aplica FilterValid y devuelve ErrNoValidTimes si no queda nada.
// Una lista vacía de entrada es legal (sin recordatorios).
func ValidOrError(raws []string) ([]TimeSpec, int, error) {
	valid, dropped := FilterValid(raws)
	if len(raws) > 0 && len(valid) == 0 {
		return nil, dropped, ErrNoValidTimes
	}
	return valid, dropped, nil
}

func (t TimeSpec) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On devuelve el instante de este horario en el día calendario de day (misma zona).
func (t TimeSpec) On(day time.Time) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, t.Hour, t.Minute, 0, 0, day.Location())
}

// Next devuelve la próxima ocurrencia estrictamente posterior a now: hoy a esta hora,
// o mañana si ya pasó (o es exactamente now). El avance es por día calendario, no 24h fijas.
func (t TimeSpec) Next(now time.Time) time.Time {
	candidate := t.On(now)
	if !candidate.After(now) {
		y, mo, d := now.Date()
		candidate = time.Date(y, mo, d+1, t.Hour, t.Minute, 0, 0, now.Location())
	}
	return candidate
}

func (t TimeSpec) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeSpec) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Strings convierte a la representación canónica HH:MM.
func Strings(ts []TimeSpec) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.String())
	}
	return out
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
