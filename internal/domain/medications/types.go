package medications

// Frequency es la frecuencia declarada por el usuario. Es informativa: los horarios
// de recordatorio se declaran aparte y no se derivan de ella.
// @Enum once, twice, thrice, four-times, as-needed
type Frequency string

const (
	FrequencyOnce      Frequency = "once"
	FrequencyTwice     Frequency = "twice"
	FrequencyThrice    Frequency = "thrice"
	FrequencyFourTimes Frequency = "four-times"
	FrequencyAsNeeded  Frequency = "as-needed"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyTwice, FrequencyThrice, FrequencyFourTimes, FrequencyAsNeeded:
		return true
	}
	return false
}

// DosesPerDay sugiere cuántos horarios espera la frecuencia (0 = sin sugerencia).
func (f Frequency) DosesPerDay() int {
	switch f {
	case FrequencyOnce:
		return 1
	case FrequencyTwice:
		return 2
	case FrequencyThrice:
		return 3
	case FrequencyFourTimes:
		return 4
	}
	return 0
}
