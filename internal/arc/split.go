package arc

// phase is the state of a pass as its elevations are walked in time order:
// RISING until the highest sample, PEAK at it, SETTING afterwards.
type phase int

const (
	phaseRising phase = iota
	phasePeak
	phaseSetting
)

// passMachine labels each sample of a pass with its phase.
type passMachine struct {
	elev  []float64
	peak  int
	state phase

	rising, setting int // samples seen in each phase
}

func newPassMachine(elev []float64) *passMachine {
	peak := 0
	for i, e := range elev {
		if e > elev[peak] {
			peak = i
		}
	}
	return &passMachine{elev: elev, peak: peak}
}

// step advances the machine over sample i.
func (m *passMachine) step(i int) {
	switch m.state {
	case phaseRising:
		if i == m.peak {
			m.state = phasePeak
			return
		}
		m.rising++
	case phasePeak, phaseSetting:
		m.state = phaseSetting
		m.setting++
	}
}

// keep runs the machine and returns the half-open range of samples to retain.
// A pass that went through RISING and SETTING is split at the peak and the
// side spanning more elevation is kept, the peak sample included. On equal
// spans the setting side wins.
func (m *passMachine) keep() (lo, hi int) {
	n := len(m.elev)
	for i := 0; i < n; i++ {
		m.step(i)
	}

	if m.rising == 0 || m.setting == 0 {
		return 0, n
	}

	risingSpan := m.elev[m.peak] - m.elev[0]
	settingSpan := m.elev[m.peak] - m.elev[n-1]
	if risingSpan > settingSpan {
		return 0, m.peak + 1
	}
	return m.peak, n
}
