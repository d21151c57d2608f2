package cem

import "math"

// Physical constants of the transport formulation.
const (
	// transportCoeff is the deep-water CERC coefficient relating wave
	// height, period and angle to a volumetric alongshore flux,
	// m^(3/5) s^(-6/5).
	transportCoeff = 0.34

	// shorefaceSlope is the fixed slope of the active shoreface between
	// the shoreline and the shoreface toe.
	shorefaceSlope = 0.01

	sedimentDensity  = 2650.0 // kg m-3, quartz
	sedimentPorosity = 0.4

	secondsPerDay = 86400.0
)

// step advances the coastline by dt days. The wave angle is either the held
// external value, the fixed configured value, or a fresh climate draw.
func (m *Model) step(dt float64) {
	alpha := m.waveAngle
	if m.cfg.Waves.Stochastic && !m.waveAngleHeld {
		alpha = m.drawWaveAngle()
		m.waveAngle = alpha
	}

	shadow := m.shadowMask(alpha)

	// q[j] is the volumetric flux through the boundary between columns
	// j-1 and j, positive toward increasing j. The lateral boundaries are
	// closed, so q[0] and q[cols] stay zero and the domain conserves
	// sediment volume.
	q := make([]float64, m.cols+1)
	amp := transportCoeff * math.Pow(m.waveHeight, 2.4) * math.Pow(m.wavePeriod, 0.2)
	for j := 0; j < m.cols-1; j++ {
		if shadow[j] || shadow[j+1] {
			continue
		}
		local := math.Atan2(m.shoreline[j+1]-m.shoreline[j], m.dx)
		rel := alpha - local
		if math.Abs(rel) >= math.Pi/2 {
			continue
		}
		q[j+1] = amp * math.Pow(math.Cos(rel), 1.2) * math.Sin(rel)
	}

	closure := m.cfg.Sediment.ShorefaceDepth + m.cfg.Sediment.BermHeight
	dts := dt * secondsPerDay
	maxShift := m.dx / 4
	limit := float64(m.rows) * m.dx

	for j := 0; j < m.cols; j++ {
		dv := (q[j] - q[j+1]) * dts
		dv += m.columnBedload(j) * dts / (sedimentDensity * (1 - sedimentPorosity))

		ds := dv / (m.dx * closure)
		// Stability clamp: a column may not move more than a quarter
		// cell per step.
		if ds > maxShift {
			ds = maxShift
		} else if ds < -maxShift {
			ds = -maxShift
		}

		s := m.shoreline[j] + ds
		if s < 0 {
			s = 0
		} else if s > limit {
			s = limit
		}
		m.shoreline[j] = s
	}

	m.derive()
}

// drawWaveAngle samples the approach angle from the two-parameter wave
// climate: HighFraction selects the high-angle band (above 45 degrees),
// Asymmetry selects the side the waves arrive from.
func (m *Model) drawWaveAngle() float64 {
	a := math.Pi / 4 * m.rng.Float64()
	if m.rng.Float64() < m.cfg.Waves.HighFraction {
		a += math.Pi / 4
	}
	if m.rng.Float64() >= m.cfg.Waves.Asymmetry {
		a = -a
	}
	return a
}

// shadowMask marks the columns whose shoreline lies in the geometric
// shadow of an updrift column for waves approaching at angle alpha. A
// shadowed column receives no wave energy this step.
func (m *Model) shadowMask(alpha float64) []bool {
	mask := make([]bool, m.cols)

	ta := math.Tan(math.Abs(alpha))
	if ta < 1e-6 {
		// Shore-normal waves cast no shadow.
		return mask
	}

	dir := 1 // updrift columns sit at lower indices for positive alpha
	if alpha < 0 {
		dir = -1
	}

	for j := range mask {
		for k := j - dir; k >= 0 && k < m.cols; k -= dir {
			d := float64((j-k)*dir) * m.dx
			if m.shoreline[k] >= m.shoreline[j]+d/ta {
				mask[j] = true
				break
			}
		}
	}

	return mask
}

// columnBedload sums the bedload input rate over a column, kg/s.
func (m *Model) columnBedload(j int) float64 {
	var total float64
	for r := 0; r < m.rows; r++ {
		total += m.bedload[r*m.cols+j]
	}
	return total
}

// derive recomputes the per-cell output fields from the shoreline. Land
// cells sit at berm height; water cells deepen linearly across the
// shoreface, then follow the shelf slope.
func (m *Model) derive() {
	toe := m.cfg.Sediment.ShorefaceDepth / shorefaceSlope

	for r := 0; r < m.rows; r++ {
		y := (float64(r) + 0.5) * m.dx
		for j := 0; j < m.cols; j++ {
			i := r*m.cols + j
			dist := y - m.shoreline[j]
			switch {
			case dist <= 0:
				m.depth[i] = 0
				m.elevation[i] = m.cfg.Sediment.BermHeight
			case dist < toe:
				m.depth[i] = dist * shorefaceSlope
				m.elevation[i] = -m.depth[i]
			default:
				m.depth[i] = m.cfg.Sediment.ShorefaceDepth + (dist-toe)*m.cfg.Sediment.ShelfSlope
				m.elevation[i] = -m.depth[i]
			}
		}
	}
}
