package audio

import (
	"math"

	"github.com/brensch/snek-arcade/game"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	frameBytes   = 4 * ChannelCount // float32 per channel
)

// Synthesize renders the PCM for kind as interleaved stereo float32 LE.
// It returns nil for kinds it does not know.
func Synthesize(kind game.Sound) []byte {
	switch kind {
	case game.SoundEat:
		return synthEat()
	case game.SoundPowerUp:
		return synthPowerUp()
	case game.SoundGameOver:
		return synthGameOver()
	}
	return nil
}

// synthEat: short upward chirp.
func synthEat() []byte {
	n := int(0.08 * SampleRate)
	buf := make([]byte, n*frameBytes)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		p := float64(i) / float64(n)
		env := envelope(p, 0.02, 0.3)
		freq := 520 + 640*p
		s := fmTone(t, freq, 2.0, 2.5*env)*env*0.45 + math.Sin(2*math.Pi*freq*3*t)*env*0.05
		putFrame(buf, i, saturate(s))
	}
	return buf
}

// synthPowerUp: rising major arpeggio, C5 E5 G5 C6.
func synthPowerUp() []byte {
	notes := []float64{523.25, 659.25, 783.99, 1046.5}
	noteLen := SampleRate * 70 / 1000
	total := len(notes)*noteLen + int(0.15*SampleRate)
	mix := make([]float64, total)
	for ni, freq := range notes {
		start := ni * noteLen
		dur := total - start
		for j := 0; j < dur; j++ {
			t := float64(start+j) / SampleRate
			env := envelope(float64(j)/float64(dur), 0.01, 0.4)
			mix[start+j] += fmTone(t, freq, 2.76, 4.0*env) * env * 0.3
		}
	}
	return render(mix)
}

// synthGameOver: three falling notes, E4 C4 A3, with a slight droop.
func synthGameOver() []byte {
	n := int(0.7 * SampleRate)
	notes := []struct{ freq, onset float64 }{
		{329.63, 0.00},
		{261.63, 0.15},
		{220.00, 0.30},
	}
	mix := make([]float64, n)
	for _, note := range notes {
		start := int(note.onset * SampleRate)
		for i := start; i < n; i++ {
			t := float64(i) / SampleRate
			p := float64(i-start) / float64(n-start)
			env := envelope(p, 0.01, 0.5)
			freq := note.freq * (1 - p*0.03)
			mix[i] += fmTone(t, freq, 2.0, 1.8*env)*env*0.28 + math.Sin(math.Pi*freq*t)*env*0.08
		}
	}
	return render(mix)
}

func render(mix []float64) []byte {
	buf := make([]byte, len(mix)*frameBytes)
	for i, s := range mix {
		putFrame(buf, i, saturate(s))
	}
	return buf
}

// envelope is a linear attack, hold and linear release over progress p in [0,1].
func envelope(p, attack, release float64) float64 {
	switch {
	case p < attack:
		return p / attack
	case p > 1-release:
		return math.Max(0, (1-p)/release)
	default:
		return 1
	}
}

func fmTone(t, carrier, ratio, index float64) float64 {
	mod := math.Sin(2 * math.Pi * carrier * ratio * t)
	return math.Sin(2*math.Pi*carrier*t + index*mod)
}

// saturate soft-clips into [-1,1].
func saturate(x float64) float64 {
	return math.Tanh(x)
}

// putFrame writes sample to both channels of frame i.
func putFrame(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	for ch := 0; ch < ChannelCount; ch++ {
		off := i*frameBytes + ch*4
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
		buf[off+2] = byte(v >> 16)
		buf[off+3] = byte(v >> 24)
	}
}
