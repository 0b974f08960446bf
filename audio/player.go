// Package audio plays the game's sound effects through oto.
//
// Effects are synthesised once at startup and played fire-and-forget; Play
// never blocks on the device.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"github.com/brensch/snek-arcade/game"
)

var (
	ErrNotReady     = errors.New("audio device not ready")
	ErrUnknownSound = errors.New("unknown sound")
	ErrBusy         = errors.New("too many sounds playing")
)

// maxVoices caps overlapping effects so rapid eating does not clip.
const maxVoices = 4

type Player struct {
	ctx    *oto.Context
	ready  chan struct{}
	volume float64
	pcm    map[game.Sound][]byte
	voices atomic.Int32
}

// Open creates the oto context and pre-renders every effect. volume is
// clamped to [0,1].
func Open(volume float64) (*Player, error) {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("open audio context: %w", err)
	}
	p := &Player{
		ctx:    ctx,
		ready:  ready,
		volume: min(max(volume, 0), 1),
		pcm:    make(map[game.Sound][]byte, 3),
	}
	for _, kind := range []game.Sound{game.SoundEat, game.SoundPowerUp, game.SoundGameOver} {
		p.pcm[kind] = Synthesize(kind)
	}
	return p, nil
}

// Play starts kind in the background. Errors mean the sound was skipped.
func (p *Player) Play(kind game.Sound) error {
	select {
	case <-p.ready:
	default:
		return ErrNotReady
	}
	if err := p.ctx.Err(); err != nil {
		return fmt.Errorf("audio context: %w", err)
	}
	pcm, ok := p.pcm[kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSound, kind)
	}
	if p.voices.Add(1) > maxVoices {
		p.voices.Add(-1)
		return ErrBusy
	}

	go func() {
		defer p.voices.Add(-1)
		player := p.ctx.NewPlayer(bytes.NewReader(pcm))
		player.SetVolume(p.volume)
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		_ = player.Close()
	}()
	return nil
}
