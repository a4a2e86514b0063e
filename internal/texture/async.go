package texture

import (
	"context"
	"image"
)

// LoadFunc loads one texture. LoadTexture and (*Cache).Load both fit.
type LoadFunc func(name string) (*image.NRGBA, error)

// Pending is a texture that is being loaded in the background.
type Pending struct {
	done chan struct{}
	img  *image.NRGBA
	err  error
}

// LoadAsync starts loading name on a new goroutine.
func LoadAsync(load LoadFunc, name string) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.img, p.err = load(name)
	}()
	return p
}

// Done is closed once loading has finished, successfully or not.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the texture is loaded or ctx ends.
func (p *Pending) Wait(ctx context.Context) (*image.NRGBA, error) {
	select {
	case <-p.done:
		return p.img, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
