// Package script reads stroke scripts: YAML event lists that stand in for
// a drawing host. A script sizes the canvas, names textures and feeds
// pointer samples, style changes and clears to an engine.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"wallpaint/internal/raster"
)

// ErrInvalidScript marks a script that parsed as YAML but cannot be
// replayed.
var ErrInvalidScript = errors.New("script: invalid")

// Op names an event kind.
type Op string

const (
	OpDown   Op = "down"
	OpMove   Op = "move"
	OpUp     Op = "up"
	OpTick   Op = "tick"
	OpStyle  Op = "style"
	OpClear  Op = "clear"
	OpResize Op = "resize"
)

// Script is one parsed stroke script.
//
//	name: swoosh
//	canvas: {width: 320, height: 200}
//	textures: {normal: brick_normal.png, diffuse: brick.png}
//	events:
//	  - {op: style, color: "#d00000", width: 20}
//	  - {op: down}
//	  - {op: move, x: 10, y: 10, at_ms: 0}
//	  - {op: move, x: 90, y: 40, at_ms: 20}
//	  - {op: up, at_ms: 30}
type Script struct {
	Name     string   `yaml:"name"`
	Canvas   Canvas   `yaml:"canvas"`
	Textures Textures `yaml:"textures"`
	Events   []Event  `yaml:"events"`
}

// Canvas overrides the configured canvas size when non-zero.
type Canvas struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Textures overrides the configured texture names when non-empty.
type Textures struct {
	Normal  string `yaml:"normal"`
	Diffuse string `yaml:"diffuse"`
}

// Event is one host action. Which fields matter depends on Op: x/y for
// move, color/width for style, width/height for resize. AtMS is the time
// since the script started; it never runs backwards, a smaller value
// repeats the previous time.
type Event struct {
	Op     Op      `yaml:"op"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	AtMS   int64   `yaml:"at_ms"`
	Color  string  `yaml:"color"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	Line int `yaml:"-"` // source line, for error messages
}

// UnmarshalYAML decodes an event and records its line.
func (ev *Event) UnmarshalYAML(node *yaml.Node) error {
	type plain Event
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*ev = Event(p)
	ev.Line = node.Line
	return nil
}

// Parse reads a script from r and checks every event.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
		}
		return nil, fmt.Errorf("script: parse: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseFile reads a script file. A script without a name is named after
// the file.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: read %s: %w", path, err)
	}
	s, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = stem(path)
	}
	return s, nil
}

// Validate reports the first event that cannot be replayed.
func (s *Script) Validate() error {
	if s.Canvas.Width < 0 || s.Canvas.Height < 0 {
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidScript, s.Canvas.Width, s.Canvas.Height)
	}
	for i, ev := range s.Events {
		if err := ev.validate(); err != nil {
			return fmt.Errorf("%w: event %d (line %d): %v", ErrInvalidScript, i, ev.Line, err)
		}
	}
	return nil
}

func (ev *Event) validate() error {
	switch ev.Op {
	case OpDown, OpMove, OpUp, OpTick, OpClear:
	case OpStyle:
		if ev.Color == "" && ev.Width == 0 {
			return errors.New("style sets neither color nor width")
		}
		if ev.Color != "" {
			if _, err := raster.ParseColor(ev.Color); err != nil {
				return err
			}
		}
	case OpResize:
		if ev.Width < 1 || ev.Height < 1 {
			return fmt.Errorf("resize to %vx%v", ev.Width, ev.Height)
		}
	case "":
		return errors.New("missing op")
	default:
		return fmt.Errorf("unknown op %q", ev.Op)
	}
	if ev.AtMS < 0 {
		return fmt.Errorf("negative at_ms %d", ev.AtMS)
	}
	return nil
}
