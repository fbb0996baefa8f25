// Package script loads Lua keyframe scripts that automate the fire
// controls. A script returns a table whose array part lists keyframes:
//
//	return {
//	  loop = 600,
//	  { frame = 1,   burnSpeed = 1.5 },
//	  { frame = 120, fireInner = rgb(255, 40, 0), playing = true },
//	  { frame = 300, reset = true, tessellation = 6 },
//	}
//
// Keyframe keys are frame, the color names (fireInner, smokeOuter, ...),
// burnSpeed, fireDensity, tessellation, playing, reset and loadScene.
// Anything else is rejected.
package script

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Shopify/go-lua"

	"blaze/fire/params"
)

var ErrScript = errors.New("script: invalid keyframe script")

// Keyframe is a set of control changes applied at one frame. Nil pointers
// leave the control untouched.
type Keyframe struct {
	Frame int64

	Colors       map[params.Field]params.RGB
	BurnSpeed    *float64
	FireDensity  *float64
	Tessellation *int
	Playing      *bool

	Reset     bool
	LoadScene bool
}

// Apply writes the keyframe into c. It reports whether the scene should be
// reloaded.
func (k Keyframe) Apply(c *params.Controls) (loadScene bool) {
	if k.Reset {
		c.Reset()
	}
	for _, f := range params.ColorFields {
		if v, ok := k.Colors[f]; ok {
			c.SetColor(f, v)
		}
	}
	if k.BurnSpeed != nil {
		c.SetBurnSpeed(*k.BurnSpeed)
	}
	if k.FireDensity != nil {
		c.SetFireDensity(*k.FireDensity)
	}
	if k.Tessellation != nil {
		c.SetTessellation(*k.Tessellation)
	}
	if k.Playing != nil {
		c.SetPlaying(*k.Playing)
	}
	return k.LoadScene
}

// Script is an ordered keyframe list with a cursor.
type Script struct {
	Name      string
	Keyframes []Keyframe

	// Loop, when positive, repeats the script every Loop frames.
	Loop int64

	next int
	last int64
}

// Due returns the keyframes whose frame has been reached, each exactly
// once per pass.
func (s *Script) Due(frame int64) []Keyframe {
	f := frame
	if s.Loop > 0 {
		f = (frame-1)%s.Loop + 1
	}
	if f < s.last {
		s.next = 0
	}
	s.last = f

	var out []Keyframe
	for s.next < len(s.Keyframes) && s.Keyframes[s.next].Frame <= f {
		out = append(out, s.Keyframes[s.next])
		s.next++
	}
	return out
}

// Rewind restarts the script.
func (s *Script) Rewind() {
	s.next = 0
	s.last = 0
}

// LoadFile runs the script at path.
func LoadFile(path string) (*Script, error) {
	state := newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return run(state, name)
}

// LoadString runs src as a script called name.
func LoadString(name, src string) (*Script, error) {
	state := newState()
	if err := lua.LoadBuffer(state, src, name, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return run(state, name)
}

func newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	state.Register("rgb", rgb)
	return state
}

// rgb(r, g, b) builds a color table.
func rgb(state *lua.State) int {
	r := lua.CheckNumber(state, 1)
	g := lua.CheckNumber(state, 2)
	b := lua.CheckNumber(state, 3)
	state.CreateTable(3, 0)
	for i, v := range []float64{r, g, b} {
		state.PushNumber(v)
		state.RawSetInt(-2, i+1)
	}
	return 1
}

func run(state *lua.State, name string) (*Script, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	defer state.Pop(1)
	if state.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("%w: script must return a table", ErrScript)
	}

	s := &Script{Name: name}
	top := state.AbsIndex(-1)

	state.Field(top, "loop")
	if !state.IsNil(-1) {
		n, ok := state.ToNumber(-1)
		if !ok || n < 0 {
			state.Pop(1)
			return nil, fmt.Errorf("%w: loop must be a non-negative number", ErrScript)
		}
		s.Loop = int64(n)
	}
	state.Pop(1)

	for i := 1; i <= state.RawLength(top); i++ {
		state.RawGetInt(top, i)
		k, err := readKeyframe(state, state.AbsIndex(-1))
		state.Pop(1)
		if err != nil {
			return nil, fmt.Errorf("%w: keyframe %d: %w", ErrScript, i, err)
		}
		s.Keyframes = append(s.Keyframes, k)
	}
	sort.SliceStable(s.Keyframes, func(a, b int) bool {
		return s.Keyframes[a].Frame < s.Keyframes[b].Frame
	})
	return s, nil
}

func readKeyframe(state *lua.State, index int) (Keyframe, error) {
	var k Keyframe
	if state.TypeOf(index) != lua.TypeTable {
		return k, errors.New("not a table")
	}
	haveFrame := false

	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) != lua.TypeString {
			state.Pop(2)
			return k, errors.New("keys must be strings")
		}
		key, _ := state.ToString(-2)
		if err := readField(state, &k, key); err != nil {
			state.Pop(2)
			return k, fmt.Errorf("%s: %w", key, err)
		}
		if key == "frame" {
			haveFrame = true
		}
		state.Pop(1)
	}
	if !haveFrame {
		return k, errors.New("missing frame")
	}
	return k, nil
}

// readField decodes the value on top of the stack into k.
func readField(state *lua.State, k *Keyframe, key string) error {
	switch key {
	case "frame":
		n, err := number(state)
		if err != nil {
			return err
		}
		if n < 1 {
			return errors.New("must be >= 1")
		}
		k.Frame = int64(n)
	case "burnSpeed":
		n, err := number(state)
		if err != nil {
			return err
		}
		k.BurnSpeed = &n
	case "fireDensity":
		n, err := number(state)
		if err != nil {
			return err
		}
		k.FireDensity = &n
	case "tessellation":
		n, err := number(state)
		if err != nil {
			return err
		}
		level := int(n)
		k.Tessellation = &level
	case "playing":
		b, err := boolean(state)
		if err != nil {
			return err
		}
		k.Playing = &b
	case "reset":
		b, err := boolean(state)
		if err != nil {
			return err
		}
		k.Reset = b
	case "loadScene":
		b, err := boolean(state)
		if err != nil {
			return err
		}
		k.LoadScene = b
	default:
		f, ok := params.FieldByName(key)
		if !ok || (&params.Snapshot{}).Color(f) == nil {
			return errors.New("unknown key")
		}
		c, err := color(state)
		if err != nil {
			return err
		}
		if k.Colors == nil {
			k.Colors = make(map[params.Field]params.RGB)
		}
		k.Colors[f] = c
	}
	return nil
}

func number(state *lua.State) (float64, error) {
	if state.TypeOf(-1) != lua.TypeNumber {
		return 0, errors.New("want a number")
	}
	n, _ := state.ToNumber(-1)
	return n, nil
}

func boolean(state *lua.State) (bool, error) {
	if state.TypeOf(-1) != lua.TypeBoolean {
		return false, errors.New("want a boolean")
	}
	return state.ToBoolean(-1), nil
}

func color(state *lua.State) (params.RGB, error) {
	var c params.RGB
	index := state.AbsIndex(-1)
	if state.TypeOf(index) != lua.TypeTable || state.RawLength(index) != 3 {
		return c, errors.New("want {r, g, b}")
	}
	for i := range c {
		state.RawGetInt(index, i+1)
		n, err := number(state)
		state.Pop(1)
		if err != nil {
			return c, err
		}
		c[i] = n
	}
	return c, nil
}
