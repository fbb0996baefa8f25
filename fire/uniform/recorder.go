package uniform

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Push is one recorded uniform update. Value holds float32, int64,
// mgl32.Vec3, mgl32.Vec4 or mgl32.Mat4.
type Push struct {
	Name  Name
	Value any
}

func (p Push) String() string {
	return fmt.Sprintf("%s=%v", p.Name, p.Value)
}

// Recorder is a Sink that keeps every update in order. It optionally
// forwards to another Sink so it can sit in front of a real program.
type Recorder struct {
	Next Sink

	pushes []Push
}

func (r *Recorder) record(name Name, v any) {
	r.pushes = append(r.pushes, Push{Name: name, Value: v})
}

func (r *Recorder) SetFloat(name Name, v float32) {
	r.record(name, v)
	if r.Next != nil {
		r.Next.SetFloat(name, v)
	}
}

func (r *Recorder) SetInt(name Name, v int64) {
	r.record(name, v)
	if r.Next != nil {
		r.Next.SetInt(name, v)
	}
}

func (r *Recorder) SetVec3(name Name, v mgl32.Vec3) {
	r.record(name, v)
	if r.Next != nil {
		r.Next.SetVec3(name, v)
	}
}

func (r *Recorder) SetVec4(name Name, v mgl32.Vec4) {
	r.record(name, v)
	if r.Next != nil {
		r.Next.SetVec4(name, v)
	}
}

func (r *Recorder) SetMat4(name Name, v mgl32.Mat4) {
	r.record(name, v)
	if r.Next != nil {
		r.Next.SetMat4(name, v)
	}
}

// Pushes returns the updates recorded so far.
func (r *Recorder) Pushes() []Push {
	out := make([]Push, len(r.pushes))
	copy(out, r.pushes)
	return out
}

// Len returns the number of recorded updates.
func (r *Recorder) Len() int { return len(r.pushes) }

// Names returns the names of the recorded updates, in order.
func (r *Recorder) Names() []Name {
	out := make([]Name, len(r.pushes))
	for i, p := range r.pushes {
		out[i] = p.Name
	}
	return out
}

// Last returns the most recent update for name.
func (r *Recorder) Last(name Name) (Push, bool) {
	for i := len(r.pushes) - 1; i >= 0; i-- {
		if r.pushes[i].Name == name {
			return r.pushes[i], true
		}
	}
	return Push{}, false
}

// Reset drops the recorded updates.
func (r *Recorder) Reset() { r.pushes = r.pushes[:0] }

// Trace renders the recorded updates one per line.
func (r *Recorder) Trace() string {
	var b strings.Builder
	for _, p := range r.pushes {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	return b.String()
}
