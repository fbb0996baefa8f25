// Package uniform describes the boundary between host code and the fire
// shader program: named values that stay constant for one draw call.
package uniform

import "github.com/go-gl/mathgl/mgl32"

// Name is a shader-facing uniform name.
type Name string

const (
	TimeVs     Name = "u_TimeVs"
	TimeFs     Name = "u_TimeFs"
	CameraPos  Name = "u_CameraPos"
	Model      Name = "u_Model"
	ModelInvTr Name = "u_ModelInvTr"
	ViewProj   Name = "u_ViewProj"

	SmokeInnerColor  Name = "u_SmokeInnerColor"
	SmokeMiddleColor Name = "u_SmokeMiddleColor"
	SmokeOuterColor  Name = "u_SmokeOuterColor"
	FireInnerColor   Name = "u_FireInnerColor"
	FireMiddleColor  Name = "u_FireMiddleColor"
	FireOuterColor   Name = "u_FireOuterColor"

	BurnSpeed   Name = "u_BurnSpeed"
	FireDensity Name = "u_FireDensity"

	IsMusicPlaying Name = "u_IsMusicPlaying"
	AudioHighFreq  Name = "u_AudioHighFreq"
	AudioLowFreq   Name = "u_AudioLowFreq"
)

// Sink accepts uniform updates. Implementations never report failure for a
// single push; program setup errors surface when the program is created.
type Sink interface {
	SetFloat(name Name, v float32)
	SetInt(name Name, v int64)
	SetVec3(name Name, v mgl32.Vec3)
	SetVec4(name Name, v mgl32.Vec4)
	SetMat4(name Name, v mgl32.Mat4)
}

// Discard is a Sink that drops every update.
var Discard Sink = discard{}

type discard struct{}

func (discard) SetFloat(Name, float32)   {}
func (discard) SetInt(Name, int64)       {}
func (discard) SetVec3(Name, mgl32.Vec3) {}
func (discard) SetVec4(Name, mgl32.Vec4) {}
func (discard) SetMat4(Name, mgl32.Mat4) {}
