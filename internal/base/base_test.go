package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vulkan-go/glfw/v3.3/glfw"
)

type recordingInput struct {
	NopInput
	name    string
	handled bool
	seen    *[]string
}

func (r *recordingInput) KeyChange(glfw.Key, int, glfw.Action, glfw.ModifierKey) bool {
	*r.seen = append(*r.seen, r.name)
	return r.handled
}

func (r *recordingInput) CharChange(rune) bool {
	*r.seen = append(*r.seen, r.name)
	return r.handled
}

func TestInputPropagation(t *testing.T) {
	tests := []struct {
		name    string
		handled []bool
		want    []string
	}{
		{"nobody handles", []bool{false, false, false}, []string{"a", "b", "c"}},
		{"first handles", []bool{true, false, false}, []string{"a"}},
		{"middle handles", []bool{false, true, false}, []string{"a", "b"}},
	}

	names := []string{"a", "b", "c"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []string
			b := &AppBase{}
			for i, h := range tt.handled {
				b.AddInputModule(&recordingInput{name: names[i], handled: h, seen: &seen})
			}

			b.keyChange(nil, glfw.KeyA, 0, glfw.Press, 0)
			assert.Equal(t, tt.want, seen)

			seen = nil
			b.charChange(nil, 'x')
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestNopInputPassesThrough(t *testing.T) {
	var seen []string
	b := &AppBase{}
	b.AddInputModule(NopInput{})
	b.AddInputModule(&recordingInput{name: "last", seen: &seen})

	b.keyChange(nil, glfw.KeyA, 0, glfw.Press, 0)
	b.mouseScrollChange(nil, 0, 1)
	b.mouseButtonChange(nil, glfw.MouseButton1, glfw.Press, 0)

	// only KeyChange is recorded by recordingInput
	assert.Equal(t, []string{"last"}, seen)
}

func TestWindowTitle(t *testing.T) {
	assert.Equal(t, "vkexamples: triangle", WindowTitle("vkexamples", "triangle"))
	assert.Equal(t, "triangle", WindowTitle("", "triangle"))
}
