package multithreading

import (
	"fmt"

	"github.com/inkyblackness/imgui-go/v4"
)

func (m *module) DrawUI() {
	imgui.SetNextWindowPosV(imgui.Vec2{X: 10, Y: 10}, imgui.ConditionFirstUseEver, imgui.Vec2{})
	imgui.BeginV("stats", nil, imgui.WindowFlagsAlwaysAutoResize)
	imgui.Text(m.stats())
	imgui.Checkbox("pause (space)", &m.paused)
	imgui.End()
}

func (m *module) stats() string {
	var fps float64
	if m.frameTime > 0 {
		fps = 1 / m.frameTime.Seconds()
	}
	return fmt.Sprintf("frame %.2f ms (%.0f fps)\nworkers %d\nobjects %d",
		float64(m.frameTime.Microseconds())/1000, fps, len(m.workers), len(m.objects))
}
