package analysis

import "strings"

// Device describes the client form factor. It is supplied by the caller.
type Device struct {
	Mobile bool `json:"mobile"`
}

// Messages holds the user visible strings of the analysis screen.
type Messages struct {
	Loading     string
	NoPhoto     string
	Error       string
	NoData      string
	Heading     string
	TitleSuffix string
}

// DefaultMessages returns the Korean copy of the screen.
func DefaultMessages() Messages {
	return Messages{
		Loading:     "사진 불러오는 중...",
		NoPhoto:     "분석할 사진이 없습니다.",
		Error:       "알 수 없는 오류가 발생했습니다.",
		NoData:      "영양 데이터가 없습니다.",
		Heading:     "Ai 분석 결과",
		TitleSuffix: "음식 분석",
	}
}

// View is the rendered analysis screen. When Loading is set only Placeholder is meaningful.
type View struct {
	Phase       Phase      `json:"phase"`
	Loading     bool       `json:"loading"`
	Placeholder string     `json:"placeholder,omitempty"`
	Title       string     `json:"title,omitempty"`
	Error       string     `json:"error,omitempty"`
	Message     string     `json:"message,omitempty"`
	HasPhoto    bool       `json:"hasPhoto"`
	NoPhoto     string     `json:"noPhoto,omitempty"`
	Heading     string     `json:"heading,omitempty"`
	Mirrored    bool       `json:"mirrored"`
	Chart       *Breakdown `json:"chart,omitempty"`
	Detail      *Result    `json:"detail,omitempty"`
	NoData      string     `json:"noData,omitempty"`
}

// BuildView renders a snapshot. It has no side effects.
func BuildView(snap Snapshot, device Device, msgs Messages) View {
	state := snap.State
	if state.Loading {
		return View{Phase: state.Phase, Loading: true, Placeholder: msgs.Loading}
	}

	view := View{
		Phase:    state.Phase,
		Title:    strings.TrimSpace(strings.TrimSpace(snap.Selection.Type) + " " + msgs.TitleSuffix),
		HasPhoto: snap.Selection.HasPhoto(),
		Mirrored: !device.Mobile,
	}
	if state.Phase == PhaseFailed {
		view.Error = msgs.Error
		view.Message = state.Message
	}
	if view.HasPhoto {
		view.Heading = msgs.Heading
	} else {
		view.NoPhoto = msgs.NoPhoto
	}
	if state.Phase == PhaseSucceeded && state.Result != nil && view.HasPhoto {
		result := *state.Result
		breakdown := result.Breakdown()
		view.Chart = &breakdown
		view.Detail = &result
	} else {
		view.NoData = msgs.NoData
	}
	return view
}
