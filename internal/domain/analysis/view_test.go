package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/foodeat/internal/domain/selection"
)

func TestBuildView_LoadingSuppressesContent(t *testing.T) {
	view := BuildView(Snapshot{
		Selection: selection.Selection{PhotoRef: "blob:abc", Type: "아침"},
		State:     State{Phase: PhaseLoading, Loading: true, Message: "stale"},
	}, Device{}, DefaultMessages())

	require.Equal(t, View{Phase: PhaseLoading, Loading: true, Placeholder: "사진 불러오는 중..."}, view)
}

func TestBuildView_DesktopMirrorsPhoto(t *testing.T) {
	snap := Snapshot{Selection: selection.Selection{PhotoRef: "blob:abc", Type: "아침"}, State: State{Phase: PhaseIdle}}

	desktop := BuildView(snap, Device{Mobile: false}, DefaultMessages())
	require.True(t, desktop.Mirrored)
	require.True(t, desktop.HasPhoto)
	require.Equal(t, "Ai 분석 결과", desktop.Heading)

	mobile := BuildView(snap, Device{Mobile: true}, DefaultMessages())
	require.False(t, mobile.Mirrored)
}

func TestBuildView_FailureShowsGenericLine(t *testing.T) {
	view := BuildView(Snapshot{
		Selection: selection.Selection{PhotoRef: "blob:abc", Type: "저녁"},
		State:     State{Phase: PhaseFailed, Message: "db down"},
	}, Device{}, DefaultMessages())

	require.Equal(t, "알 수 없는 오류가 발생했습니다.", view.Error)
	require.Equal(t, "db down", view.Message)
	require.Nil(t, view.Chart)
	require.Nil(t, view.Detail)
	require.Equal(t, "영양 데이터가 없습니다.", view.NoData)
}

func TestBuildView_CustomMessages(t *testing.T) {
	msgs := DefaultMessages()
	msgs.TitleSuffix = "analysis"
	view := BuildView(Snapshot{State: State{Phase: PhaseIdle}}, Device{}, msgs)
	require.Equal(t, "analysis", view.Title)
	require.Equal(t, msgs.NoPhoto, view.NoPhoto)
}

func TestResultBreakdown(t *testing.T) {
	breakdown := Result{TotalKcal: 321.5, Carbs: 10.25, Protein: 3.5, Fat: 2.5}.Breakdown()
	require.Equal(t, 41.0, breakdown.CarbsKcal)
	require.Equal(t, 14.0, breakdown.ProteinKcal)
	require.Equal(t, 22.5, breakdown.FatKcal)
	require.Equal(t, 321.5-41.0-14.0-22.5, breakdown.EtcKcal)

	negative := Result{TotalKcal: 10, Fat: 5}.Breakdown()
	require.Equal(t, -35.0, negative.EtcKcal)
}

func TestTriggerComplete(t *testing.T) {
	require.True(t, Trigger{PhotoRef: "blob:a", Type: "아침", AccessToken: "t"}.Complete())
	require.False(t, Trigger{Type: "아침", AccessToken: "t"}.Complete())
	require.False(t, Trigger{PhotoRef: "blob:a", AccessToken: "t"}.Complete())
	require.False(t, Trigger{PhotoRef: "blob:a", Type: "아침"}.Complete())
}
