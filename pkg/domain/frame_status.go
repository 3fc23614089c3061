package domain

import "fmt"

// FrameStatus はショットの制作段階です。UI 操作によって遷移します。
type FrameStatus string

const (
	StatusDraft              FrameStatus = "Draft"
	StatusGeneratedStill     FrameStatus = "GeneratedStill"
	StatusUpscalingImage     FrameStatus = "UpscalingImage"
	StatusUpscaledImageReady FrameStatus = "UpscaledImageReady"
	StatusRenderingVideo     FrameStatus = "RenderingVideo"
	StatusAnimatedVideoReady FrameStatus = "AnimatedVideoReady"
	StatusUpscalingVideo     FrameStatus = "UpscalingVideo"
	StatusUpscaledVideoReady FrameStatus = "UpscaledVideoReady"
	StatusError              FrameStatus = "Error"
)

// frameStatusOrder は正常系の進行順です。Error は含みません。
var frameStatusOrder = []FrameStatus{
	StatusDraft,
	StatusGeneratedStill,
	StatusUpscalingImage,
	StatusUpscaledImageReady,
	StatusRenderingVideo,
	StatusAnimatedVideoReady,
	StatusUpscalingVideo,
	StatusUpscaledVideoReady,
}

func (s FrameStatus) step() int {
	for i, v := range frameStatusOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// Valid は既知のステータスかどうかを返します。
func (s FrameStatus) Valid() bool {
	return s == StatusError || s.step() >= 0
}

// IsInFlight は処理待ちの中間状態かどうかを返します。
func (s FrameStatus) IsInFlight() bool {
	switch s {
	case StatusUpscalingImage, StatusRenderingVideo, StatusUpscalingVideo:
		return true
	}
	return false
}

// CanTransition は from から to への遷移が許されるかを判定します。
// 前進は1段ずつ、後退と同じ段階への再入はいつでも可能です。
// Error にはどこからでも落ち、Error からはどの段階にも戻れます。
func CanTransition(from, to FrameStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if to == StatusError || from == StatusError {
		return true
	}
	return to.step() <= from.step()+1
}

// Transition は遷移を検証して新しいステータスを返します。
func Transition(from, to FrameStatus) (FrameStatus, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("invalid frame status transition %s -> %s", from, to)
	}
	return to, nil
}
