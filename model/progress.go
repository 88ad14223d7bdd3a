package model

// BufferRange 已缓冲的时间区间
type BufferRange struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// TrackProgress 本地观测到的播放进度，仅用于展示，不直接上报。
// Value/Total 为nil表示未知。
type TrackProgress struct {
	Value   *float64
	Total   *float64
	Buffers []BufferRange
}

// Remaining 剩余时长，任一端未知时返回nil
func (p TrackProgress) Remaining() *float64 {
	if p.Value == nil || p.Total == nil {
		return nil
	}
	remaining := *p.Total - *p.Value
	return &remaining
}

// Seconds 取整后的已播放秒数，未知时为0
func (p TrackProgress) Seconds() int {
	if p.Value == nil {
		return 0
	}
	return int(*p.Value)
}
