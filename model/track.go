package model

// FileExtension 音频文件编码格式
type FileExtension string

const (
	ExtensionMP3  FileExtension = "mp3"
	ExtensionFLAC FileExtension = "flac"
)

// Quality 播放音质偏好，仅保存在本地，不上报服务端
type Quality string

const (
	QualityStandard     Quality = "STANDARD"      // 标准音质，对应mp3文件
	QualityHighFidelity Quality = "HIGH_FIDELITY" // 无损音质，对应flac文件
)

// Extension 返回该音质对应的文件格式
func (q Quality) Extension() FileExtension {
	if q == QualityStandard {
		return ExtensionMP3
	}
	return ExtensionFLAC
}

// ParseQuality 解析音质配置，无法识别时回落到无损
func ParseQuality(raw string) Quality {
	if Quality(raw) == QualityStandard {
		return QualityStandard
	}
	return QualityHighFidelity
}

// TrackFile 曲目的一个编码变体
type TrackFile struct {
	ID        int64         `json:"id"`
	File      string        `json:"file"` // 文件URL
	Extension FileExtension `json:"extension"`
	Duration  float64       `json:"duration"` // 时长（秒）
}

// Track 曲库中的曲目，由目录服务下发，客户端只读
type Track struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Artist int64       `json:"artist"` // 艺术家ID
	Files  []TrackFile `json:"files"`
}

// FileByExtension 按编码格式查找文件变体
func (t *Track) FileByExtension(ext FileExtension) *TrackFile {
	for i := range t.Files {
		if t.Files[i].Extension == ext {
			return &t.Files[i]
		}
	}
	return nil
}

// Artist 艺术家
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
