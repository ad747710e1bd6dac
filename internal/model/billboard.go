package model

// Billboard 广告牌（只读参考数据）
type Billboard struct {
	ID      int64   `json:"id"`
	Address string  `json:"address"`
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
}

// Location 广告牌坐标
func (b Billboard) Location() Point { return Point{b.Lon, b.Lat} }
