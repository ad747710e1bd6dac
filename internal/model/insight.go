package model

// InsightRequest 圈内人口与 POI 统计请求，选择参数与可达范围请求相同
type InsightRequest struct {
	ReachabilityRequest
	// 限定的 POI 分组，为空表示全部
	Categories []string `json:"categories"`
}

// AreaShare 一个人口统计单元与多边形的相交情况（面积单位：平方米）
type AreaShare struct {
	Population       float64
	UnitArea         float64
	IntersectionArea float64
}

// POICount 按 (分组, 类别) 统计的 POI 数量
type POICount struct {
	Group    string
	Category string
	Count    int64
}

// CategoryCount 类别计数
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// POIGroup 分组汇总
type POIGroup struct {
	Group string          `json:"group"`
	Total int64           `json:"total"`
	Items []CategoryCount `json:"items"`
}

// InsightResult 统计结果；缓存中没有对应多边形时 Isochrone 为 nil
type InsightResult struct {
	Population int64           `json:"population"`
	Categories []CategoryCount `json:"categories"`
	POIGroups  []POIGroup      `json:"poi_groups"`
	Isochrone  *Geometry       `json:"isochrone"`
}

// EmptyInsight 零值结果
func EmptyInsight() *InsightResult {
	return &InsightResult{
		Population: 0,
		Categories: []CategoryCount{},
		POIGroups:  []POIGroup{},
		Isochrone:  nil,
	}
}
