package model

// POICategoryGroup POI 大类及其包含的小类，供圈内统计的筛选使用
type POICategoryGroup struct {
	Group      string   `json:"group"`
	Categories []string `json:"categories"`
	Total      int64    `json:"total"`
}

// DefaultPOIGroups poi 表为空时返回的默认分组
func DefaultPOIGroups() []POICategoryGroup {
	return []POICategoryGroup{
		{Group: "Food", Categories: []string{"Cafe", "Restaurant", "Fast Food"}},
		{Group: "Retail", Categories: []string{"Mall", "Market", "Convenience Store"}},
		{Group: "Education", Categories: []string{"School", "University"}},
		{Group: "Health", Categories: []string{"Hospital", "Clinic", "Pharmacy"}},
		{Group: "Transport", Categories: []string{"Bus Stop", "Station", "Parking"}},
		{Group: "Worship", Categories: []string{"Mosque", "Church"}},
		{Group: "Office", Categories: []string{"Office", "Bank"}},
	}
}
