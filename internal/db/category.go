package db

// Category groups posts. Unpublishing a category hides all of its posts.
type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:256;not null"`
	Description string `gorm:"type:text"`
	Slug        string `gorm:"size:64;uniqueIndex;not null"`
	Publishable
}

// TableName 指定自定义表名。
func (Category) TableName() string {
	return "categories"
}

// Location 标记帖子发生的地点
type Location struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:256;not null"`
	Publishable
}

// TableName 指定自定义表名。
func (Location) TableName() string {
	return "locations"
}
