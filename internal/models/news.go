package models

// News is a reporter or reader submitted news article.
type News struct {
	ListingBase
	Content  string       `gorm:"type:text;not null" json:"content"`
	Category string       `gorm:"index" json:"category,omitempty"`
	Media    []MediaAsset `gorm:"polymorphic:Owner;polymorphicValue:news" json:"media"`
}

func (News) TableName() string { return "news" }

func (n *News) Kind() ContentKind           { return KindNews }
func (n *News) Body() string                { return n.Content }
func (n *News) GetMedia() []MediaAsset      { return n.Media }
func (n *News) SetMedia(media []MediaAsset) { n.Media = media }
func (n *News) Validate() error             { return validateBase(&n.ListingBase, n.Content, "content") }
