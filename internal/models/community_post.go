package models

// CommunityPost is a free-form post on the community board.
type CommunityPost struct {
	ListingBase
	Content string       `gorm:"type:text;not null" json:"content"`
	Media   []MediaAsset `gorm:"polymorphic:Owner;polymorphicValue:community_posts" json:"media"`
}

func (CommunityPost) TableName() string { return "community_posts" }

func (p *CommunityPost) Kind() ContentKind           { return KindCommunityPost }
func (p *CommunityPost) Body() string                { return p.Content }
func (p *CommunityPost) GetMedia() []MediaAsset      { return p.Media }
func (p *CommunityPost) SetMedia(media []MediaAsset) { p.Media = media }
func (p *CommunityPost) Validate() error {
	return validateBase(&p.ListingBase, p.Content, "content")
}
