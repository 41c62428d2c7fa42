package models

import "time"

// Course is the top of the content hierarchy, keyed by CourseID.
type Course struct {
	CourseID    string   `json:"courseId" bson:"courseId"`
	Title       string   `json:"title" bson:"title"`
	Slug        string   `json:"slug" bson:"slug"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	ImageSrc    string   `json:"imageSrc,omitempty" bson:"imageSrc,omitempty"`
	Tags        []string `json:"tags" bson:"tags"`
	Rating      float64  `json:"rating" bson:"rating"`
	// WeekCount is a stored cache, written by callers and by reconcile
	WeekCount int       `json:"weekCount" bson:"weekCount"`
	Price     *float64  `json:"price" bson:"price"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CourseFilter selects courses; empty fields match everything.
type CourseFilter struct {
	CourseID string
	Slug     string
}

// Matches reports whether c satisfies the filter.
func (f CourseFilter) Matches(c *Course) bool {
	return (f.CourseID == "" || c.CourseID == f.CourseID) &&
		(f.Slug == "" || c.Slug == f.Slug)
}

// CoursePatch is a sparse course update. Nil fields are left unchanged.
// CourseID is immutable and has no patch field.
type CoursePatch struct {
	Title       *string
	Slug        *string
	Description *string
	ImageSrc    *string
	Tags        *[]string
	Rating      *float64
	WeekCount   *int
	// PriceSet distinguishes an explicit null price from an absent one
	PriceSet  bool
	Price     *float64
	UpdatedAt time.Time
}

// Apply writes the patch onto c.
func (p CoursePatch) Apply(c *Course) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.ImageSrc != nil {
		c.ImageSrc = *p.ImageSrc
	}
	if p.Tags != nil {
		c.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Rating != nil {
		c.Rating = *p.Rating
	}
	if p.WeekCount != nil {
		c.WeekCount = *p.WeekCount
	}
	if p.PriceSet {
		c.Price = p.Price
	}
	c.UpdatedAt = p.UpdatedAt
}

// Fields maps the set fields to their stored names, updatedAt included.
func (p CoursePatch) Fields() map[string]any {
	m := map[string]any{"updatedAt": p.UpdatedAt}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Slug != nil {
		m["slug"] = *p.Slug
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.ImageSrc != nil {
		m["imageSrc"] = *p.ImageSrc
	}
	if p.Tags != nil {
		m["tags"] = *p.Tags
	}
	if p.Rating != nil {
		m["rating"] = *p.Rating
	}
	if p.WeekCount != nil {
		m["weekCount"] = *p.WeekCount
	}
	if p.PriceSet {
		m["price"] = p.Price
	}
	return m
}
