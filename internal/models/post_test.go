package models

import "testing"

func TestPostPublicPath(t *testing.T) {
	p := Post{Slug: "blue-widget"}

	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{
			name:     "nested category",
			segments: []string{"shop", "shop/widgets"},
			want:     "shop/widgets/blue-widget",
		},
		{
			name:     "root category",
			segments: []string{"shop"},
			want:     "shop/blue-widget",
		},
		{
			name:     "no category",
			segments: nil,
			want:     "blue-widget",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.PublicPath(tt.segments); got != tt.want {
				t.Errorf("PublicPath(%v) = %q, want %q", tt.segments, got, tt.want)
			}
		})
	}
}

func TestPostHasFeatureImage(t *testing.T) {
	p := Post{}
	if p.HasFeatureImage() {
		t.Error("post without image key should have no feature image")
	}

	empty := ""
	p.FeatureImageKey = &empty
	if p.HasFeatureImage() {
		t.Error("post with empty image key should have no feature image")
	}

	key := "blog/blue-widget-photo.png"
	p.FeatureImageKey = &key
	if !p.HasFeatureImage() {
		t.Error("post with image key should have a feature image")
	}
}

func TestPostIsPublished(t *testing.T) {
	p := Post{Draft: true}
	if p.IsPublished() {
		t.Error("draft post should not be published")
	}
	p.Draft = false
	if !p.IsPublished() {
		t.Error("non-draft post should be published")
	}
}
