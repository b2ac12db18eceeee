package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationTypeRender(t *testing.T) {
	tests := []struct {
		typ    NotificationType
		detail string
		want   string
	}{
		{NotificationLike, "", "Ada liked your shoutout"},
		{NotificationReply, "", "Ada replied to your shoutout"},
		{NotificationMention, "", "Ada mentioned you in a shoutout"},
		{NotificationRetweet, "", "Ada reshared your shoutout"},
		{NotificationBookmark, "", "Ada bookmarked your shoutout"},
		{NotificationReaction, "🚀", "Ada reacted 🚀 to your shoutout"},
		{NotificationReaction, "", "Ada reacted to your shoutout"},
		{NotificationLanguageMention, "go, rust", "Ada posted about go, rust"},
		{NotificationLanguageMention, "", "Ada posted in a language you follow"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.Render("Ada", tt.detail))
	}
}

func TestNotificationTypesAreValid(t *testing.T) {
	for _, typ := range NotificationTypes {
		assert.True(t, typ.Valid(), typ)
		assert.NotEmpty(t, typ.Title(), typ)
	}
	assert.False(t, NotificationType("poke").Valid())
	assert.Panics(t, func() { _ = NotificationType("poke").Title() })
}

func TestProfileName(t *testing.T) {
	var nilProfile *Profile
	assert.Equal(t, DefaultDisplayName, nilProfile.Name())
	assert.Equal(t, "Grace", (&Profile{FullName: "Grace Hopper", DisplayName: "Grace"}).Name())
	assert.Equal(t, "Grace Hopper", (&Profile{FullName: "Grace Hopper"}).Name())
	assert.Equal(t, DefaultDisplayName, (&Profile{}).Name())
}

func TestPostExcerpt(t *testing.T) {
	p := &Post{Content: "héllo world"}
	assert.Equal(t, "héllo world", p.Excerpt(20))
	assert.Equal(t, "héllo...", p.Excerpt(5))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "", Excerpt("", 10))
	assert.Equal(t, "exactly", Excerpt("exactly", 7))
	assert.Equal(t, "ça va...", Excerpt("ça va bien", 5))
	assert.Equal(t, Excerpt("héllo world", 5), (&Post{Content: "héllo world"}).Excerpt(5))
}
