package services

import (
	"context"
	"strings"
	"testing"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type generatorFixture struct {
	llm       *fakeLLM
	posts     *fakePosts
	profiles  *fakeProfiles
	comments  *fakeComments
	languages *fakeLanguageFanout
	replies   *fakeCommentFanout
}

func newGeneratorFixture() *generatorFixture {
	return &generatorFixture{
		llm:       &fakeLLM{text: "How do you structure a large project?"},
		posts:     newFakePosts(&models.Post{ID: "p1", UserID: "author", Content: "What is a goroutine? @go"}),
		profiles:  &fakeProfiles{list: []models.Profile{profile("author", true, ""), profile("a", true, ""), profile("b", true, "")}},
		comments:  &fakeComments{},
		languages: &fakeLanguageFanout{},
		replies:   &fakeCommentFanout{},
	}
}

func (f *generatorFixture) build() *Generator {
	g := NewGenerator(f.llm, f.posts, f.profiles, f.comments, f.languages, f.replies, zap.NewNop())
	g.intn = func(int) int { return 0 }
	return g
}

func TestGeneratePost(t *testing.T) {
	f := newGeneratorFixture()

	out, err := f.build().GeneratePost(context.Background(), "Python")
	require.NoError(t, err)

	post := out.Post
	assert.Equal(t, "author", post.UserID)
	assert.True(t, strings.HasSuffix(post.Content, " @python"))
	assert.True(t, post.Metadata.AIGenerated)
	assert.Equal(t, []string{"python"}, post.Metadata.Languages)
	assert.Equal(t, "user-author", post.Metadata.DisplayName)

	require.Len(t, f.languages.reqs, 1)
	assert.Equal(t, post.ID, f.languages.reqs[0].PostID)
	assert.Equal(t, []string{"python"}, f.languages.reqs[0].Languages)
	assert.NotNil(t, out.Notifications)
}

func TestGeneratePost_RandomLanguage(t *testing.T) {
	f := newGeneratorFixture()

	out, err := f.build().GeneratePost(context.Background(), "")
	require.NoError(t, err)
	assert.Contains(t, out.Post.Metadata.Languages, GeneratedLanguages[0])
}

func TestGeneratePost_LLMFailure(t *testing.T) {
	f := newGeneratorFixture()
	f.llm.err = errBoom

	_, err := f.build().GeneratePost(context.Background(), "go")
	require.ErrorIs(t, err, errBoom)
	assert.Empty(t, f.posts.created)
	assert.Empty(t, f.languages.reqs)
}

func TestGeneratePost_NoProfiles(t *testing.T) {
	f := newGeneratorFixture()
	f.profiles.list = nil

	_, err := f.build().GeneratePost(context.Background(), "go")
	require.ErrorIs(t, err, ErrNoProfiles)
}

func TestGenerateComments_FallbackAndClamp(t *testing.T) {
	f := newGeneratorFixture()
	f.llm.err = errBoom

	out, err := f.build().GenerateComments(context.Background(), "p1", 25)
	require.NoError(t, err)

	assert.Len(t, out.Comments, 10)
	assert.Equal(t, 10, out.FallbackCount)
	assert.Equal(t, 10, f.posts.commentInc)
	assert.Len(t, f.replies.reqs, 10)
	for _, c := range out.Comments {
		assert.NotEqual(t, "author", c.UserID)
		assert.True(t, c.AIGenerated)
		assert.Equal(t, fallbackComments[0], c.Content)
	}
}

func TestGenerateComments_UsesLLM(t *testing.T) {
	f := newGeneratorFixture()
	f.llm.text = `"Use channels for that."`

	out, err := f.build().GenerateComments(context.Background(), "p1", 2)
	require.NoError(t, err)

	require.Len(t, out.Comments, 2)
	assert.Zero(t, out.FallbackCount)
	assert.Equal(t, "Use channels for that.", out.Comments[0].Content)
	assert.Equal(t, "a", out.Comments[0].UserID)
	assert.Equal(t, "b", out.Comments[1].UserID)
	assert.Equal(t, uint(2), f.replies.reqs[1].CommentID)
}

func TestGenerateComments_OnlyAuthorExists(t *testing.T) {
	f := newGeneratorFixture()
	f.profiles.list = f.profiles.list[:1]

	out, err := f.build().GenerateComments(context.Background(), "p1", 0)
	require.NoError(t, err)
	require.Len(t, out.Comments, 1)
	assert.Equal(t, "author", out.Comments[0].UserID)
}

func TestGenerateComments_MissingPost(t *testing.T) {
	f := newGeneratorFixture()

	_, err := f.build().GenerateComments(context.Background(), "nope", 3)
	require.Error(t, err)
	assert.Empty(t, f.comments.created)
}

func TestWithLanguageTag(t *testing.T) {
	assert.Equal(t, "Why is @Go so fast?", withLanguageTag(`"Why is @Go so fast?"`, "go"))
	assert.Equal(t, "Why is it fast? @go", withLanguageTag("Why is it fast?", "go"))
	assert.Equal(t, "C++ templates? @c++", withLanguageTag("C++ templates?", "c++"))
}
