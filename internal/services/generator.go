package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/anonto42/iblue/backend/internal/langtag"
	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/pkg/metrics"
	"go.uber.org/zap"
)

var ErrNoProfiles = errors.New("no profiles available to author generated content")

// GeneratedLanguages is the pool a language is drawn from when none is requested.
var GeneratedLanguages = []string{
	"javascript", "typescript", "python", "go", "rust", "java", "kotlin", "swift",
	"c++", "c#", "ruby", "php", "react", "vue", "node", "sql", "docker", "kubernetes",
}

var fallbackComments = []string{
	"Great question! I ran into the same thing last week.",
	"Have you checked the official docs? There's a section on exactly this.",
	"I usually solve this with a small helper function, keeps things readable.",
	"Interesting. What version are you on? Behaviour changed recently.",
	"+1, following this thread.",
	"Try adding some logging around that part, it usually reveals the issue.",
	"This tripped me up too. Writing a minimal repro helped a lot.",
	"Nice one, thanks for sharing!",
}

const (
	postSystemPrompt    = "You write short, friendly questions that developers post on a social network. No hashtags, no quotes, under 240 characters."
	commentSystemPrompt = "You reply to developer posts on a social network with one short, helpful, casual comment under 200 characters. No quotes."
	maxPostRunes        = 480
)

type completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

type generatedPostWriter interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	IncrementCommentsCount(ctx context.Context, postID string) error
}

type randomProfileReader interface {
	RandomProfiles(ctx context.Context, n int, excludeIDs ...string) ([]models.Profile, error)
}

type commentWriter interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
}

type languageFanout interface {
	Notify(ctx context.Context, req LanguageNotifyRequest) (*LanguageNotifySummary, error)
}

type commentFanout interface {
	Notify(ctx context.Context, req CommentNotifyRequest) (*CommentNotifyResult, error)
}

type GeneratedPost struct {
	Post          *models.Post           `json:"post"`
	Notifications *LanguageNotifySummary `json:"notifications,omitempty"`
}

type GeneratedComments struct {
	Comments      []models.Comment `json:"comments"`
	FallbackCount int              `json:"fallback_count"`
}

// Generator creates synthetic posts and comments through the LLM.
type Generator struct {
	llm       completer
	posts     generatedPostWriter
	profiles  randomProfileReader
	comments  commentWriter
	languages languageFanout
	replies   commentFanout
	logger    *zap.Logger
	intn      func(n int) int
}

func NewGenerator(
	llm completer,
	posts generatedPostWriter,
	profiles randomProfileReader,
	comments commentWriter,
	languages languageFanout,
	replies commentFanout,
	logger *zap.Logger,
) *Generator {
	return &Generator{
		llm:       llm,
		posts:     posts,
		profiles:  profiles,
		comments:  comments,
		languages: languages,
		replies:   replies,
		logger:    logger,
		intn:      rand.IntN,
	}
}

// GeneratePost writes one AI-authored coding question tagged with language
// (or a random one) and runs the language fan-out for it.
func (g *Generator) GeneratePost(ctx context.Context, language string) (*GeneratedPost, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = GeneratedLanguages[g.intn(len(GeneratedLanguages))]
	}

	authors, err := g.profiles.RandomProfiles(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("pick author: %w", err)
	}
	if len(authors) == 0 {
		return nil, ErrNoProfiles
	}
	author := authors[0]

	prompt := fmt.Sprintf("Write a question a developer might ask about %s. End it with @%s.", language, language)
	text, err := g.llm.Complete(ctx, postSystemPrompt, prompt, 120)
	if err != nil {
		return nil, fmt.Errorf("generate post text: %w", err)
	}
	content := withLanguageTag(text, language)

	post := &models.Post{
		UserID:  author.ID,
		Content: content,
		Metadata: models.PostMetadata{
			DisplayName: author.Name(),
			Languages:   langtag.Merge([]string{language}, langtag.Extract(content)),
			AIGenerated: true,
		},
	}
	if err := g.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create generated post: %w", err)
	}
	g.logger.Info("Generated post",
		zap.String("post_id", post.ID),
		zap.String("author_id", author.ID),
		zap.String("language", language),
	)

	out := &GeneratedPost{Post: post}
	summary, err := g.languages.Notify(ctx, LanguageNotifyRequest{
		PostID:    post.ID,
		Languages: post.Metadata.Languages,
		Content:   post.Content,
		Immediate: true,
	})
	if err != nil {
		g.logger.Error("Language fan-out for generated post failed", zap.String("post_id", post.ID), zap.Error(err))
	}
	out.Notifications = summary
	return out, nil
}

// GenerateComments adds count (clamped to 1..10) AI comments to a post. When
// the LLM is unavailable a canned reply is used instead.
func (g *Generator) GenerateComments(ctx context.Context, postID string, count int) (*GeneratedComments, error) {
	count = min(max(count, 1), 10)

	post, err := g.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("load post %s: %w", postID, err)
	}

	authors, err := g.profiles.RandomProfiles(ctx, count, post.UserID)
	if err != nil {
		return nil, fmt.Errorf("pick comment authors: %w", err)
	}
	if len(authors) == 0 {
		// Only the post author exists.
		if authors, err = g.profiles.RandomProfiles(ctx, count); err != nil {
			return nil, fmt.Errorf("pick comment authors: %w", err)
		}
	}
	if len(authors) == 0 {
		return nil, ErrNoProfiles
	}

	out := &GeneratedComments{Comments: make([]models.Comment, 0, count)}
	prompt := fmt.Sprintf("Reply to this post:\n\n%s", post.Content)
	for i := 0; i < count; i++ {
		author := authors[i%len(authors)]

		text, err := g.llm.Complete(ctx, commentSystemPrompt, prompt, 80)
		if err != nil {
			g.logger.Warn("LLM comment failed, using fallback", zap.String("post_id", postID), zap.Error(err))
			metrics.LLMRequests.WithLabelValues("fallback").Inc()
			text = fallbackComments[g.intn(len(fallbackComments))]
			out.FallbackCount++
		}

		comment := models.Comment{
			PostID:      post.ID,
			UserID:      author.ID,
			Content:     truncateRunes(strings.Trim(text, "\"' \n"), 500),
			AIGenerated: true,
		}
		if err := g.comments.CreateComment(ctx, &comment); err != nil {
			return out, fmt.Errorf("create generated comment: %w", err)
		}
		if err := g.posts.IncrementCommentsCount(ctx, post.ID); err != nil {
			g.logger.Warn("Failed to bump comment count", zap.String("post_id", post.ID), zap.Error(err))
		}
		out.Comments = append(out.Comments, comment)

		if _, err := g.replies.Notify(ctx, CommentNotifyRequest{
			PostID:      post.ID,
			CommentID:   comment.ID,
			CommenterID: author.ID,
			Content:     comment.Content,
		}); err != nil {
			g.logger.Warn("Comment notification failed", zap.String("post_id", post.ID), zap.Error(err))
		}
	}
	return out, nil
}

// withLanguageTag cleans model output and makes sure it carries @language.
func withLanguageTag(text, language string) string {
	text = truncateRunes(strings.Trim(text, "\"' \n"), maxPostRunes)
	tag := "@" + language
	for _, t := range langtag.Extract(text) {
		if t == language {
			return text
		}
	}
	return text + " " + tag
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
