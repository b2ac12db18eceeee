package services

import (
	"bytes"
	"fmt"
	"html/template"
)

var emailTemplates = template.Must(template.New("email").Parse(`
{{define "language_post"}}<div style="font-family:sans-serif;max-width:560px">
<p>Hi {{.RecipientName}},</p>
<p><strong>{{.ActorName}}</strong> just posted about <strong>{{.Languages}}</strong> on iblue:</p>
<blockquote style="border-left:3px solid #3b82f6;padding-left:12px;color:#374151">{{.Excerpt}}</blockquote>
<p><a href="{{.PostURL}}">View the shoutout</a></p>
<p style="font-size:12px;color:#6b7280">You get these because you follow these languages. <a href="{{.SettingsURL}}">Manage email notifications</a></p>
</div>{{end}}
{{define "comment"}}<div style="font-family:sans-serif;max-width:560px">
<p>Hi {{.RecipientName}},</p>
<p><strong>{{.ActorName}}</strong> replied to your shoutout:</p>
<blockquote style="border-left:3px solid #3b82f6;padding-left:12px;color:#374151">{{.Excerpt}}</blockquote>
<p><a href="{{.PostURL}}">Join the conversation</a></p>
<p style="font-size:12px;color:#6b7280"><a href="{{.SettingsURL}}">Manage email notifications</a></p>
</div>{{end}}
`))

type emailData struct {
	PostID        string
	RecipientName string
	ActorName     string
	Languages     string
	Excerpt       string
	PostURL       string
	SettingsURL   string
}

type renderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

func renderLanguagePostEmail(baseURL string, d emailData) (renderedEmail, error) {
	d.PostURL, d.SettingsURL = baseURL+"/post/"+d.PostID, baseURL+"/settings"
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, "language_post", d); err != nil {
		return renderedEmail{}, fmt.Errorf("render language post email: %w", err)
	}
	return renderedEmail{
		Subject: fmt.Sprintf("New %s post from %s", d.Languages, d.ActorName),
		HTML:    buf.String(),
		Text: fmt.Sprintf("%s just posted about %s on iblue:\n\n%s\n\n%s\n",
			d.ActorName, d.Languages, d.Excerpt, d.PostURL),
	}, nil
}

func renderCommentEmail(baseURL string, d emailData) (renderedEmail, error) {
	d.PostURL, d.SettingsURL = baseURL+"/post/"+d.PostID, baseURL+"/settings"
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, "comment", d); err != nil {
		return renderedEmail{}, fmt.Errorf("render comment email: %w", err)
	}
	return renderedEmail{
		Subject: fmt.Sprintf("%s replied to your shoutout", d.ActorName),
		HTML:    buf.String(),
		Text:    fmt.Sprintf("%s replied to your shoutout:\n\n%s\n\n%s\n", d.ActorName, d.Excerpt, d.PostURL),
	}, nil
}
