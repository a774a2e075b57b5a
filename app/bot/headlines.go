package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/Semior001/headlines/app/render"
	"github.com/Semior001/headlines/app/revisor"
	"github.com/Semior001/headlines/app/sampler"
	"github.com/Semior001/headlines/app/store"
	"github.com/Semior001/headlines/pkg/botx"
	"golang.org/x/exp/slog"
)

// maxDescriptionLen keeps the card within the limit of a photo caption.
const maxDescriptionLen = 600

func (c *Ctrl) start(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	err := c.API.SendMessage(ctx, botx.Response{
		ChatID: req.Chat.ID,
		Text:   "Hi! Here are a few random headlines for you.\n" + helpText,
	})
	if err != nil {
		return nil, fmt.Errorf("send greeting: %w", err)
	}

	return c.shuffle(ctx, req)
}

func (c *Ctrl) stop(_ context.Context, req botx.Request) ([]botx.Response, error) {
	c.Sessions.End(req.Chat.ID)

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   "Session ended. Send /start to begin a new one.",
	}}, nil
}

func (c *Ctrl) shuffle(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	smp, started := c.Sessions.Get(req.Chat.ID)
	if started {
		c.Logger.DebugCtx(ctx, "started new session", slog.String("chat_id", req.Chat.ID))
	}

	err := c.API.SendMessage(ctx, botx.Response{ChatID: req.Chat.ID, Text: render.Loading})
	if err != nil {
		return nil, fmt.Errorf("send loading message: %w", err)
	}

	smp.Refresh(ctx)

	st := smp.State()
	if st.Loading() {
		// superseded by a newer shuffle, which responds on its own
		return nil, nil
	}

	return c.pageResponses(req.Chat.ID, render.NewPage(st, c.Location))
}

func (c *Ctrl) pageResponses(chatID string, page render.Page) ([]botx.Response, error) {
	var resps []botx.Response

	if page.Error != "" {
		resps = append(resps, botx.Response{
			ChatID: chatID,
			Text:   "⚠️ " + render.EscapeMarkdown(page.Error),
		})
	}

	if page.Empty() {
		resps = append(resps, botx.Response{ChatID: chatID, Text: render.NoArticles})
		return resps, nil
	}

	for i, card := range page.Cards {
		card.Description = truncate(card.Description, maxDescriptionLen)

		text, err := render.Markdown(card)
		if err != nil {
			return nil, fmt.Errorf("render card %d: %w", i, err)
		}

		resps = append(resps, botx.Response{
			ChatID:   chatID,
			Text:     fmt.Sprintf("%d. %s", i+1, text),
			ImageURL: card.Image,
		})
	}

	return resps, nil
}

var digestMessageTmpl = template.Must(template.New("digestMessage").
	Funcs(template.FuncMap{"md": render.EscapeMarkdown, "link": render.EscapeLink}).
	Parse(`*{{md .Title}}*{{if .Author}} by {{md .Author}}{{end}}

{{md .BulletPoints}}

[source]({{link .URL}})`))

func (c *Ctrl) read(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	reply := func(text string) []botx.Response {
		return []botx.Response{{ChatID: req.Chat.ID, Text: text}}
	}

	if c.Digester == nil {
		return reply("Reading articles is not enabled."), nil
	}

	smp, ok := c.Sessions.Peek(req.Chat.ID)
	if !ok {
		return reply("There are no headlines yet, send /shuffle first."), nil
	}

	st := smp.State()
	if st.Phase != sampler.PhaseReady || len(st.Articles) == 0 {
		return reply("There are no headlines yet, send /shuffle first."), nil
	}

	args := req.Args()
	if len(args) != 1 {
		return reply(fmt.Sprintf("Please, send /read with a number from 1 to %d.", len(st.Articles))), nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(st.Articles) {
		return reply(fmt.Sprintf("Please, send /read with a number from 1 to %d.", len(st.Articles))), nil
	}

	if err = c.API.SendMessage(ctx, botx.Response{
		ChatID: req.Chat.ID,
		Text:   "I'm working on it, please wait...",
	}); err != nil {
		return nil, fmt.Errorf("send start message: %w", err)
	}

	digest, err := c.Digester.Digest(ctx, st.Articles[n-1].URL)
	if err != nil {
		if errors.Is(err, revisor.ErrTooManyTokens) {
			return reply("This article is too long, I can't summarize it."), nil
		}
		return nil, fmt.Errorf("make digest: %w", err)
	}

	if digest.Title == "" {
		digest.Title = st.Articles[n-1].Title
	}

	return c.digestResponses(req.Chat.ID, digest)
}

func (c *Ctrl) digestResponses(chatID string, digest store.Digest) ([]botx.Response, error) {
	sb := &strings.Builder{}
	if err := digestMessageTmpl.Execute(sb, digest); err != nil {
		return nil, fmt.Errorf("execute digest message template: %w", err)
	}

	return []botx.Response{{ChatID: chatID, Text: sb.String()}}, nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
