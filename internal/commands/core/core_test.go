package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keshon/musicbot/internal/bot"
	"github.com/keshon/musicbot/internal/bot/bottest"
	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
	"github.com/keshon/musicbot/internal/music/player"
	"github.com/keshon/musicbot/internal/permissions"
	"github.com/keshon/musicbot/internal/voice"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newBot(t *testing.T, table permissions.Table) (*bot.Bot, *bottest.Gateway, *messages.Catalog) {
	t.Helper()
	reg, err := command.NewRegistry(command.Defaults(), nil)
	if err != nil {
		t.Fatal(err)
	}
	perms, err := permissions.NewResolver(table)
	if err != nil {
		t.Fatal(err)
	}
	msgs, err := messages.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	gw := bottest.NewGateway()
	p := player.New(bottest.Streamer{})
	t.Cleanup(p.Close)
	b := bot.New(bot.Config{Prefix: "!"}, gw, reg, perms, msgs, voice.NewManager(&bottest.Joiner{}, p), p, &bottest.Resolver{}, nil)
	Register(b)
	return b, gw, msgs
}

func run(t *testing.T, b *bot.Bot, content string) {
	t.Helper()
	msg := &command.Message{ChannelID: "c1", GuildID: "g1", AuthorID: "u1", AuthorName: "ann", Content: content}
	if err := b.Dispatch(context.Background(), msg); err != nil {
		t.Fatalf("%s: %v", content, err)
	}
}

func adminTable() permissions.Table {
	t := permissions.Defaults()
	t.Users["u1"] = "admin"
	return t
}

func TestHelpDM(t *testing.T) {
	b, gw, msgs := newBot(t, permissions.Defaults())
	run(t, b, "!help")

	dms := gw.DMs()
	if len(dms) != 3 {
		t.Fatalf("dms = %d, want welcome plus two pages", len(dms))
	}
	if dms[0] != msgs.Get(messages.HelpWelcomeDM) {
		t.Errorf("first dm = %q", dms[0])
	}
	all := strings.Join(dms, "\n")
	if !strings.Contains(all, "`!play`") || !strings.Contains(all, "`p`") {
		t.Error("help lacks play")
	}
	if strings.Contains(all, "setavatar") {
		t.Error("help lists a command the caller may not use")
	}
	if len(gw.Replies()) != 0 {
		t.Errorf("help replied in channel: %q", gw.Replies())
	}
}

func TestHelpDMListsAdminCommands(t *testing.T) {
	b, gw, _ := newBot(t, adminTable())
	run(t, b, "!h")
	if !strings.Contains(strings.Join(gw.DMs(), "\n"), "`!setavatar`") {
		t.Error("admin help lacks setavatar")
	}
}

func TestHelpDMFailed(t *testing.T) {
	b, gw, msgs := newBot(t, permissions.Defaults())
	gw.DMErr = bottest.ErrDMClosed
	run(t, b, "!help")
	if got := gw.Replies(); len(got) != 1 || got[0] != msgs.Get(messages.HelpDMFailed) {
		t.Errorf("replies = %q", got)
	}
}

func TestHelpAlias(t *testing.T) {
	b, gw, msgs := newBot(t, permissions.Defaults())

	run(t, b, "!help NP")
	if got := gw.LastReply(); !strings.Contains(got, "**Now Playing**") || !strings.Contains(got, "`np`") {
		t.Errorf("alias help = %q", got)
	}

	run(t, b, "!help dance")
	if got := gw.LastReply(); got != msgs.Format(messages.HelpUnknown, "dance", "!") {
		t.Errorf("unknown alias = %q", got)
	}
}

func TestSetUsername(t *testing.T) {
	b, gw, msgs := newBot(t, adminTable())

	run(t, b, "!setusername")
	if got := gw.LastReply(); got != msgs.Get(messages.SetUsernameInvalid) {
		t.Errorf("empty name: %q", got)
	}

	run(t, b, "!setusername DJ   Bot")
	if gw.Username != "DJ Bot" || gw.LastReply() != msgs.Format(messages.SetUsernameSuccess, "DJ Bot") {
		t.Errorf("username = %q reply = %q", gw.Username, gw.LastReply())
	}
}

func TestSetUsernameDenied(t *testing.T) {
	b, gw, msgs := newBot(t, permissions.Defaults())
	run(t, b, "!setusername DJ")
	if gw.Username != "" || gw.LastReply() != msgs.Get(messages.NoPermission) {
		t.Errorf("username = %q reply = %q", gw.Username, gw.LastReply())
	}
}

func TestSetAvatar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.png":
			w.Write(pngHeader)
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html><body>hi</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	b, gw, msgs := newBot(t, adminTable())

	tests := []struct {
		name    string
		arg     string
		want    string
		changed bool
	}{
		{"no url", "", msgs.Get(messages.SetAvatarInvalidURL), false},
		{"not http", "ftp://example.com/a.png", msgs.Get(messages.SetAvatarInvalidURL), false},
		{"missing", srv.URL + "/gone.png", msgs.Format(messages.SetAvatarError, "download avatar: 404 Not Found"), false},
		{"not an image", srv.URL + "/page", msgs.Format(messages.SetAvatarError, errNotImage.Error()), false},
		{"image", srv.URL + "/a.png", msgs.Get(messages.SetAvatarSuccess), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw.Avatar = ""
			run(t, b, strings.TrimSpace("!setavatar "+tt.arg))
			if got := gw.LastReply(); got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
			if changed := gw.Avatar != ""; changed != tt.changed {
				t.Errorf("avatar changed = %v, want %v", changed, tt.changed)
			}
			if tt.changed && !strings.HasPrefix(gw.Avatar, "data:image/png;base64,") {
				t.Errorf("avatar = %q", gw.Avatar)
			}
		})
	}
}
