package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/keshon/musicbot/internal/bot/bottest"
	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
	"github.com/keshon/musicbot/internal/music/player"
	"github.com/keshon/musicbot/internal/music/track"
	"github.com/keshon/musicbot/internal/permissions"
	"github.com/keshon/musicbot/internal/storage"
	"github.com/keshon/musicbot/internal/voice"
)

type memAudit struct {
	recs []storage.CommandHistoryRecord
}

func (m *memAudit) AppendCommandToHistory(_ string, rec storage.CommandHistoryRecord) error {
	m.recs = append(m.recs, rec)
	return nil
}

type fixture struct {
	bot   *Bot
	gw    *bottest.Gateway
	audit *memAudit
	msgs  *messages.Catalog
}

func newFixture(t *testing.T, cfg Config, table permissions.Table) *fixture {
	t.Helper()
	reg, err := command.NewRegistry(command.Defaults(), nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	perms, err := permissions.NewResolver(table)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	msgs, err := messages.New(nil)
	if err != nil {
		t.Fatalf("messages.New: %v", err)
	}
	gw := bottest.NewGateway()
	p := player.New(bottest.Streamer{})
	t.Cleanup(p.Close)
	vm := voice.NewManager(&bottest.Joiner{}, p)
	audit := &memAudit{}
	b := New(cfg, gw, reg, perms, msgs, vm, p, &bottest.Resolver{}, audit)
	return &fixture{bot: b, gw: gw, audit: audit, msgs: msgs}
}

func message(content string) *command.Message {
	return &command.Message{ID: "m1", ChannelID: "c1", GuildID: "g1", AuthorID: "u1", AuthorName: "ann", Content: content}
}

func TestDispatchGates(t *testing.T) {
	table := permissions.Defaults()
	table.Global["skip"] = false

	tests := []struct {
		name      string
		content   string
		wantReply messages.Key
		wantRan   bool
	}{
		{"runs allowed command", "!help", "", true},
		{"case insensitive alias", "!H", "", true},
		{"unknown command", "!dance", messages.UnknownCommand, false},
		{"denied command", "!skip", messages.NoPermission, false},
		{"prefix only", "!", "", false},
		{"prefix with spaces", "!   ", "", false},
		{"no prefix", "help", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{Prefix: "!"}, table)
			ran := false
			f.bot.Handle("help", func(context.Context, *Bot, *command.Invocation) error {
				ran = true
				return nil
			})
			f.bot.Handle("skip", func(context.Context, *Bot, *command.Invocation) error {
				ran = true
				return nil
			})

			if err := f.bot.HandleMessage(context.Background(), message(tt.content)); err != nil {
				t.Fatalf("HandleMessage: %v", err)
			}
			if ran != tt.wantRan {
				t.Errorf("ran = %v, want %v", ran, tt.wantRan)
			}
			replies := f.gw.Replies()
			if tt.wantReply == "" {
				if len(replies) != 0 {
					t.Errorf("unexpected replies %q", replies)
				}
				return
			}
			if len(replies) != 1 || replies[0] != f.msgs.Get(tt.wantReply) {
				t.Errorf("replies = %q, want one %s", replies, tt.wantReply)
			}
		})
	}
}

func TestDispatchPassesArgs(t *testing.T) {
	f := newFixture(t, Config{Prefix: "$"}, permissions.Defaults())
	var got *command.Invocation
	f.bot.Handle("play", func(_ context.Context, _ *Bot, inv *command.Invocation) error {
		got = inv
		return nil
	})
	if err := f.bot.HandleMessage(context.Background(), message("$p  https://youtu.be/x   extra")); err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("handler not called")
	}
	if got.Command.Key != "play" || strings.Join(got.Args, "|") != "https://youtu.be/x|extra" {
		t.Errorf("invocation = %+v", got)
	}
}

func TestDispatchPropagatesHandlerError(t *testing.T) {
	f := newFixture(t, Config{}, permissions.Defaults())
	boom := errors.New("boom")
	f.bot.Handle("help", func(context.Context, *Bot, *command.Invocation) error { return boom })

	if err := f.bot.Dispatch(context.Background(), message("!help")); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestDispatchAudit(t *testing.T) {
	table := permissions.Defaults()
	table.Users = map[string]string{"u1": "admin"}
	f := newFixture(t, Config{}, table)
	f.bot.Handle("setusername", func(context.Context, *Bot, *command.Invocation) error { return nil })

	if err := f.bot.Dispatch(context.Background(), message("!setusername dj bot")); err != nil {
		t.Fatal(err)
	}
	if len(f.audit.recs) != 1 {
		t.Fatalf("records = %d, want 1", len(f.audit.recs))
	}
	rec := f.audit.recs[0]
	if rec.Command != "setusername" || rec.Group != "admin" || !rec.Allowed || rec.Args != "dj bot" {
		t.Errorf("record = %+v", rec)
	}
}

func TestMentionReply(t *testing.T) {
	f := newFixture(t, Config{Prefix: "!"}, permissions.Defaults())
	msg := message("hello <@bot>")
	msg.Mentioned = true

	if err := f.bot.HandleMessage(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	want := f.msgs.Format(messages.BotMentioned, "ann", "!")
	if got := f.gw.LastReply(); got != want {
		t.Errorf("reply = %q, want %q", got, want)
	}
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, Config{CommandRate: 0.001, CommandBurst: 2}, permissions.Defaults())
	calls := 0
	f.bot.Handle("help", func(context.Context, *Bot, *command.Invocation) error {
		calls++
		return nil
	})

	for range 3 {
		if err := f.bot.Dispatch(context.Background(), message("!help")); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if got := f.gw.Replies(); len(got) != 1 || got[0] != f.msgs.Get(messages.RateLimited) {
		t.Errorf("replies = %q", got)
	}

	other := message("!help")
	other.AuthorID = "u2"
	if err := f.bot.Dispatch(context.Background(), other); err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Error("limit leaked across users")
	}
}

func TestMiddlewareOrder(t *testing.T) {
	f := newFixture(t, Config{}, permissions.Defaults())
	var order []string
	mark := func(name string) command.Middleware {
		return func(next command.Handler) command.Handler {
			return func(ctx context.Context, inv *command.Invocation) error {
				order = append(order, name)
				return next(ctx, inv)
			}
		}
	}
	f.bot.Handle("help", func(context.Context, *Bot, *command.Invocation) error {
		order = append(order, "body")
		return nil
	}, WithCommandLogger(), mark("outer"), mark("inner"))

	if err := f.bot.Dispatch(context.Background(), message("!help")); err != nil {
		t.Fatal(err)
	}
	if strings.Join(order, ",") != "outer,inner,body" {
		t.Errorf("order = %v", order)
	}
}

func TestSameVoiceChannel(t *testing.T) {
	f := newFixture(t, Config{Prefix: "!"}, permissions.Defaults())
	ran := false
	f.bot.Handle("pause", func(context.Context, *Bot, *command.Invocation) error {
		ran = true
		return nil
	}, f.bot.WithSameVoiceChannel())

	ctx := context.Background()
	if err := f.bot.Dispatch(ctx, message("!pause")); err != nil {
		t.Fatal(err)
	}
	if ran || f.gw.LastReply() != f.msgs.Format(messages.NotConnectedToVoice, "!") {
		t.Fatalf("without session: ran=%v reply=%q", ran, f.gw.LastReply())
	}

	if _, err := f.bot.Voice.Join(ctx, "g1", "vc1"); err != nil {
		t.Fatal(err)
	}
	f.gw.PutInVoice("u1", "vc2")
	if err := f.bot.Dispatch(ctx, message("!pause")); err != nil {
		t.Fatal(err)
	}
	if ran || f.gw.LastReply() != f.msgs.Get(messages.NotInSendersChannel) {
		t.Fatalf("other channel: ran=%v reply=%q", ran, f.gw.LastReply())
	}

	f.gw.PutInVoice("u1", "vc1")
	if err := f.bot.Dispatch(ctx, message("!pause")); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("handler did not run for caller in the bot's channel")
	}
}

func TestWatchPlayer(t *testing.T) {
	f := newFixture(t, Config{ChannelID: "c1"}, permissions.Defaults())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.bot.WatchPlayer(ctx)

	if _, err := f.bot.Voice.Join(ctx, "g1", "vc1"); err != nil {
		t.Fatal(err)
	}
	f.bot.Player.Enqueue(&track.Track{ID: "1", Title: "Song", Artist: "Band"})

	waitFor(t, func() bool { return len(f.gw.Embeds()) == 1 })
	if err := f.bot.Player.Pause(); err != nil {
		t.Fatal(err)
	}
	if err := f.bot.Player.Stop(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(f.gw.Statuses()) == 3 })

	want := []string{"Band - Song", "Band - Song (paused)", ""}
	if got := f.gw.Statuses(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("statuses = %q, want %q", got, want)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
