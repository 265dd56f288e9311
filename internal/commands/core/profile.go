package core

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/bot"
	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/messages"
)

const maxAvatarBytes = 8 << 20

var (
	errAvatarTooLarge = errors.New("image is larger than 8 MiB")
	errNotImage       = errors.New("URL does not point to an image")
)

var avatarClient = &http.Client{Timeout: 20 * time.Second}

func setUsername(_ context.Context, b *bot.Bot, inv *command.Invocation) error {
	name := strings.TrimSpace(strings.Join(inv.Args, " "))
	if name == "" {
		return b.Reply(inv.Message, messages.SetUsernameInvalid)
	}
	if err := b.Gateway.SetUsername(name); err != nil {
		log.Warn().Err(err).Str("username", name).Msg("core: username change failed")
		return b.Reply(inv.Message, messages.SetUsernameError, err.Error())
	}
	return b.Reply(inv.Message, messages.SetUsernameSuccess, name)
}

func setAvatar(ctx context.Context, b *bot.Bot, inv *command.Invocation) error {
	if len(inv.Args) == 0 {
		return b.Reply(inv.Message, messages.SetAvatarInvalidURL)
	}
	u, err := url.Parse(strings.Trim(inv.Args[0], "<>"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return b.Reply(inv.Message, messages.SetAvatarInvalidURL)
	}

	dataURI, err := fetchAvatar(ctx, u.String())
	if err == nil {
		err = b.Gateway.SetAvatar(dataURI)
	}
	if err != nil {
		log.Warn().Err(err).Str("url", u.String()).Msg("core: avatar change failed")
		return b.Reply(inv.Message, messages.SetAvatarError, err.Error())
	}
	return b.Reply(inv.Message, messages.SetAvatarSuccess)
}

// fetchAvatar downloads an image and returns it as a data URI.
func fetchAvatar(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := avatarClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download avatar: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes+1))
	if err != nil {
		return "", fmt.Errorf("download avatar: %w", err)
	}
	if len(body) > maxAvatarBytes {
		return "", errAvatarTooLarge
	}

	mime := http.DetectContentType(body)
	if !strings.HasPrefix(mime, "image/") {
		return "", errNotImage
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}
