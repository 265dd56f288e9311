// Package messages holds every user-facing reply string.
package messages

import (
	"errors"
	"fmt"
	"maps"
)

type Key string

const (
	BotMentioned   Key = "BOT_MENTIONED"
	UnknownCommand Key = "UNKNOWN_COMMAND"
	NoPermission   Key = "NO_PERMISSION"
	RateLimited    Key = "RATE_LIMITED"
	CommandError   Key = "COMMAND_ERROR"

	HelpUnknown   Key = "HELP_COMMAND_UNKNOWN"
	HelpWelcomeDM Key = "HELP_COMMAND_WELCOME_DM"
	HelpDMFailed  Key = "HELP_COMMAND_DM_FAILED"

	SetAvatarSuccess    Key = "SET_AVATAR_SUCCESS"
	SetAvatarError      Key = "SET_AVATAR_ERROR"
	SetAvatarInvalidURL Key = "SET_AVATAR_INVALID_URL"

	SetUsernameSuccess Key = "SET_USERNAME_SUCCESS"
	SetUsernameError   Key = "SET_USERNAME_ERROR"
	SetUsernameInvalid Key = "SET_USERNAME_INVALID_NAME"

	JoinNotInVoice       Key = "JOIN_COMMAND_CANT_JOIN"
	JoinAlreadyConnected Key = "JOIN_COMMAND_ALREADY_CONNECTED"
	JoinFailed           Key = "JOIN_COMMAND_FAILED"
	JoinSuccess          Key = "JOIN_COMMAND_SUCCESS"

	LeaveNotConnected Key = "LEAVE_COMMAND_NOT_CONNECTED"
	LeaveSuccess      Key = "LEAVE_COMMAND_SUCCESS"

	NotConnectedToVoice Key = "NOT_CONNECTED_TO_VOICE"
	NotInSendersChannel Key = "NOT_IN_SENDERS_CHANNEL"

	PlayMissingURL   Key = "PLAY_MISSING_URL"
	PlayUnknownURL   Key = "PLAY_UNKNOWN_URL"
	PlayResolveError Key = "PLAY_RESOLVE_ERROR"
	PlayQueued       Key = "PLAY_QUEUED"
	PlayQueuedMany   Key = "PLAY_QUEUED_MANY"

	Pausing        Key = "PAUSING"
	Resuming       Key = "RESUMING"
	ResumingQueue  Key = "RESUMING_QUEUE"
	ResumedIdle    Key = "RESUMED_IDLE"
	Stopping       Key = "STOPPING"
	Skipping       Key = "SKIPPING"
	AlreadyPlaying Key = "ALREADY_PLAYING"
	AlreadyStopped Key = "ALREADY_STOPPED"
	NotPlaying     Key = "NOT_PLAYING"
	NothingPlaying Key = "NOTHING_PLAYING"
	QueueEmpty     Key = "QUEUE_IS_EMPTY"
	QueueHeader    Key = "QUEUE_HEADER"
	QueueCleared   Key = "QUEUE_CLEARED"
)

var defaults = map[Key]string{
	BotMentioned:   "Hey %s, you should try `%shelp` for a list of commands. :ok_hand:",
	UnknownCommand: "Hmmm. I couldn't find that command... did you mistype it?",
	NoPermission:   "You don't have permission for that command.",
	RateLimited:    "Easy there! Give me a moment before the next command.",
	CommandError:   "Something went wrong while running that command.",

	HelpUnknown:   "I can't find a command or alias called `%s`... try `%shelp` for the full list.",
	HelpWelcomeDM: "Here's everything you can ask me to do:",
	HelpDMFailed:  "I couldn't send you a direct message. Do you have DMs turned off?",

	SetAvatarSuccess:    "Looking fresh! Avatar updated. :ok_hand:",
	SetAvatarError:      "I couldn't change my avatar:\n```%s```",
	SetAvatarInvalidURL: "That doesn't look like an image URL I can use.",

	SetUsernameSuccess: "From now on, call me **%s**. :ok_hand:",
	SetUsernameError:   "I couldn't change my username:\n```%s```",
	SetUsernameInvalid: "You need to give me a new username.",

	JoinNotInVoice:       "You need to be in a voice channel before requesting I join you.",
	JoinAlreadyConnected: "I'm already in a voice channel. Use `%sdisconnect` first.",
	JoinFailed:           "I couldn't join your voice channel:\n```%s```",
	JoinSuccess:          "Joined <#%s>. :ok_hand:",

	LeaveNotConnected: "I can't disconnect if I'm not connected...",
	LeaveSuccess:      "Bye! :wave:",

	NotConnectedToVoice: "I'm not connected to a voice channel. Try `%ssummon` first.",
	NotInSendersChannel: "You need to be in my voice channel to do that.",

	PlayMissingURL:   "You need to give me a URL to play.",
	PlayUnknownURL:   "Sorry, I couldn't understand that URL. I can play YouTube, Spotify and SoundCloud links.",
	PlayResolveError: "I couldn't load that:\n```%s```",
	PlayQueued:       "Queued **%s**.",
	PlayQueuedMany:   "Queued %d songs.",

	Pausing:        "Pausing!",
	Resuming:       "Resuming!",
	ResumingQueue:  "Resuming the queue!",
	ResumedIdle:    "Ready to play again, but the queue is empty.",
	Stopping:       "Stopping!",
	Skipping:       "Skipping **%s**.",
	AlreadyPlaying: "I'm already playing!",
	AlreadyStopped: "I'm already stopped.",
	NotPlaying:     "I'm not playing anything right now.",
	NothingPlaying: "There's nothing playing.",
	QueueEmpty:     "The queue is empty.",
	QueueHeader:    "**Up next** (%d):",
	QueueCleared:   "Removed %d songs from the queue.",
}

var ErrUnknownKey = errors.New("unknown message key")

// Catalog resolves keys to strings. It is read-only after New.
type Catalog struct {
	strings map[Key]string
}

// New returns the default catalog with overrides applied.
func New(overrides map[string]string) (*Catalog, error) {
	c := &Catalog{strings: maps.Clone(defaults)}
	for k, v := range overrides {
		if _, ok := defaults[Key(k)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, k)
		}
		c.strings[Key(k)] = v
	}
	return c, nil
}

// Get returns the raw string for key.
func (c *Catalog) Get(key Key) string {
	if s, ok := c.strings[key]; ok {
		return s
	}
	return string(key)
}

// Format fills the string for key with args.
func (c *Catalog) Format(key Key, args ...any) string {
	if len(args) == 0 {
		return c.Get(key)
	}
	return fmt.Sprintf(c.Get(key), args...)
}
