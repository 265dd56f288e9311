package command

// Descriptor describes one command. Descriptors are immutable once a
// Registry has been built from them.
type Descriptor struct {
	Key         string   `json:"key"`
	Aliases     []string `json:"aliases"`
	Name        string   `json:"name"`
	Usage       string   `json:"usage"`
	Description string   `json:"description"`
	Permission  string   `json:"permission"`
}

// Override changes a default descriptor or adds a new one. Aliases are added
// to the defaults unless ReplaceAliases is set.
type Override struct {
	Aliases        []string `json:"aliases"`
	ReplaceAliases bool     `json:"replace_aliases"`
	Name           string   `json:"name"`
	Usage          string   `json:"usage"`
	Description    string   `json:"description"`
	Permission     string   `json:"permission"`
}

// Defaults returns the built-in command set in registration order.
func Defaults() []Descriptor {
	return []Descriptor{
		{
			Key:         "summon",
			Aliases:     []string{"summon", "s", "join"},
			Name:        "Summon",
			Usage:       "summon",
			Description: "Summons the bot to your voice channel.",
			Permission:  "summon",
		},
		{
			Key:         "disconnect",
			Aliases:     []string{"disconnect", "d", "leave"},
			Name:        "Disconnect",
			Usage:       "disconnect",
			Description: "Disconnects the bot from the voice channel and stops playback.",
			Permission:  "disconnect",
		},
		{
			Key:         "play",
			Aliases:     []string{"play", "p"},
			Name:        "Play",
			Usage:       "play <url>",
			Description: "Play a given YouTube, Spotify or SoundCloud URL. Supports videos, tracks and playlists.",
			Permission:  "play",
		},
		{
			Key:         "pause",
			Aliases:     []string{"pause"},
			Name:        "Pause",
			Usage:       "pause",
			Description: "Pauses the current song.",
			Permission:  "pause",
		},
		{
			Key:         "resume",
			Aliases:     []string{"resume"},
			Name:        "Resume",
			Usage:       "resume",
			Description: "Resumes from a paused or stopped state.",
			Permission:  "resume",
		},
		{
			Key:         "stop",
			Aliases:     []string{"stop"},
			Name:        "Stop",
			Usage:       "stop",
			Description: "Stops the current playlist and skips the current song.",
			Permission:  "stop",
		},
		{
			Key:         "skip",
			Aliases:     []string{"skip"},
			Name:        "Skip",
			Usage:       "skip",
			Description: "Skips the current song.",
			Permission:  "skip",
		},
		{
			Key:         "clear",
			Aliases:     []string{"clear"},
			Name:        "Clear",
			Usage:       "clear",
			Description: "Removes every song waiting in the queue.",
			Permission:  "clear",
		},
		{
			Key:         "nowplaying",
			Aliases:     []string{"nowplaying", "np"},
			Name:        "Now Playing",
			Usage:       "nowplaying",
			Description: "Shows the song that is currently playing.",
			Permission:  "nowplaying",
		},
		{
			Key:         "playlist",
			Aliases:     []string{"playlist", "queue"},
			Name:        "Playlist",
			Usage:       "playlist",
			Description: "Lists the songs waiting in the queue.",
			Permission:  "playlist",
		},
		{
			Key:         "help",
			Aliases:     []string{"help", "h"},
			Name:        "Help",
			Usage:       "help [command]",
			Description: "Sends you a list of commands, or details about one command.",
			Permission:  "help",
		},
		{
			Key:         "setusername",
			Aliases:     []string{"setusername"},
			Name:        "Set Username",
			Usage:       "setusername <new username>",
			Description: "Changes the bot's username.",
			Permission:  "setusername",
		},
		{
			Key:         "setavatar",
			Aliases:     []string{"setavatar"},
			Name:        "Set Avatar",
			Usage:       "setavatar <image url>",
			Description: "Changes the bot's avatar to the image at the given URL.",
			Permission:  "setavatar",
		},
	}
}
