package messages

import (
	"errors"
	"testing"
)

func TestOverridesApply(t *testing.T) {
	c, err := New(map[string]string{"NO_PERMISSION": "Nope."})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Get(NoPermission); got != "Nope." {
		t.Errorf("NoPermission = %q", got)
	}
	if got := c.Get(UnknownCommand); got != defaults[UnknownCommand] {
		t.Errorf("UnknownCommand changed to %q", got)
	}
}

func TestUnknownOverrideRejected(t *testing.T) {
	if _, err := New(map[string]string{"NOT_A_KEY": "x"}); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("err = %v, want ErrUnknownKey", err)
	}
}

func TestFormat(t *testing.T) {
	c, _ := New(nil)
	want := "Hey Ann, you should try `!help` for a list of commands. :ok_hand:"
	if got := c.Format(BotMentioned, "Ann", "!"); got != want {
		t.Errorf("got %q", got)
	}
	if got := c.Format(Pausing); got != "Pausing!" {
		t.Errorf("got %q", got)
	}
}

func TestEveryKeyHasDefault(t *testing.T) {
	keys := []Key{
		BotMentioned, UnknownCommand, NoPermission, RateLimited, CommandError,
		HelpUnknown, HelpWelcomeDM, HelpDMFailed,
		SetAvatarSuccess, SetAvatarError, SetAvatarInvalidURL,
		SetUsernameSuccess, SetUsernameError, SetUsernameInvalid,
		JoinNotInVoice, JoinAlreadyConnected, JoinFailed, JoinSuccess,
		LeaveNotConnected, LeaveSuccess, NotConnectedToVoice, NotInSendersChannel,
		PlayMissingURL, PlayUnknownURL, PlayResolveError, PlayQueued, PlayQueuedMany,
		Pausing, Resuming, ResumingQueue, ResumedIdle, Stopping, Skipping,
		AlreadyPlaying, AlreadyStopped, NotPlaying, NothingPlaying,
		QueueEmpty, QueueHeader, QueueCleared,
	}
	for _, k := range keys {
		if defaults[k] == "" {
			t.Errorf("%s has no default", k)
		}
	}
}
