package engo

import (
	"github.com/EngoEngine/engo"
)

// Button names registered by SetupInputBindings.
const (
	ButtonPause = "pause"
	ButtonStep  = "step"
	ButtonReset = "reset"
	ButtonQuit  = "quit"
)

// Command is a viewer action triggered from the keyboard.
type Command int

const (
	CommandNone Command = iota
	CommandTogglePause
	CommandStep
	CommandReset
	CommandQuit
)

// SetupInputBindings registers the viewer key bindings. Space pauses, N
// advances one step while paused, R starts a new episode and Escape quits.
func SetupInputBindings() {
	engo.Input.RegisterButton(ButtonPause, engo.KeySpace)
	engo.Input.RegisterButton(ButtonStep, engo.KeyN)
	engo.Input.RegisterButton(ButtonReset, engo.KeyR)
	engo.Input.RegisterButton(ButtonQuit, engo.KeyEscape, engo.KeyQ)
}

// pollCommand reads the command pressed this frame.
func pollCommand() Command {
	switch {
	case engo.Input.Button(ButtonQuit).JustPressed():
		return CommandQuit
	case engo.Input.Button(ButtonPause).JustPressed():
		return CommandTogglePause
	case engo.Input.Button(ButtonStep).JustPressed():
		return CommandStep
	case engo.Input.Button(ButtonReset).JustPressed():
		return CommandReset
	}
	return CommandNone
}
