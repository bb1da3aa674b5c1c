package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command is one registry entry: the handler plus the routing attributes the
// wiring layer reads. Hidden commands are routed but kept out of the menu
// published to the bot API; Aliases are alternate names the registry lookup
// resolves to the same entry.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}
