package messenger

import (
	"errors"
	"strings"
)

// ButtonDomain prefixes every button ID owned by this server
const ButtonDomain = "lieng"

const buttonSeparator = "_"

// ErrInvalidButtonID is returned when a button ID cannot be parsed
var ErrInvalidButtonID = errors.New("invalid button id")

// ButtonAction is a parsed button ID
type ButtonAction struct {
	Action   string
	GameID   string
	Location Location
}

// EncodeButtonID returns lieng_<action>_<gameId>_<clanId>_<channelId>
func EncodeButtonID(action, gameID string, loc Location) string {
	return strings.Join([]string{ButtonDomain, action, gameID, loc.ClanID, loc.ChannelID}, buttonSeparator)
}

// ParseButtonID parses a button ID created by EncodeButtonID
// The game ID may contain the separator, so the location is read from the end and
// everything between the action and the location is the game ID.
func ParseButtonID(id string) (ButtonAction, error) {
	parts := strings.Split(id, buttonSeparator)
	if len(parts) < 5 || parts[0] != ButtonDomain {
		return ButtonAction{}, ErrInvalidButtonID
	}

	n := len(parts)
	action := ButtonAction{
		Action: parts[1],
		GameID: strings.Join(parts[2:n-2], buttonSeparator),
		Location: Location{
			ClanID:    parts[n-2],
			ChannelID: parts[n-1],
		},
	}

	if action.Action == "" || action.GameID == "" || action.Location.ClanID == "" || action.Location.ChannelID == "" {
		return ButtonAction{}, ErrInvalidButtonID
	}

	return action, nil
}
