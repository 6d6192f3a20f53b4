package announce

import (
	"strconv"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// channelChatID accepts either a numeric chat id or an @channel username.
func channelChatID(channel string) telego.ChatID {
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return tu.ID(id)
	}
	return tu.Username(channel)
}
