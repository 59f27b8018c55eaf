package def

import "github.com/bwmarrin/discordgo"

var SetVouchesChannelCommand = &discordgo.ApplicationCommand{
	Name:        "set_vouches_channel",
	Description: "Set the channel for vouches",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "channel",
			Description:  "The channel to post vouches in",
			Required:     true,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		},
	},
}
