package def

import "github.com/bwmarrin/discordgo"

var ReviewCommand = &discordgo.ApplicationCommand{
	Name:        "rev",
	Description: "Send review prompt to a user",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The user to send a review prompt to",
			Required:    true,
		},
	},
}
