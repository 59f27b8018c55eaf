package def

import "github.com/bwmarrin/discordgo"

var SMPCommand = &discordgo.ApplicationCommand{
	Name:        "smp",
	Description: "Check if user is DonutSMP related",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The user to check",
			Required:    true,
		},
	},
}
