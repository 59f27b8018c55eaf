package def

import "github.com/bwmarrin/discordgo"

var AddHistoricalCommand = &discordgo.ApplicationCommand{
	Name:        "add_historical",
	Description: "Add user to historical DonutSMP database",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The user to add to historical database",
			Required:    true,
		},
	},
}
