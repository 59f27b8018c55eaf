package def

import "github.com/bwmarrin/discordgo"

var VerifyCommand = &discordgo.ApplicationCommand{
	Name:        "verify",
	Description: "Display verification button",
}
