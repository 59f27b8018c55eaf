package command

import (
	"smpverify/command/def"

	"github.com/bwmarrin/discordgo"
)

// AllCommands contains all of the commands
var AllCommands = []*discordgo.ApplicationCommand{
	def.VerifyCommand,
	def.ReviewCommand,
	def.SMPCommand,
	def.AddHistoricalCommand,
	def.SetVouchesChannelCommand,
}
