package bot

import "github.com/bwmarrin/discordgo"

// optionMap indexes the options of a slash command by name
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	indexed := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, option := range options {
		indexed[option.Name] = option
	}
	return indexed
}
