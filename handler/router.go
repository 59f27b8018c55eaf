package handler

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// HandlerFunc handles one interaction.
type HandlerFunc func(s *discordgo.Session, i *discordgo.InteractionCreate)

// Router dispatches interactions by command name or custom ID prefix. Custom
// IDs may carry arguments after a colon ("review_modal:<id>"); only the part
// before the first colon selects the handler.
type Router struct {
	commandHandlers   map[string]HandlerFunc
	componentHandlers map[string]HandlerFunc
	modalHandlers     map[string]HandlerFunc
}

func NewRouter() *Router {
	return &Router{
		commandHandlers:   make(map[string]HandlerFunc),
		componentHandlers: make(map[string]HandlerFunc),
		modalHandlers:     make(map[string]HandlerFunc),
	}
}

// AddCommandHandler registers a handler for a slash command.
func (r *Router) AddCommandHandler(name string, handler HandlerFunc) {
	r.commandHandlers[name] = handler
}

// AddComponentHandler registers a handler for a message component.
func (r *Router) AddComponentHandler(customID string, handler HandlerFunc) {
	r.componentHandlers[customID] = handler
}

// AddModalHandler registers a handler for a modal submission.
func (r *Router) AddModalHandler(customID string, handler HandlerFunc) {
	r.modalHandlers[customID] = handler
}

// OnInteractionCreate is the main interaction router.
// It should be registered as the primary interaction handler on the session.
func (r *Router) OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if handler, ok := r.commandHandlers[i.ApplicationCommandData().Name]; ok {
			handler(s, i)
		}
	case discordgo.InteractionMessageComponent:
		if handler, ok := r.componentHandlers[HandlerKey(i.MessageComponentData().CustomID)]; ok {
			handler(s, i)
		}
	case discordgo.InteractionModalSubmit:
		if handler, ok := r.modalHandlers[HandlerKey(i.ModalSubmitData().CustomID)]; ok {
			handler(s, i)
		}
	}
}

// HandlerKey returns the routing part of a custom ID.
func HandlerKey(customID string) string {
	key, _, _ := strings.Cut(customID, ":")
	return key
}
