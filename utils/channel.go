package utils

import (
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// DefaultReviewKeyword is matched against channel names when no review
// channel was configured.
const DefaultReviewKeyword = "vouches"

// ReviewChannel remembers where review embeds are posted. It is shared by
// every interaction handler; Set is last-write-wins.
type ReviewChannel struct {
	mu      sync.RWMutex
	id      string
	keyword string
}

func NewReviewChannel(id, keyword string) *ReviewChannel {
	if keyword == "" {
		keyword = DefaultReviewKeyword
	}
	return &ReviewChannel{id: id, keyword: strings.ToLower(keyword)}
}

func (r *ReviewChannel) Set(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.id = channelID
}

func (r *ReviewChannel) ID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.id
}

// Resolve returns the configured channel or, failing that, the first text
// channel whose name contains the keyword. A found channel is remembered.
func (r *ReviewChannel) Resolve(channels []*discordgo.Channel) (string, bool) {
	if id := r.ID(); id != "" {
		return id, true
	}

	for _, ch := range channels {
		if ch == nil || ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if strings.Contains(strings.ToLower(ch.Name), r.keyword) {
			r.mu.Lock()
			if r.id == "" {
				r.id = ch.ID
			}
			id := r.id
			r.mu.Unlock()
			return id, true
		}
	}
	return "", false
}

func (r *ReviewChannel) Keyword() string {
	return r.keyword
}
