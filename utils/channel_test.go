package utils

import (
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestReviewChannel_Resolve(t *testing.T) {
	channels := []*discordgo.Channel{
		{ID: "1", Name: "general", Type: discordgo.ChannelTypeGuildText},
		{ID: "2", Name: "vouches-voice", Type: discordgo.ChannelTypeGuildVoice},
		{ID: "3", Name: "✅│Vouches", Type: discordgo.ChannelTypeGuildText},
		{ID: "4", Name: "old-vouches", Type: discordgo.ChannelTypeGuildText},
	}

	t.Run("finds first text channel by keyword and remembers it", func(t *testing.T) {
		rc := NewReviewChannel("", "")

		id, ok := rc.Resolve(channels)
		assert.True(t, ok)
		assert.Equal(t, "3", id)
		assert.Equal(t, "3", rc.ID())

		id, ok = rc.Resolve(nil)
		assert.True(t, ok)
		assert.Equal(t, "3", id)
	})

	t.Run("configured channel wins", func(t *testing.T) {
		rc := NewReviewChannel("99", "")
		id, ok := rc.Resolve(channels)
		assert.True(t, ok)
		assert.Equal(t, "99", id)
	})

	t.Run("nothing matches", func(t *testing.T) {
		rc := NewReviewChannel("", "reviews")
		_, ok := rc.Resolve(channels)
		assert.False(t, ok)
	})
}

func TestReviewChannel_ConcurrentSetIsLastWriteWins(t *testing.T) {
	rc := NewReviewChannel("", "")

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rc.Set(id)
			_, _ = rc.Resolve(nil)
		}()
	}
	wg.Wait()

	assert.Contains(t, []string{"a", "b", "c", "d"}, rc.ID())
}
