package bridge

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/discordshim/discordshim/discord"
	"github.com/discordshim/discordshim/observability"
)

const presenceURL = "https://octoprint.org"

// presenceUpdater publishes the aggregate "streaming to N instances"
// presence, at most once per interval across all callers. Only shared
// deployments advertise the count; single-instance servers relay the
// instance's own presence text instead.
type presenceUpdater struct {
	session  discord.Session
	enabled  bool
	interval time.Duration
	log      zerolog.Logger
	obs      observability.BridgeObserver

	mu         sync.Mutex // Guards lastUpdate.
	lastUpdate time.Time
}

func (p *presenceUpdater) update(instances int) {
	if !p.enabled {
		p.obs.Presence(observability.PresenceResultDisabled)
		return
	}

	// The window is claimed under the lock, before the API call, so two
	// concurrent callers cannot both publish.
	p.mu.Lock()
	now := time.Now()
	if !p.lastUpdate.IsZero() && now.Sub(p.lastUpdate) < p.interval {
		p.mu.Unlock()
		p.obs.Presence(observability.PresenceResultRateLimited)
		return
	}
	p.lastUpdate = now
	p.mu.Unlock()

	err := p.session.SetPresence(discord.Activity{
		Kind: discord.ActivityStreaming,
		Name: fmt.Sprintf("to %d instances", instances),
		URL:  presenceURL,
	})
	if err != nil {
		p.obs.Presence(observability.PresenceResultError)
		p.log.Error().Err(err).Msg("failed to update presence")
		return
	}
	p.obs.Presence(observability.PresenceResultUpdated)
}
