package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/grid"
)

var (
	ErrEmptyQueue      = errors.New("nothing scheduled in this slot")
	ErrNothingPlayable = errors.New("no queued item could be played")
)

// State is the playback state.
type State int

const (
	Idle State = iota
	Loading
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Item is one queue entry handed to the player.
type Item struct {
	ContentID string
	URL       string
	Position  int // zero-based position in the queue
}

// Player plays one item at a time. Load starts loading an item, replacing
// anything in flight; the caller reports progress back through
// Controller.Started, Controller.Ended and Controller.Failed.
type Player interface {
	Load(ctx context.Context, item Item) error
	Stop()
}

// Controller plays a slot's queue sequentially:
//
//	Idle -> Loading -> Playing -> (ended | error) -> Loading(next) ... -> Idle
//
// Only one queue plays at a time. A Controller is not safe for concurrent use.
type Controller struct {
	player   Player
	resolver StreamResolver
	logger   zerolog.Logger

	state   State
	slot    grid.SlotKey
	queue   []string
	pos     int
	current Item
}

// NewController creates an idle controller.
func NewController(player Player, resolver StreamResolver, logger zerolog.Logger) *Controller {
	return &Controller{
		player:   player,
		resolver: resolver,
		logger:   logger.With().Str("component", "playback").Logger(),
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Slot returns the slot being played; ok is false when idle.
func (c *Controller) Slot() (grid.SlotKey, bool) {
	return c.slot, c.state != Idle
}

// Current returns the item being loaded or played; ok is false when idle.
func (c *Controller) Current() (Item, bool) {
	return c.current, c.state != Idle
}

// Remaining returns how many items are queued after the current one.
func (c *Controller) Remaining() int {
	if c.state == Idle {
		return 0
	}
	return len(c.queue) - c.pos - 1
}

// Toggle starts playing date/index, or stops when that slot is already
// playing. Any other playback is stopped first.
func (c *Controller) Toggle(ctx context.Context, campaigns []*campaign.Campaign, date string, index int) error {
	key := grid.Key(date, index)
	if c.state != Idle && c.slot == key {
		c.Stop()
		return nil
	}
	c.Stop()

	queue := BuildQueue(campaigns, date, index)
	if len(queue) == 0 {
		return ErrEmptyQueue
	}

	c.slot = key
	c.queue = queue
	c.pos = -1
	c.logger.Info().Str("slot", key.String()).Int("items", len(queue)).Msg("playback started")
	c.advance(ctx)
	if c.state == Idle {
		return fmt.Errorf("%w: %d items skipped", ErrNothingPlayable, len(queue))
	}
	return nil
}

// Started reports that the current item began playing.
func (c *Controller) Started() {
	if c.state == Loading {
		c.state = Playing
	}
}

// Ended reports that the current item finished and moves to the next one.
func (c *Controller) Ended(ctx context.Context) {
	if c.state == Idle {
		return
	}
	c.advance(ctx)
}

// Failed reports a stream error for the current item. Playback moves on.
func (c *Controller) Failed(ctx context.Context, err error) {
	if c.state == Idle {
		return
	}
	c.logger.Warn().Err(err).Str("content", c.current.ContentID).Msg("playback failed, skipping")
	c.advance(ctx)
}

// Stop cancels playback immediately.
func (c *Controller) Stop() {
	if c.state == Idle {
		return
	}
	c.player.Stop()
	c.reset()
	c.logger.Debug().Msg("playback stopped")
}

func (c *Controller) reset() {
	c.state = Idle
	c.slot = grid.SlotKey{}
	c.queue = nil
	c.pos = 0
	c.current = Item{}
}

// advance loads the next playable item, skipping entries that cannot be
// resolved or loaded. It returns to Idle when the queue is exhausted.
func (c *Controller) advance(ctx context.Context) {
	for {
		c.pos++
		if c.pos >= len(c.queue) {
			c.reset()
			c.logger.Debug().Msg("queue finished")
			return
		}

		id := c.queue[c.pos]
		url, err := c.resolver.StreamURL(id)
		if err != nil {
			c.logger.Warn().Err(err).Str("content", id).Msg("failed to resolve stream, skipping")
			continue
		}

		item := Item{ContentID: id, URL: url, Position: c.pos}
		c.state = Loading
		c.current = item
		if err := c.player.Load(ctx, item); err != nil {
			c.logger.Warn().Err(err).Str("content", id).Msg("failed to load stream, skipping")
			continue
		}
		return
	}
}
