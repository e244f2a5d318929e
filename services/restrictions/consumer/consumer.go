// Package consumer drives the durable log's consumer-group loop:
// read a batch, dispatch each entry through its handler and rules,
// record tripwire state on a fired rule, and acknowledge.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/eventhandler"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/observability"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/rules"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/streamlog"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/tripwire"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/userstore"
)

// Config holds the consumer's tunables, independent of backing-store choice.
type Config struct {
	Stream   string
	Group    string
	Consumer string
	Count    int64
	Block    time.Duration
	// Workers is how many goroutines read from the group concurrently,
	// each under its own consumer name derived from Consumer. They share
	// one KeyedMutex, which is what makes concurrent read-modify-write on
	// the same user_id across workers safe. Values <1 are treated as 1.
	Workers int
}

// Consumer drives the read → dispatch → ack loop described in spec §4.5.
type Consumer struct {
	log       streamlog.Log
	cfg       Config
	store     userstore.UserStore
	twCtl     tripwire.Controller
	handlers  *eventhandler.Registry
	ruleReg   *rules.Registry
	processor *rules.Processor
	locks     *KeyedMutex
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// SetMetrics attaches an optional metrics sink. Nil-safe if never called.
func (c *Consumer) SetMetrics(m *observability.Metrics) {
	c.metrics = m
}

// New wires a Consumer from its collaborators.
func New(
	log streamlog.Log,
	cfg Config,
	store userstore.UserStore,
	twCtl tripwire.Controller,
	handlers *eventhandler.Registry,
	ruleReg *rules.Registry,
	processor *rules.Processor,
	logger zerolog.Logger,
) *Consumer {
	return &Consumer{
		log:       log,
		cfg:       cfg,
		store:     store,
		twCtl:     twCtl,
		handlers:  handlers,
		ruleReg:   ruleReg,
		processor: processor,
		locks:     NewKeyedMutex(),
		logger:    logger.With().Str("component", "consumer").Logger(),
	}
}

// Start ensures the consumer group exists, then runs cfg.Workers read
// loops concurrently until ctx is cancelled. Shutdown is cooperative: each
// worker checks ctx.Done() between reads; in-flight unacknowledged entries
// stay pending for redelivery. All workers share c.locks, so the
// per-user_id serialization in processEntry holds across workers, not just
// within one.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.log.CreateGroup(ctx, c.cfg.Stream, c.cfg.Group); err != nil {
		return err
	}

	workers := c.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	c.logger.Info().Str("stream", c.cfg.Stream).Str("group", c.cfg.Group).
		Str("consumer", c.cfg.Consumer).Int("workers", workers).Msg("consumer group ready, entering read loop")

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		consumerName := c.cfg.Consumer
		if workers > 1 {
			consumerName = c.cfg.Consumer + "-" + strconv.Itoa(i)
		}
		go func(consumerName string) {
			defer wg.Done()
			c.runWorker(ctx, consumerName)
		}(consumerName)
	}
	wg.Wait()

	return nil
}

// runWorker is one goroutine's read → dispatch loop under its own consumer
// name within the shared group.
func (c *Consumer) runWorker(ctx context.Context, consumerName string) {
	logger := c.logger.With().Str("consumer", consumerName).Logger()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("consumer worker stopping on context cancellation")
			return
		default:
		}

		entries, err := c.log.ReadGroup(ctx, c.cfg.Group, consumerName, c.cfg.Stream, c.cfg.Count, c.cfg.Block)
		if err != nil {
			if errors.Is(err, model.ErrBackingStoreTransient) {
				logger.Warn().Err(err).Msg("transient read error, retrying")
				continue
			}
			logger.Error().Err(err).Msg("consumer worker stopping on read error")
			return
		}

		for _, entry := range entries {
			c.processEntry(ctx, entry)
		}
	}
}

// processEntry runs one log entry through parse → dispatch → rules →
// tripwire → ack. It never returns an error: every failure mode is
// resolved locally per the taxonomy in spec §7 (ack-and-drop, or leave
// unacknowledged for redelivery).
func (c *Consumer) processEntry(ctx context.Context, entry streamlog.Entry) {
	logger := c.logger.With().Str("entry_id", entry.ID).Logger()

	var props map[string]interface{}
	if err := json.Unmarshal([]byte(entry.Fields["event_properties"]), &props); err != nil {
		logger.Warn().Err(err).Msg("unparseable event_properties, dropping entry")
		c.trackOutcome(entry.Fields["name"], "dropped")
		c.ack(ctx, entry.ID, logger)
		return
	}

	event := model.Event{Name: entry.Fields["name"], EventProperties: props}

	userID, ok := event.UserID()
	if !ok {
		logger.Warn().Str("event_name", event.Name).Msg("missing or invalid user_id, dropping entry")
		c.trackOutcome(event.Name, "dropped")
		c.ack(ctx, entry.ID, logger)
		return
	}
	logger = logger.With().Str("user_id", userID).Str("event_name", event.Name).Logger()

	handler, ok := c.handlers.Get(event.Name)
	if !ok {
		logger.Warn().Msg("unknown event name, dropping entry")
		c.trackOutcome(event.Name, "dropped")
		c.ack(ctx, entry.ID, logger)
		return
	}

	unlock := c.locks.Lock(userID)
	defer unlock()

	agg, err := c.getOrCreateUser(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msg("backing store error fetching user, leaving entry pending")
		c.trackOutcome(event.Name, "pending")
		return
	}

	if err := handler.Handle(ctx, event, agg); err != nil {
		if errors.Is(err, model.ErrBadEventProperties) {
			logger.Warn().Err(err).Msg("bad event properties, dropping entry")
			c.trackOutcome(event.Name, "dropped")
			c.ack(ctx, entry.ID, logger)
			return
		}
		logger.Error().Err(err).Msg("handler error, leaving entry pending")
		c.trackOutcome(event.Name, "pending")
		return
	}

	ruleNames, _ := c.handlers.RulesFor(event.Name)
	for _, ruleName := range ruleNames {
		rule, ok := c.ruleReg.Get(ruleName)
		if !ok {
			logger.Error().Str("rule", ruleName).Msg("rule name in event mapping has no registered implementation")
			continue
		}

		outcome, err := c.processor.Process(ctx, rule, agg)
		if err != nil {
			logger.Error().Err(err).Str("rule", ruleName).Msg("rule processing error, leaving entry pending")
			c.trackOutcome(event.Name, "pending")
			return
		}
		if c.metrics != nil {
			c.metrics.TrackRuleOutcome(ruleName, outcome.String())
		}

		if outcome == rules.Applied {
			total, err := c.store.Count(ctx)
			if err != nil {
				logger.Error().Err(err).Str("rule", ruleName).Msg("failed to count users for tripwire, leaving entry pending")
				c.trackOutcome(event.Name, "pending")
				return
			}
			if err := c.twCtl.RecordAndRecompute(ctx, ruleName, agg.UserID, total); err != nil {
				logger.Error().Err(err).Str("rule", ruleName).Msg("tripwire record error, leaving entry pending")
				c.trackOutcome(event.Name, "pending")
				return
			}
			if c.metrics != nil {
				disabled, err := c.twCtl.IsDisabled(ctx, ruleName)
				if err == nil {
					c.metrics.TrackTripwireState(ruleName, disabled)
				}
			}
		}
	}

	c.trackOutcome(event.Name, "processed")
	c.ack(ctx, entry.ID, logger)
}

func (c *Consumer) trackOutcome(eventName, outcome string) {
	if c.metrics != nil {
		c.metrics.TrackEventOutcome(eventName, outcome)
	}
}

func (c *Consumer) getOrCreateUser(ctx context.Context, userID string) (*model.UserAggregate, error) {
	agg, err := c.store.Get(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return c.store.Create(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", userID, err)
	}
	return agg, nil
}

func (c *Consumer) ack(ctx context.Context, entryID string, logger zerolog.Logger) {
	if err := c.log.Ack(ctx, c.cfg.Stream, c.cfg.Group, entryID); err != nil {
		logger.Error().Err(err).Msg("failed to acknowledge entry")
	}
}
