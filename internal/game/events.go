package game

import "time"

// EventType names a kind of game event.
type EventType string

const (
	EventTypeGameStart     EventType = "game_start"
	EventTypeTurnStart     EventType = "turn_start"
	EventTypeDecision      EventType = "decision"
	EventTypeRoll          EventType = "roll"
	EventTypeTurnProgress  EventType = "turn_progress"
	EventTypeBust          EventType = "bust"
	EventTypeHold          EventType = "hold"
	EventTypeInvalidChoice EventType = "invalid_choice"
	EventTypeGameEnd       EventType = "game_end"
)

func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything that happens during a game that a player
// might want to see.
type GameEvent interface {
	EventType() EventType
}

// GameStartEvent is published once before the first turn.
type GameStartEvent struct {
	GameID      string
	Players     []string
	TargetScore int
	TimeLimit   time.Duration // zero for untimed games
}

func (e GameStartEvent) EventType() EventType { return EventTypeGameStart }

// TurnStartEvent is published when the cursor moves to a player.
type TurnStartEvent struct {
	Player     string
	Turn       int // 1-based across the whole game
	TotalScore int
}

func (e TurnStartEvent) EventType() EventType { return EventTypeTurnStart }

// DecisionEvent is published for every decision a policy makes.
type DecisionEvent struct {
	Player    string
	Decision  Decision
	Automatic bool
	TurnTotal int
}

func (e DecisionEvent) EventType() EventType { return EventTypeDecision }

// RollEvent is published for every die roll, bust or not.
type RollEvent struct {
	Player string
	Value  int
}

func (e RollEvent) EventType() EventType { return EventTypeRoll }

// TurnProgressEvent follows a scoring roll.
type TurnProgressEvent struct {
	Player     string
	TurnTotal  int
	TotalScore int
}

func (e TurnProgressEvent) EventType() EventType { return EventTypeTurnProgress }

// BustEvent follows a roll of 1. Lost is the turn total that was discarded.
type BustEvent struct {
	Player     string
	Lost       int
	TotalScore int
}

func (e BustEvent) EventType() EventType { return EventTypeBust }

// HoldEvent is published when a player banks their turn total.
type HoldEvent struct {
	Player     string
	Banked     int
	TotalScore int
}

func (e HoldEvent) EventType() EventType { return EventTypeHold }

// InvalidChoiceEvent is published when an interactive player types something
// other than a recognised token.
type InvalidChoiceEvent struct {
	Player string
	Input  string
}

func (e InvalidChoiceEvent) EventType() EventType { return EventTypeInvalidChoice }

// NewInvalidChoiceEvent records input that was neither token.
func NewInvalidChoiceEvent(player, input string) InvalidChoiceEvent {
	return InvalidChoiceEvent{Player: player, Input: input}
}

// GameEndEvent is published once the engine stops, whether because the
// target was reached or because time ran out.
type GameEndEvent struct {
	GameID string
	Winner string
	Score  int
	TimeUp bool
	Turns  int
	Scores []PlayerScore
}

func (e GameEndEvent) EventType() EventType { return EventTypeGameEnd }

// PlayerScore is a player's banked score at the end of a game.
type PlayerScore struct {
	Player string
	Score  int
}

// EventSubscriber receives game events from an EventBus.
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventSubscriberFunc adapts a function to EventSubscriber.
type EventSubscriberFunc func(event GameEvent)

// OnEvent calls f.
func (f EventSubscriberFunc) OnEvent(event GameEvent) {
	f(event)
}

// EventBus fans game events out to subscribers.
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus delivers events synchronously, in subscription order.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus returns an empty synchronous bus.
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe appends subscriber; it sees every event published afterwards.
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber. Function subscribers cannot be compared
// and must be wrapped in a pointer type to be removable.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish calls each subscriber in turn on the caller's goroutine.
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
