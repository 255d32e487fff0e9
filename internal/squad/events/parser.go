// Package events classifies raw Squad dedicated server log lines and parses the messages
// of the channels we care about into typed events.
package events

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNoMatch     = errors.New("no match found")
	ErrParseDamage = errors.New("failed to parse damage amount")
)

// Parser holds the compiled expressions for the outer line format and every channel
// specific message. It is safe for concurrent use.
type Parser struct {
	rxLine        *regexp.Regexp
	rxRevive      *regexp.Regexp
	rxDamage      *regexp.Regexp
	rxRole        *regexp.Regexp
	rxWound       *regexp.Regexp
	rxChangeState *regexp.Regexp
	rxMatchState  *regexp.Regexp
	rxMapLoad     *regexp.Regexp
}

func NewParser() *Parser {
	return &Parser{
		// [2021.01.01-00.00.00:000][  0]LogSquad: message
		rxLine:   regexp.MustCompile(`^\[(\d+\.\d+\.\d+-\d+\.\d+\.\d+:\d+)\]\[(.*?)\](\w+): (.*)$`),
		rxRevive: regexp.MustCompile(`^(.*) has revived (.*)\.$`),
		rxDamage: regexp.MustCompile(`Player:(.*) ActualDamage=(\d+\.\d+) from (.*) caused by (.*)$`),
		rxRole: regexp.MustCompile(
			`ASQPlayerController::SetCurrentRole\(\): On Server PC=(.*) NewRole=(.*)$`),
		rxWound: regexp.MustCompile(
			`ASQSoldier::Wound\(\): Player:(.*) KillingDamage=(\d+\.\d+) from (.*) caused by (.*)$`),
		rxChangeState: regexp.MustCompile(
			`ASQPlayerController::ChangeState\(\): PC=(.*) OldState=(.*) NewState=(.*)$`),
		rxMatchState: regexp.MustCompile(`Match State Changed from (\w+) to (\w+)$`),
		rxMapLoad:    regexp.MustCompile(`StartLoadingDestination to: /Game/Maps/(.*)$`),
	}
}

// ParseLine splits a raw line into its timestamp, frame, channel and message. ErrNoMatch is returned
// when the line does not follow the outer log format and ErrParseTimestamp when the timestamp is invalid.
func (p *Parser) ParseLine(raw string) (Line, error) {
	raw = strings.TrimRight(raw, "\r")

	match := p.rxLine.FindStringSubmatch(raw)
	if match == nil {
		return Line{}, ErrNoMatch
	}

	timestamp, errTS := ParseTimestamp(match[1])
	if errTS != nil {
		return Line{}, errTS
	}

	return Line{
		Timestamp: timestamp,
		Frame:     match[2],
		Channel:   Channel(match[3]),
		Message:   match[4],
		Raw:       raw,
	}, nil
}

// Events dispatches the line message to the parser registered for its channel. Lines from unknown
// channels, or messages not matching anything, produce no events. When a message matches several
// expressions the events are returned in the order they should be applied.
func (p *Parser) Events(line Line) []Event {
	switch line.Channel {
	case ChannelSquad:
		return p.parseSquad(line)
	case ChannelSquadTrace:
		return p.parseSquadTrace(line)
	case ChannelGameState:
		return p.parseGameState(line)
	case ChannelWorld:
		return p.parseWorld(line)
	default:
		return nil
	}
}

func (p *Parser) parseSquad(line Line) []Event {
	var found []Event

	if match := p.rxRevive.FindStringSubmatch(line.Message); match != nil {
		found = append(found, Event{
			Type:      Revive,
			Timestamp: line.Timestamp,
			Data:      ReviveEvent{Reviver: match[1], Revivee: match[2]},
		})
	}

	if match := p.rxDamage.FindStringSubmatch(line.Message); match != nil {
		// Damage dealt to nothing shows up now and then, ignore it.
		if match[1] == NullEntity {
			return found
		}

		amount, errAmount := parseAmount(match[2])
		if errAmount != nil {
			slog.Warn("Failed to parse damage", slog.String("error", errAmount.Error()),
				slog.String("line", line.Raw))

			return found
		}

		found = append(found, Event{
			Type:      Damage,
			Timestamp: line.Timestamp,
			Data:      DamageEvent{Target: match[1], Amount: amount, Shooter: match[3], Weapon: match[4]},
		})
	}

	return found
}

func (p *Parser) parseSquadTrace(line Line) []Event {
	var found []Event

	if match := p.rxRole.FindStringSubmatch(line.Message); match != nil && match[2] != NullEntity {
		found = append(found, Event{
			Type:      Spawn,
			Timestamp: line.Timestamp,
			Data:      SpawnEvent{Player: match[1], Role: match[2]},
		})
	}

	if match := p.rxWound.FindStringSubmatch(line.Message); match != nil && match[1] != NullEntity {
		amount, errAmount := parseAmount(match[2])
		if errAmount != nil {
			slog.Warn("Failed to parse killing damage", slog.String("error", errAmount.Error()),
				slog.String("line", line.Raw))
		} else {
			found = append(found, Event{
				Type:      Wound,
				Timestamp: line.Timestamp,
				Data:      WoundEvent{Target: match[1], Amount: amount, Shooter: match[3], Weapon: match[4]},
			})
		}
	}

	if match := p.rxChangeState.FindStringSubmatch(line.Message); match != nil {
		found = append(found, Event{
			Type:      ChangeState,
			Timestamp: line.Timestamp,
			Data:      ChangeStateEvent{Player: match[1], OldState: match[2], NewState: match[3]},
		})
	}

	return found
}

func (p *Parser) parseGameState(line Line) []Event {
	match := p.rxMatchState.FindStringSubmatch(line.Message)
	if match == nil {
		return nil
	}

	return []Event{{
		Type:      MatchState,
		Timestamp: line.Timestamp,
		Data:      MatchStateEvent{From: match[1], To: match[2]},
	}}
}

func (p *Parser) parseWorld(line Line) []Event {
	match := p.rxMapLoad.FindStringSubmatch(line.Message)
	if match == nil {
		return nil
	}

	return []Event{{
		Type:      MapLoad,
		Timestamp: line.Timestamp,
		Data:      MapLoadEvent{MapName: match[1]},
	}}
}

func parseAmount(value string) (float64, error) {
	amount, errParse := strconv.ParseFloat(value, 64)
	if errParse != nil {
		return 0, errors.Join(errParse, ErrParseDamage)
	}

	return amount, nil
}
